package dto

import (
	"io"
	"time"

	itemDto "anoa.com/itemprofile/internal/modules/item/dto"
	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// ProfileRequest replaces every mutable profile field; omitted fields are cleared.
type ProfileRequest struct {
	Bio         *string `json:"bio" binding:"omitempty,max=1000"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=500"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	City        *string `json:"city" binding:"omitempty,max=100"`
}

// AvatarFile is an uploaded avatar image.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileResponse is the aggregated view: the profile, its owner and the
// owner's items.
type ProfileResponse struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"user_id"`
	Bio         *string                `json:"bio"`
	AvatarURL   *string                `json:"avatar_url"`
	Phone       *string                `json:"phone"`
	DateOfBirth *string                `json:"date_of_birth"`
	Country     *string                `json:"country"`
	City        *string                `json:"city"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	User        UserInfo               `json:"user"`
	Items       []itemDto.ItemResponse `json:"items"`
}
