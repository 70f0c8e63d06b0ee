package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is unique per user; the index on user_id backs that rule under
// concurrent writes.
type Profile struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Bio         *string    `gorm:"size:1000" json:"bio"`
	AvatarURL   *string    `gorm:"size:500" json:"avatar_url"`
	Phone       *string    `gorm:"size:20" json:"phone"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth"`
	Country     *string    `gorm:"size:100" json:"country"`
	City        *string    `gorm:"size:100" json:"city"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
