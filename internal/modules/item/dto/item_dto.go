package dto

import (
	"time"

	"anoa.com/itemprofile/internal/entity"
	"github.com/google/uuid"
)

type ItemRequest struct {
	Name        string `json:"name" binding:"notblank,max=255"`
	Description string `json:"description" binding:"max=10000"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"notblank,max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewItemResponse(item *entity.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		UserID:      item.UserID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// NewItemResponses never returns nil so empty lists encode as [].
func NewItemResponses(items []entity.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewItemResponse(&items[i]))
	}
	return out
}
