package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemRepository scopes every read and write by owner. A row owned by someone
// else is reported exactly like a missing row.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Item, error)
	FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Item, error)
	FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Item, error)
	SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string, limit int) ([]entity.Item, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, name, description string) (*entity.Item, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Item, error) {
	var items []entity.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Item, error) {
	var item entity.Item
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Item, error) {
	if len(ids) == 0 {
		return []entity.Item{}, nil
	}

	var items []entity.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string, limit int) ([]entity.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var items []entity.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, id, ownerID uuid.UUID, name, description string) (*entity.Item, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Item{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"name":        name,
			"description": description,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("item not found")
	}

	return r.FindByID(ctx, id, ownerID)
}

func (r *itemRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&entity.Item{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
