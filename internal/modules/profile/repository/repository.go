package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fields are the mutable profile columns.
type Fields struct {
	Bio         *string
	AvatarURL   *string
	Phone       *string
	DateOfBirth *time.Time
	Country     *string
	City        *string
}

// Aggregate is a profile joined with its owner and the owner's items.
type Aggregate struct {
	Profile entity.Profile
	User    entity.User
	Items   []entity.Item
}

type ProfileRepository interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Profile, error)
	// Save overwrites every mutable field, creating the row when missing.
	Save(ctx context.Context, ownerID uuid.UUID, fields Fields) error
	// SetAvatar changes only avatar_url, creating the row when missing.
	SetAvatar(ctx context.Context, ownerID uuid.UUID, url string) error
	// DeleteByOwner returns the removed row, or nil when there was none.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Profile, error)
	LoadAggregate(ctx context.Context, ownerID uuid.UUID) (*Aggregate, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Save(ctx context.Context, ownerID uuid.UUID, f Fields) error {
	updates := map[string]interface{}{
		"bio":           nullable(f.Bio),
		"avatar_url":    nullable(f.AvatarURL),
		"phone":         nullable(f.Phone),
		"date_of_birth": nullableTime(f.DateOfBirth),
		"country":       nullable(f.Country),
		"city":          nullable(f.City),
	}
	return r.upsert(ctx, ownerID, updates, func() *entity.Profile {
		return &entity.Profile{
			Bio:         f.Bio,
			AvatarURL:   f.AvatarURL,
			Phone:       f.Phone,
			DateOfBirth: f.DateOfBirth,
			Country:     f.Country,
			City:        f.City,
		}
	})
}

func (r *profileRepository) SetAvatar(ctx context.Context, ownerID uuid.UUID, url string) error {
	return r.upsert(ctx, ownerID, map[string]interface{}{"avatar_url": url}, func() *entity.Profile {
		return &entity.Profile{AvatarURL: &url}
	})
}

// upsert updates the owner's row and inserts one when nothing matched. An
// insert that loses a race to a concurrent insert hits the unique index on
// user_id and falls back to a single update.
func (r *profileRepository) upsert(ctx context.Context, ownerID uuid.UUID, updates map[string]interface{}, newRow func() *entity.Profile) error {
	updated, err := r.update(ctx, ownerID, updates)
	if err != nil || updated {
		return err
	}

	row := newRow()
	row.UserID = ownerID
	err = r.db.WithContext(ctx).Omit("User").Create(row).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	updated, err = r.update(ctx, ownerID, updates)
	if err != nil {
		return err
	}
	if !updated {
		return errors.New("profile vanished during concurrent write")
	}
	return nil
}

func (r *profileRepository) update(ctx context.Context, ownerID uuid.UUID, updates map[string]interface{}) (bool, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("user_id = ?", ownerID).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *profileRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Profile, error) {
	var removed []entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Limit(1).Find(&removed).Error; err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&entity.Profile{}).Error; err != nil {
		return nil, err
	}
	return &removed[0], nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
