package repository

import (
	"context"
	"time"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/pkg/apperror"
	"github.com/google/uuid"
)

const aggregateQuery = `
SELECT
	p.id AS profile_id, p.user_id AS profile_user_id, p.bio, p.avatar_url, p.phone,
	p.date_of_birth, p.country, p.city,
	p.created_at AS profile_created_at, p.updated_at AS profile_updated_at,
	u.id AS user_id, u.username, u.email, u.first_name, u.last_name, u.enabled,
	u.created_at AS user_created_at, u.updated_at AS user_updated_at,
	i.id AS item_id, i.name AS item_name, i.description AS item_description,
	i.user_id AS item_user_id, i.created_at AS item_created_at, i.updated_at AS item_updated_at
FROM profiles p
JOIN users u ON u.id = p.user_id
LEFT JOIN items i ON i.user_id = u.id
WHERE p.user_id = ?
ORDER BY i.created_at, i.id`

// aggregateRow is one row of the profile/user/items join. Item columns are
// null when the owner has no items.
type aggregateRow struct {
	ProfileID        uuid.UUID
	ProfileUserID    uuid.UUID
	Bio              *string
	AvatarURL        *string
	Phone            *string
	DateOfBirth      *time.Time
	Country          *string
	City             *string
	ProfileCreatedAt time.Time
	ProfileUpdatedAt time.Time

	UserID        uuid.UUID
	Username      string
	Email         string
	FirstName     string
	LastName      string
	Enabled       bool
	UserCreatedAt time.Time
	UserUpdatedAt time.Time

	ItemID          *uuid.UUID
	ItemName        *string
	ItemDescription *string
	ItemUserID      *uuid.UUID
	ItemCreatedAt   *time.Time
	ItemUpdatedAt   *time.Time
}

// LoadAggregate runs the join once and folds the rows: scalar parts come from
// the first row, items from every row with a non-null item id, first
// occurrence wins. Zero rows means the owner has no profile.
func (r *profileRepository) LoadAggregate(ctx context.Context, ownerID uuid.UUID) (*Aggregate, error) {
	var rows []aggregateRow
	if err := r.db.WithContext(ctx).Raw(aggregateQuery, ownerID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return foldAggregate(rows)
}

func foldAggregate(rows []aggregateRow) (*Aggregate, error) {
	if len(rows) == 0 {
		return nil, apperror.NotFound("profile not found")
	}

	first := rows[0]
	agg := &Aggregate{
		Profile: entity.Profile{
			ID:          first.ProfileID,
			UserID:      first.ProfileUserID,
			Bio:         first.Bio,
			AvatarURL:   first.AvatarURL,
			Phone:       first.Phone,
			DateOfBirth: first.DateOfBirth,
			Country:     first.Country,
			City:        first.City,
			CreatedAt:   first.ProfileCreatedAt,
			UpdatedAt:   first.ProfileUpdatedAt,
		},
		User: entity.User{
			ID:        first.UserID,
			Username:  first.Username,
			Email:     first.Email,
			FirstName: first.FirstName,
			LastName:  first.LastName,
			Enabled:   first.Enabled,
			CreatedAt: first.UserCreatedAt,
			UpdatedAt: first.UserUpdatedAt,
		},
		Items: []entity.Item{},
	}

	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if row.ItemID == nil {
			continue
		}
		if _, dup := seen[*row.ItemID]; dup {
			continue
		}
		seen[*row.ItemID] = struct{}{}

		item := entity.Item{ID: *row.ItemID}
		if row.ItemName != nil {
			item.Name = *row.ItemName
		}
		if row.ItemDescription != nil {
			item.Description = *row.ItemDescription
		}
		if row.ItemUserID != nil {
			item.UserID = *row.ItemUserID
		}
		if row.ItemCreatedAt != nil {
			item.CreatedAt = *row.ItemCreatedAt
		}
		if row.ItemUpdatedAt != nil {
			item.UpdatedAt = *row.ItemUpdatedAt
		}
		agg.Items = append(agg.Items, item)
	}

	return agg, nil
}
