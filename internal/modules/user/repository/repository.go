package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/pkg/apperror"
	"gorm.io/gorm"
)

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// UserRepository is the identity store: user rows plus their role assignments.
type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, in NewUser) (*entity.Identity, error)
	LoadByUsername(ctx context.Context, username string) (*entity.Identity, error)
}

type userRepository struct {
	db          *gorm.DB
	defaultRole string
}

// NewUserRepository builds the store. defaultRole is assigned at registration
// and reported for any user that holds no role rows.
func NewUserRepository(db *gorm.DB, defaultRole string) UserRepository {
	if defaultRole == "" {
		defaultRole = entity.RoleUser
	}
	return &userRepository{db: db, defaultRole: defaultRole}
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser inserts the user and its default role in one transaction. The
// unique indexes on username and email are authoritative; a violation is
// reported as a conflict naming the clashing field.
func (r *userRepository) CreateUser(ctx context.Context, in NewUser) (*entity.Identity, error) {
	user := entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Enabled:      true,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Create(&user).Error; err != nil {
			return err
		}

		var roles []entity.Role
		if err := tx.Where("name = ?", r.defaultRole).Limit(1).Find(&roles).Error; err != nil {
			return err
		}
		if len(roles) == 0 {
			return nil
		}
		if err := tx.Model(&user).Association("Roles").Append(&roles[0]); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, r.classifyDuplicate(ctx, in)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return r.toIdentity(&user), nil
}

func (r *userRepository) classifyDuplicate(ctx context.Context, in NewUser) error {
	taken, err := r.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("username is already taken")
	}

	taken, err = r.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("email is already in use")
	}

	return apperror.Conflict("user already exists")
}

func (r *userRepository) LoadByUsername(ctx context.Context, username string) (*entity.Identity, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, apperror.ErrNotFound)
		}
		return nil, err
	}

	return r.toIdentity(&user), nil
}

// toIdentity applies the default-role fallback: a user without role rows is
// reported as holding the default role only.
func (r *userRepository) toIdentity(u *entity.User) *entity.Identity {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, role.Name)
	}
	if len(roles) == 0 {
		roles = []string{r.defaultRole}
	}

	return &entity.Identity{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Enabled:      u.Enabled,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Roles:        roles,
	}
}
