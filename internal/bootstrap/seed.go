package bootstrap

import (
	"errors"
	"fmt"

	"anoa.com/itemprofile/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Item{},
		&entity.Profile{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleUser, Description: "Standard user"},
		{Name: entity.RoleAdmin, Description: "Administrator"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// SeedAdminUser creates an enabled account holding both seeded roles unless
// the username is already taken.
func SeedAdminUser(db *gorm.DB, seed AdminSeed, log logrus.FieldLogger) error {
	if seed.Username == "" || seed.Password == "" {
		return errors.New("admin seed requires username and password")
	}

	var roles []entity.Role
	if err := db.Where("name IN ?", []string{entity.RoleUser, entity.RoleAdmin}).Find(&roles).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("username = ?", seed.Username).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.WithField("username", seed.Username).Debug("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := entity.User{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: string(hashed),
		Enabled:      true,
		FirstName:    "System",
		LastName:     "Administrator",
		Roles:        roles,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.WithField("username", admin.Username).Info("admin user seeded")
	return nil
}
