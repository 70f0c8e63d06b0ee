package profile

import (
	"context"
	"errors"
	"net/http"
	"time"

	itemDto "anoa.com/itemprofile/internal/modules/item/dto"
	profileDto "anoa.com/itemprofile/internal/modules/profile/dto"
	"anoa.com/itemprofile/internal/modules/profile/repository"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var errStorageDisabled = apperror.New(http.StatusServiceUnavailable, "avatar storage is not configured", apperror.ErrUnavailable)

type ProfileService interface {
	CreateOrUpdate(ctx context.Context, ownerID uuid.UUID, input profileDto.ProfileRequest) (*profileDto.ProfileResponse, error)
	Get(ctx context.Context, ownerID uuid.UUID) (*profileDto.ProfileResponse, error)
	Delete(ctx context.Context, ownerID uuid.UUID) error
	UploadAvatar(ctx context.Context, ownerID uuid.UUID, avatar profileDto.AvatarFile) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo         repository.ProfileRepository
	imageStorage storage.ImageStorage
	avatarFolder string
	log          logrus.FieldLogger
}

// NewProfileService wires the profile store. imageStorage may be nil, which
// disables avatar uploads.
func NewProfileService(repo repository.ProfileRepository, imageStorage storage.ImageStorage, avatarFolder string, log logrus.FieldLogger) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
		avatarFolder: avatarFolder,
		log:          log.WithField("service", "profile"),
	}
}

// CreateOrUpdate writes the owner's profile and returns the re-read aggregate.
func (s *profileService) CreateOrUpdate(ctx context.Context, ownerID uuid.UUID, input profileDto.ProfileRequest) (*profileDto.ProfileResponse, error) {
	fields := repository.Fields{
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
		Phone:     input.Phone,
		Country:   input.Country,
		City:      input.City,
	}

	if input.DateOfBirth != nil && *input.DateOfBirth != "" {
		dob, err := time.Parse(profileDto.DateLayout, *input.DateOfBirth)
		if err != nil {
			return nil, apperror.InvalidInput("Date of birth must use the 2006-01-02 format")
		}
		fields.DateOfBirth = &dob
	}

	if err := s.repo.Save(ctx, ownerID, fields); err != nil {
		return nil, err
	}

	return s.Get(ctx, ownerID)
}

func (s *profileService) Get(ctx context.Context, ownerID uuid.UUID) (*profileDto.ProfileResponse, error) {
	agg, err := s.repo.LoadAggregate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toResponse(agg), nil
}

// Delete removes only the profile row. A stored avatar is cleaned up best effort.
func (s *profileService) Delete(ctx context.Context, ownerID uuid.UUID) error {
	removed, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if removed != nil && removed.AvatarURL != nil {
		s.dropStoredAvatar(ctx, *removed.AvatarURL)
	}
	return nil
}

func (s *profileService) UploadAvatar(ctx context.Context, ownerID uuid.UUID, avatar profileDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	if s.imageStorage == nil {
		return nil, errStorageDisabled
	}

	var previous string
	current, err := s.repo.FindByOwner(ctx, ownerID)
	switch {
	case err == nil:
		if current.AvatarURL != nil {
			previous = *current.AvatarURL
		}
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, s.avatarFolder, avatar.FileName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetAvatar(ctx, ownerID, url); err != nil {
		return nil, err
	}

	if previous != "" && previous != url {
		s.dropStoredAvatar(ctx, previous)
	}

	return s.Get(ctx, ownerID)
}

func (s *profileService) dropStoredAvatar(ctx context.Context, url string) {
	if s.imageStorage == nil || !s.imageStorage.Owns(url) {
		return
	}
	if err := s.imageStorage.DeleteImage(ctx, url); err != nil {
		s.log.WithError(err).WithField("url", url).Warn("failed to delete avatar")
	}
}

func toResponse(agg *repository.Aggregate) *profileDto.ProfileResponse {
	p := agg.Profile
	res := &profileDto.ProfileResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Phone:     p.Phone,
		Country:   p.Country,
		City:      p.City,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		User: profileDto.UserInfo{
			ID:        agg.User.ID,
			Username:  agg.User.Username,
			Email:     agg.User.Email,
			FirstName: agg.User.FirstName,
			LastName:  agg.User.LastName,
			Enabled:   agg.User.Enabled,
			CreatedAt: agg.User.CreatedAt,
			UpdatedAt: agg.User.UpdatedAt,
		},
		Items: itemDto.NewItemResponses(agg.Items),
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.Format(profileDto.DateLayout)
		res.DateOfBirth = &dob
	}
	return res
}
