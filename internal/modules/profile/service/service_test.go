package profile

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"anoa.com/itemprofile/internal/entity"
	profileDto "anoa.com/itemprofile/internal/modules/profile/dto"
	"anoa.com/itemprofile/internal/modules/profile/repository"
	"anoa.com/itemprofile/internal/testdb"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorage struct {
	uploads   []string
	deleted   []string
	uploadErr error
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://cdn.test/" + folder + "/" + fileName
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeStorage) Owns(url string) bool {
	return strings.HasPrefix(url, "https://cdn.test/")
}

func str(s string) *string { return &s }

func seedUser(t *testing.T, db *gorm.DB, username string) uuid.UUID {
	t.Helper()
	u := entity.User{Username: username, Email: username + "@x.com", PasswordHash: "hash", Enabled: true}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func newService(t *testing.T, store *fakeStorage) (ProfileService, *gorm.DB) {
	t.Helper()
	db := testdb.New(t)
	var svc ProfileService
	if store == nil {
		svc = NewProfileService(repository.NewProfileRepository(db), nil, "avatars", logger.Discard())
	} else {
		svc = NewProfileService(repository.NewProfileRepository(db), store, "avatars", logger.Discard())
	}
	return svc, db
}

func TestCreateOrUpdate_IsIdempotentPerOwner(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t, nil)
	alice := seedUser(t, db, "alice")

	first, err := svc.CreateOrUpdate(ctx, alice, profileDto.ProfileRequest{
		Bio:         str("hi"),
		DateOfBirth: str("1990-05-17"),
		Country:     str("FR"),
	})
	require.NoError(t, err)
	assert.Equal(t, alice, first.UserID)
	assert.Equal(t, "alice", first.User.Username)
	require.NotNil(t, first.DateOfBirth)
	assert.Equal(t, "1990-05-17", *first.DateOfBirth)
	assert.NotNil(t, first.Items)
	assert.Empty(t, first.Items)

	time.Sleep(10 * time.Millisecond)

	second, err := svc.CreateOrUpdate(ctx, alice, profileDto.ProfileRequest{Bio: str("hello")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "hello", *second.Bio)
	assert.Nil(t, second.Country)
	assert.Nil(t, second.DateOfBirth)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Millisecond)

	var count int64
	require.NoError(t, db.Model(&entity.Profile{}).Where("user_id = ?", alice).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateOrUpdate_RejectsBadDate(t *testing.T) {
	svc, db := newService(t, nil)
	alice := seedUser(t, db, "alice")

	_, err := svc.CreateOrUpdate(context.Background(), alice, profileDto.ProfileRequest{DateOfBirth: str("17/05/1990")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestGet_IncludesOwnItems(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t, nil)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := svc.Get(ctx, alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, db.Create(&entity.Item{Name: "book", UserID: alice}).Error)
	require.NoError(t, db.Create(&entity.Item{Name: "lamp", UserID: bob}).Error)

	_, err = svc.CreateOrUpdate(ctx, alice, profileDto.ProfileRequest{Bio: str("hi")})
	require.NoError(t, err)

	res, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "book", res.Items[0].Name)
}

func TestDelete_LeavesItemsAndCleansAvatar(t *testing.T) {
	ctx := context.Background()
	store := &fakeStorage{}
	svc, db := newService(t, store)
	alice := seedUser(t, db, "alice")
	require.NoError(t, db.Create(&entity.Item{Name: "book", UserID: alice}).Error)

	_, err := svc.UploadAvatar(ctx, alice, profileDto.AvatarFile{Reader: strings.NewReader("png"), FileName: "me.png"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice))
	assert.Equal(t, store.uploads, store.deleted)

	_, err = svc.Get(ctx, alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var items int64
	require.NoError(t, db.Model(&entity.Item{}).Where("user_id = ?", alice).Count(&items).Error)
	assert.EqualValues(t, 1, items)

	// deleting again is not an error
	assert.NoError(t, svc.Delete(ctx, alice))
}

func TestUploadAvatar_ReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := &fakeStorage{}
	svc, db := newService(t, store)
	alice := seedUser(t, db, "alice")

	_, err := svc.CreateOrUpdate(ctx, alice, profileDto.ProfileRequest{Bio: str("hi")})
	require.NoError(t, err)

	first, err := svc.UploadAvatar(ctx, alice, profileDto.AvatarFile{Reader: strings.NewReader("a"), FileName: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/avatars/a.png", *first.AvatarURL)
	assert.Equal(t, "hi", *first.Bio)

	second, err := svc.UploadAvatar(ctx, alice, profileDto.AvatarFile{Reader: strings.NewReader("b"), FileName: "b.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/avatars/b.png", *second.AvatarURL)
	assert.Equal(t, []string{"https://cdn.test/avatars/a.png"}, store.deleted)
}

func TestUploadAvatar_StorageFailures(t *testing.T) {
	ctx := context.Background()

	svc, db := newService(t, nil)
	alice := seedUser(t, db, "alice")
	_, err := svc.UploadAvatar(ctx, alice, profileDto.AvatarFile{Reader: strings.NewReader("a"), FileName: "a.png"})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))

	boom := errors.New("upload failed")
	svc, db = newService(t, &fakeStorage{uploadErr: boom})
	bob := seedUser(t, db, "bob")
	_, err = svc.UploadAvatar(ctx, bob, profileDto.AvatarFile{Reader: strings.NewReader("a"), FileName: "a.png"})
	assert.ErrorIs(t, err, boom)
}
