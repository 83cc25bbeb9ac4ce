package user

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type flakyStorage struct {
	Storage
	failures int
	calls    int
	user     *User
}

func (s *flakyStorage) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, driver.ErrBadConn
	}
	if s.user == nil || s.user.Email != email {
		return nil, ErrUserNotFound
	}
	return s.user, nil
}

func newLoginService(t *testing.T, storage Storage) (*userService, *int) {
	l := logrus.New()
	l.SetOutput(io.Discard)

	svc := NewService(storage, auth.NewIssuer("secret", time.Hour), Settings{
		MaxRetries:   2,
		RetryBackoff: time.Second,
	}, logrus.NewEntry(l)).(*userService)

	sleeps := 0
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		require.Equal(t, time.Second, d)
		sleeps++
		return nil
	}
	return svc, &sleeps
}

func storedUser(t *testing.T) *User {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	return &User{ID: 5, Name: "Ayesha", Email: "ayesha@example.com", PasswordHash: hash}
}

func TestLoginRetriesTransientErrors(t *testing.T) {
	storage := &flakyStorage{failures: 2, user: storedUser(t)}
	svc, sleeps := newLoginService(t, storage)

	session, err := svc.Login(context.Background(), " Ayesha@Example.com ", "correct horse")
	require.NoError(t, err)
	require.Equal(t, uint(5), session.UserID)
	require.Equal(t, "Ayesha", session.Username)
	require.NotEmpty(t, session.Token)
	require.Equal(t, 3, storage.calls)
	require.Equal(t, 2, *sleeps)
}

func TestLoginGivesUpAfterMaxRetries(t *testing.T) {
	storage := &flakyStorage{failures: 5, user: storedUser(t)}
	svc, sleeps := newLoginService(t, storage)

	_, err := svc.Login(context.Background(), "ayesha@example.com", "correct horse")
	require.ErrorIs(t, err, driver.ErrBadConn)
	require.Equal(t, 3, storage.calls)
	require.Equal(t, 2, *sleeps)
}

func TestLoginDoesNotRetryBadCredentials(t *testing.T) {
	storage := &flakyStorage{user: storedUser(t)}
	svc, sleeps := newLoginService(t, storage)

	_, err := svc.Login(context.Background(), "ayesha@example.com", "wrong password")
	require.ErrorIs(t, err, errBadCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, errBadCredentials)

	require.Equal(t, 2, storage.calls)
	require.Zero(t, *sleeps)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)
	require.True(t, CheckPassword(hash, "s3cret-pass"))
	require.False(t, CheckPassword(hash, "s3cret-pasS"))
}
