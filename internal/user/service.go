package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"github.com/sirupsen/logrus"
)

type Settings struct {
	WelcomeCode  string
	MaxRetries   int
	RetryBackoff time.Duration
}

type UserService interface {
	Signup(ctx context.Context, r Registration) (*User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GetUser(ctx context.Context, userID uint) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, userID uint) error

	AdminLogin(ctx context.Context, email, password string) (*Session, error)
	AdminProfile(ctx context.Context, adminID uint) (*Admin, error)
	ChangeAdminPassword(ctx context.Context, adminID uint, current, next string) error
	EnsureAdmin(ctx context.Context, name, email, password string) error
}

type userService struct {
	storage  Storage
	issuer   *auth.Issuer
	settings Settings
	logger   *logrus.Entry
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewService(storage Storage, issuer *auth.Issuer, settings Settings, log *logrus.Entry) UserService {
	return &userService{
		storage:  storage,
		issuer:   issuer,
		settings: settings,
		logger:   log,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *userService) Signup(ctx context.Context, r Registration) (*User, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)

	if r.Name == "" || r.Email == "" || r.Password == "" || r.Phone == "" {
		return nil, errMissingPersonal
	}
	if r.StreetNo <= 0 || r.HouseNo <= 0 || r.City == "" || r.Country == "" {
		return nil, errMissingAddress
	}
	if len(r.Password) < minPasswordLength {
		return nil, errWeakPassword
	}

	if taken, err := s.storage.EmailExists(ctx, r.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, errEmailTaken
	}
	if taken, err := s.storage.PhoneExists(ctx, r.Phone); err != nil {
		return nil, err
	} else if taken {
		return nil, errPhoneTaken
	}

	hash, err := HashPassword(r.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: hash,
		Address: &Address{
			StreetNo:  r.StreetNo,
			HouseNo:   r.HouseNo,
			BlockName: r.BlockName,
			Society:   r.Society,
			City:      r.City,
			Country:   r.Country,
		},
		Phones: []ContactPhone{{Phone: r.Phone}},
	}
	if err := s.storage.CreateUser(ctx, u, s.settings.WelcomeCode); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", u.ID).Info("account created")
	return u, nil
}

// Login retries lookups that fail on a dropped connection. Wrong credentials
// are never retried.
func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errMissingCredential
	}

	var (
		u   *User
		err error
	)
	for attempt := 0; ; attempt++ {
		u, err = s.storage.FindByEmail(ctx, email)
		if err == nil || !postgres.IsTransient(err) || attempt >= s.settings.MaxRetries {
			break
		}
		s.logger.Warnf("login attempt %d/%d failed, retrying: %v", attempt+1, s.settings.MaxRetries+1, err)
		if sleepErr := s.sleep(ctx, s.settings.RetryBackoff); sleepErr != nil {
			return nil, sleepErr
		}
	}
	if errors.Is(err, ErrUserNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(u.PasswordHash, password) {
		return nil, errBadCredentials
	}

	token, _, err := s.issuer.Generate(u.ID, auth.RoleUser)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: u.ID, Username: u.Name, Token: token}, nil
}

func (s *userService) GetUser(ctx context.Context, userID uint) (*User, error) {
	return s.storage.GetUser(ctx, userID)
}

func (s *userService) ListUsers(ctx context.Context) ([]User, error) {
	return s.storage.ListUsers(ctx)
}

func (s *userService) DeleteUser(ctx context.Context, userID uint) error {
	if err := s.storage.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.WithField("user_id", userID).Info("account deleted")
	return nil
}

func (s *userService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errMissingCredential
	}

	a, err := s.storage.FindAdminByEmail(ctx, email)
	if errors.Is(err, errAdminNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(a.PasswordHash, password) {
		return nil, errBadCredentials
	}

	token, _, err := s.issuer.Generate(a.ID, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: a.ID, Username: a.Name, Token: token}, nil
}

func (s *userService) AdminProfile(ctx context.Context, adminID uint) (*Admin, error) {
	return s.storage.GetAdmin(ctx, adminID)
}

func (s *userService) ChangeAdminPassword(ctx context.Context, adminID uint, current, next string) error {
	a, err := s.storage.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !CheckPassword(a.PasswordHash, current) {
		return errWrongPassword
	}
	if len(next) < minPasswordLength {
		return errWeakPassword
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.storage.UpdateAdminPassword(ctx, adminID, hash)
}

// EnsureAdmin creates the bootstrap admin unless one with the email exists.
func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errMissingCredential
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.storage.EnsureAdmin(ctx, &Admin{Name: name, Email: email, PasswordHash: hash})
}
