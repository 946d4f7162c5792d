package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase describes authentication and registration behavior.
type AuthUseCase interface {
	// Authenticate resolves a bearer token to its valid, non-expired
	// session. Returns ErrUnauthenticated otherwise.
	Authenticate(ctx context.Context, token string) (Session, error)
	Login(ctx context.Context, username, password string) (Session, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, username, email, password string) error
}

// ProvisionResult carries the identifiers of the remote resources
// created for a new account. Callers may discard them; they are not
// persisted locally.
type ProvisionResult struct {
	DeviceID string
	WalletID string
}

// Provisioner bootstraps remote resources for a freshly registered
// user, authenticating with the given transient session token. On
// failure it has already removed the user and session rows before
// returning.
type Provisioner interface {
	Provision(ctx context.Context, userID uuid.UUID, token string) (ProvisionResult, error)
}

type authService struct {
	users       UserRepository
	sessions    SessionRepository
	provisioner Provisioner
}

// NewAuthService returns the default implementation of AuthUseCase.
func NewAuthService(users UserRepository, sessions SessionRepository, provisioner Provisioner) AuthUseCase {
	return &authService{users: users, sessions: sessions, provisioner: provisioner}
}

func (s *authService) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthenticated
	}
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthenticated
		}
		return Session{}, err
	}
	if !session.Valid || session.Expired(time.Now().UTC()) {
		return Session{}, ErrUnauthenticated
	}
	return session, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidUsername
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidPassword
	}
	return s.sessions.Create(ctx, user.ID)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthenticated
		}
		return err
	}
	return nil
}

func (s *authService) Register(ctx context.Context, username, email, password string) error {
	if verr := ValidateCredentials(username, password, email); verr != nil {
		return verr
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	// Transient session: only exists to authenticate provisioning calls
	// and never survives this method, on any path.
	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		// Nothing remote has been provisioned yet, so removing the user
		// row restores the initial state.
		_ = s.users.Delete(ctx, user.ID)
		return fmt.Errorf("create provisioning session: %w", err)
	}

	if _, err := s.provisioner.Provision(ctx, user.ID, session.Token); err != nil {
		// The provisioner has already rolled back the user and session rows.
		return err
	}

	if err := s.sessions.Delete(ctx, session.Token); err != nil {
		return fmt.Errorf("delete provisioning session: %w", err)
	}
	return nil
}
