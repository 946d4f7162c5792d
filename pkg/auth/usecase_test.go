package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeUserRepo struct {
	users     map[uuid.UUID]User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

type fakeSessionRepo struct {
	sessions  map[string]Session
	ttl       time.Duration
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]Session), ttl: time.Hour}
}

func (f *fakeSessionRepo) Create(ctx context.Context, userID uuid.UUID) (Session, error) {
	if f.createErr != nil {
		return Session{}, f.createErr
	}
	token, err := NewSessionToken()
	if err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	session := Session{Token: token, UserID: userID, CreatedAt: now, ExpiresAt: now.Add(f.ttl), Valid: true}
	f.sessions[token] = session
	return session, nil
}

func (f *fakeSessionRepo) FindByToken(ctx context.Context, token string) (Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	if _, ok := f.sessions[token]; !ok {
		return ErrNotFound
	}
	delete(f.sessions, token)
	return nil
}

// fakeProvisioner records the call and, on failure, removes the user
// and session rows the way the real orchestrator's rollback does.
type fakeProvisioner struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	fail     error

	gotUserID uuid.UUID
	gotToken  string
	calls     int
}

func (f *fakeProvisioner) Provision(ctx context.Context, userID uuid.UUID, token string) (ProvisionResult, error) {
	f.calls++
	f.gotUserID = userID
	f.gotToken = token
	if f.fail != nil {
		delete(f.sessions.sessions, token)
		delete(f.users.users, userID)
		return ProvisionResult{}, f.fail
	}
	return ProvisionResult{DeviceID: "dev-1", WalletID: "wal-1"}, nil
}

func newTestService(t *testing.T) (*fakeUserRepo, *fakeSessionRepo, *fakeProvisioner, AuthUseCase) {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	provisioner := &fakeProvisioner{users: users, sessions: sessions}
	return users, sessions, provisioner, NewAuthService(users, sessions, provisioner)
}

func seedUser(t *testing.T, users *fakeUserRepo, username, email, password string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	users.users[user.ID] = user
	return user
}

// --- tests ---

func TestAuthService_Authenticate(t *testing.T) {
	_, sessions, _, svc := newTestService(t)
	ctx := context.Background()

	session, err := sessions.Create(ctx, uuid.New())
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)
	assert.Equal(t, session.UserID, got.UserID)

	_, err = svc.Authenticate(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_Authenticate_ExpiredOrInvalid(t *testing.T) {
	_, sessions, _, svc := newTestService(t)
	ctx := context.Background()

	expired, err := sessions.Create(ctx, uuid.New())
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	sessions.sessions[expired.Token] = expired

	_, err = svc.Authenticate(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	invalid, err := sessions.Create(ctx, uuid.New())
	require.NoError(t, err)
	invalid.Valid = false
	sessions.sessions[invalid.Token] = invalid

	_, err = svc.Authenticate(ctx, invalid.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_Login(t *testing.T) {
	users, sessions, _, svc := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, users, "Alice", "a@b.com", "Secret123")

	session, err := svc.Login(ctx, "Alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.True(t, session.Valid)
	assert.Contains(t, sessions.sessions, session.Token)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users, _, _, svc := newTestService(t)
	seedUser(t, users, "Alice", "a@b.com", "Secret123")

	_, err := svc.Login(context.Background(), "Alice", "Wrong1234")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAuthService_Login_UnknownUsername(t *testing.T) {
	_, _, _, svc := newTestService(t)

	_, err := svc.Login(context.Background(), "Nobody", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestAuthService_Logout(t *testing.T) {
	_, sessions, _, svc := newTestService(t)
	ctx := context.Background()

	session, err := sessions.Create(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))
	assert.NotContains(t, sessions.sessions, session.Token)

	err = svc.Logout(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_Register(t *testing.T) {
	users, sessions, provisioner, svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Alice", "a@b.com", "Secret123"))

	assert.Equal(t, 1, provisioner.calls)
	require.Len(t, users.users, 1)
	for _, user := range users.users {
		assert.Equal(t, "Alice", user.Username)
		assert.Equal(t, "a@b.com", user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret123")))
		assert.Equal(t, user.ID, provisioner.gotUserID)
	}
	// The transient provisioning session never survives the call.
	assert.Empty(t, sessions.sessions)
	assert.NotEmpty(t, provisioner.gotToken)
}

func TestAuthService_Register_ValidationError(t *testing.T) {
	_, _, provisioner, svc := newTestService(t)

	err := svc.Register(context.Background(), "Alice", "a@b.com", "short")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password has to be longer than 8", verr.Message)
	assert.Zero(t, provisioner.calls)
}

func TestAuthService_Register_Conflicts(t *testing.T) {
	users, _, provisioner, svc := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, "Alice", "a@b.com", "Secret123")

	err := svc.Register(ctx, "Alice", "other@b.com", "Secret123")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	err = svc.Register(ctx, "Bob", "a@b.com", "Secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)

	assert.Zero(t, provisioner.calls)
}

func TestAuthService_Register_SessionCreateFailure(t *testing.T) {
	users, sessions, provisioner, svc := newTestService(t)
	sessions.createErr = errors.New("connection reset")

	err := svc.Register(context.Background(), "Alice", "a@b.com", "Secret123")
	require.Error(t, err)
	assert.ErrorContains(t, err, "create provisioning session")

	// The user row created before the session failure is removed again.
	assert.Empty(t, users.users)
	assert.Zero(t, provisioner.calls)
}

func TestAuthService_Register_ProvisioningFailure(t *testing.T) {
	users, sessions, provisioner, svc := newTestService(t)
	provisioner.fail = errors.New("error in device api")

	err := svc.Register(context.Background(), "Alice", "a@b.com", "Secret123")
	require.Error(t, err)
	assert.EqualError(t, err, "error in device api")

	// Rollback completeness: no user or session row persists.
	assert.Empty(t, users.users)
	assert.Empty(t, sessions.sessions)
}
