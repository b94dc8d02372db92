package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hotlinehub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mock for UserStore.
// ---------------------------------------------------------------------------

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by email
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) Create(_ context.Context, username, email, passwordHash, phone, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[email]; exists {
		return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		PhoneNumber:  phone,
		Role:         role,
		CoinBalance:  models.DefaultStartingBalance,
	}
	m.users[email] = u
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) HasRole(_ context.Context, role string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, Registration{
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "hunter2hunter2",
		Phone:    "+905551234567",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Errorf("empty role should default to %q, got %q", models.RoleUser, user.Role)
	}
	if user.CoinBalance != models.DefaultStartingBalance {
		t.Errorf("starting balance: got %d, want %d", user.CoinBalance, models.DefaultStartingBalance)
	}

	// Password must be stored hashed, never verbatim.
	stored, _ := store.GetByEmail(ctx, "ayse@example.com")
	if stored.PasswordHash == "hunter2hunter2" || stored.PasswordHash == "" {
		t.Error("password must be stored as a bcrypt hash")
	}

	// Same email again is a duplicate.
	_, err = svc.Register(ctx, Registration{Username: "other", Email: "ayse@example.com", Password: "x"})
	if err != ErrDuplicateUser {
		t.Errorf("expected ErrDuplicateUser, got: %v", err)
	}
}

func TestRegister_RoleValidation(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	helper, err := svc.Register(ctx, Registration{Username: "h", Email: "h@example.com", Password: "p", Role: models.RoleHelper})
	if err != nil {
		t.Fatalf("helper registration: %v", err)
	}
	if helper.Role != models.RoleHelper {
		t.Errorf("helper role: got %q", helper.Role)
	}

	// Admin is never self-registered.
	if _, err := svc.Register(ctx, Registration{Username: "a", Email: "a@example.com", Password: "p", Role: models.RoleAdmin}); err == nil {
		t.Error("admin self-registration should be rejected")
	}
	if _, err := svc.Register(ctx, Registration{Username: "b", Email: "b@example.com", Password: "p", Role: "superuser"}); err == nil {
		t.Error("unknown role should be rejected")
	}
}

func TestLogin_TokenRoundtrip(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	reg, err := svc.Register(ctx, Registration{Username: "mehmet", Email: "m@example.com", Password: "correct horse", Role: models.RoleHelper})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := svc.Login(ctx, "m@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != reg.ID {
		t.Error("login should return the registered user")
	}
	if token == "" {
		t.Fatal("login should issue a token")
	}

	id, role, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if id != reg.ID {
		t.Errorf("token subject: got %s, want %s", id, reg.ID)
	}
	if role != models.RoleHelper {
		t.Errorf("token role: got %q, want %q", role, models.RoleHelper)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, Registration{Username: "u", Email: "u@example.com", Password: "right"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Wrong password and unknown email fail identically.
	if _, _, err := svc.Login(ctx, "u@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got: %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "right"); err != ErrInvalidCredentials {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "admin@example.com", "bootstrap-pw"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	admin, _ := store.GetByEmail(ctx, "admin@example.com")
	if admin == nil {
		t.Fatal("bootstrap admin should exist")
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("bootstrap role: got %q, want %q", admin.Role, models.RoleAdmin)
	}
	if admin.PasswordHash == "bootstrap-pw" || admin.PasswordHash == "" {
		t.Error("bootstrap password must be stored as a bcrypt hash")
	}

	// The bootstrap credentials must work through the normal login path.
	if _, _, err := svc.Login(ctx, "admin@example.com", "bootstrap-pw"); err != nil {
		t.Errorf("bootstrap admin login: %v", err)
	}

	// A second boot is a no-op: no duplicate, no error.
	if err := svc.EnsureAdmin(ctx, "admin@example.com", "other-pw"); err != nil {
		t.Fatalf("repeat EnsureAdmin: %v", err)
	}
	if n := len(store.users); n != 1 {
		t.Errorf("users after repeat bootstrap: got %d, want 1", n)
	}

	// An existing admin under any email suppresses the bootstrap.
	store2 := newMockUserStore()
	svc2 := NewService(store2, "test-secret")
	if _, err := store2.Create(ctx, "root", "root@example.com", "hash", "", models.RoleAdmin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if err := svc2.EnsureAdmin(ctx, "admin@example.com", "pw"); err != nil {
		t.Fatalf("EnsureAdmin with existing admin: %v", err)
	}
	if other, _ := store2.GetByEmail(ctx, "admin@example.com"); other != nil {
		t.Error("bootstrap must not run when an admin already exists")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	store := newMockUserStore()
	ctx := context.Background()

	issuer := NewService(store, "secret-a")
	verifier := NewService(store, "secret-b")

	if _, err := issuer.Register(ctx, Registration{Username: "u", Email: "u@example.com", Password: "p"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := issuer.Login(ctx, "u@example.com", "p")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, _, err := verifier.ValidateToken(ctx, token); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}
