package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/hotlinehub/backend/internal/models"
)

// ErrDuplicateUser is returned when registering with a username or email
// that already exists.
var ErrDuplicateUser = errors.New("user already registered")

// ErrInvalidCredentials is returned on login with an unknown email or a
// wrong password; the two cases are deliberately not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Registration struct {
	Username string
	Email    string
	Password string
	Phone    string
	Role     string
}

type Service interface {
	Register(ctx context.Context, reg Registration) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

// UserStore is the repository surface the service needs; narrowed so tests
// can stub it.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash, phone, role string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	HasRole(ctx context.Context, role string) (bool, error)
}

type service struct {
	repo   UserStore
	secret []byte
}

func NewService(repo UserStore, secret string) Service {
	if secret == "" {
		secret = "supersecretmvp"
	}
	return &service{repo: repo, secret: []byte(secret)}
}

// Ensure service implements Service at compile time.
var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func (s *service) Register(ctx context.Context, reg Registration) (*models.User, error) {
	role := reg.Role
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleUser, models.RoleHelper:
	default:
		// Admins are promoted through the admin surface, never self-registered.
		return nil, errors.New("invalid role")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.Create(ctx, reg.Username, reg.Email, string(hash), reg.Phone, role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists
// yet. Role promotion sits behind the admin surface, so without this a
// fresh deployment could never reach it. Losing the insert race to a
// concurrently booting instance is fine.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	exists, err := s.repo.HasRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, "admin", email, string(hash), "", models.RoleAdmin); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return err
	}
	return nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *service) issueToken(userID uuid.UUID, role string) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *service) ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return uuid.Nil, "", errors.New("invalid token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, c.Role, nil
}
