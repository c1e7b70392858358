// Package identity resolves the calling identity from a bearer credential
// and issues the credentials it later resolves. Resolution happens once per
// request; downstream services receive the user explicitly.
package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tastelog/tastelog/internal/domain"
)

// UserStore is the persistence contract the manager needs, implemented by
// internal/repository. Absent users surface as *domain.NotFoundError.
type UserStore interface {
	ByID(ctx context.Context, id string) (domain.User, error)
	ByLogin(ctx context.Context, usernameOrEmail string) (domain.User, error)
	Insert(ctx context.Context, username, email, passwordHash string) (domain.User, error)
}

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager registers users, verifies logins, and resolves bearer tokens.
type Manager struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
}

// NewManager constructs a Manager signing tokens with secret for tokenTTL.
func NewManager(users UserStore, secret []byte, tokenTTL time.Duration) *Manager {
	return &Manager{users: users, secret: secret, tokenTTL: tokenTTL}
}

const minPasswordLength = 8

// Register creates a user with a bcrypt-hashed password and returns it with
// a signed token.
func (m *Manager) Register(ctx context.Context, username, email, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.User{}, "", domain.Invalid("username", "must not be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, "", domain.Invalid("email", "must be a valid address")
	}
	if len(password) < minPasswordLength {
		return domain.User{}, "", domain.Invalid("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", domain.Transient("hash password", err)
	}

	user, err := m.users.Insert(ctx, username, email, string(hash))
	if err != nil {
		return domain.User{}, "", domain.Transient("insert user", err)
	}

	token, err := m.sign(user)
	if err != nil {
		return domain.User{}, "", domain.Transient("sign token", err)
	}
	return user, token, nil
}

// Login verifies a username-or-email/password pair and issues a token.
// Unknown users and bad passwords are indistinguishable to the caller.
func (m *Manager) Login(ctx context.Context, usernameOrEmail, password string) (domain.User, string, error) {
	user, err := m.users.ByLogin(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return domain.User{}, "", &domain.AuthenticationError{Reason: "invalid credentials"}
		}
		return domain.User{}, "", domain.Transient("lookup user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", &domain.AuthenticationError{Reason: "invalid credentials"}
	}

	token, err := m.sign(user)
	if err != nil {
		return domain.User{}, "", domain.Transient("sign token", err)
	}
	return user, token, nil
}

// Resolve turns an Authorization header value into the calling user. Absent,
// malformed, or expired credentials resolve to anonymous (nil user, nil
// error); only infrastructure failures are errors.
func (m *Manager) Resolve(ctx context.Context, authorization string) (*domain.User, error) {
	token := bearerToken(authorization)
	if token == "" {
		return nil, nil
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil
	}

	user, err := m.users.ByID(ctx, claims.UserID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, domain.Transient("resolve identity", err)
	}
	return &user, nil
}

func (m *Manager) sign(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
