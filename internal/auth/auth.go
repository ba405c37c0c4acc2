package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"quizwire/internal/identity"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	tokenTTL      = 7 * 24 * time.Hour
	guestTokenTTL = 24 * time.Hour
	bcryptCost    = 10
)

// User is an account row. PasswordHash never leaves this package or the
// store that implements UserStore.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	TotalGames   int
	TotalScore   int
	BestScore    int
}

// UserStore is the persistence the auth service needs. Lookups return
// (nil, nil) when no row matches.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error)
}

type Service struct {
	secret []byte
	users  UserStore
}

func NewService(secret string, users UserStore) *Service {
	return &Service{secret: []byte(secret), users: users}
}

// Account is what login and registration hand back to the caller.
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

type claims struct {
	UserID  int64  `json:"userId,omitempty"`
	Name    string `json:"username"`
	IsGuest bool   `json:"isGuest,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if u, err := s.users.GetUserByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("looking up username: %w", err)
	} else if u != nil {
		return nil, ErrUsernameTaken
	}
	if u, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	} else if u != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	id, err := s.users.CreateUser(ctx, username, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.signToken(id, username, false, tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Account{ID: id, Username: username, Email: email, Token: token}, nil
}

// Login accepts either a username or an email address.
func (s *Service) Login(ctx context.Context, usernameOrEmail, password string) (*Account, error) {
	u, err := s.users.GetUserByUsername(ctx, usernameOrEmail)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u == nil {
		u, err = s.users.GetUserByEmail(ctx, usernameOrEmail)
		if err != nil {
			return nil, fmt.Errorf("looking up user: %w", err)
		}
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(u.ID, u.Username, false, tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Account{ID: u.ID, Username: u.Username, Email: u.Email, Token: token}, nil
}

// GuestToken issues a short-lived token carrying only a display name.
func (s *Service) GuestToken(name string) (string, error) {
	if err := ValidatePlayerName(name); err != nil {
		return "", err
	}
	return s.signToken(0, name, true, guestTokenTTL)
}

// IdentityFromToken verifies a token and returns the identity it carries.
func (s *Service) IdentityFromToken(token string) (identity.Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if c.IsGuest {
		return identity.Guest{Name: c.Name}, nil
	}
	if c.UserID == 0 || c.Name == "" {
		return nil, ErrInvalidToken
	}
	return identity.Registered{ID: c.UserID, Name: c.Name}, nil
}

func (s *Service) signToken(userID int64, name string, guest bool, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		UserID:  userID,
		Name:    name,
		IsGuest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
