package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parley/internal/domain/user"
	"parley/internal/repository"
	"parley/internal/validate"
	parley_errors "parley/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	secret     []byte
	expiry     time.Duration
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, secret string, expiryMin, bcryptCost int) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		secret:     []byte(secret),
		expiry:     time.Duration(expiryMin) * time.Minute,
		bcryptCost: bcryptCost,
	}
}

type SignUpInput struct {
	Username string
	Email    string
	Phone    string
	Password string
}

type LoginInput struct {
	Email    string
	Phone    string
	Password string
}

// SessionClaims is the payload of the opaque session handle. The handle is a
// signed token so it cannot be forged, but the session row decides validity.
type SessionClaims struct {
	UserID    string `json:"sub"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SignUp validates every field before any write, so a single validation
// failure cannot leave a partial record behind.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (user.User, string, error) {
	username, err := validate.Name(in.Username)
	if err != nil {
		return user.User{}, "", err
	}
	if err := validate.Email(in.Email); err != nil {
		return user.User{}, "", err
	}
	if exists, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
		return user.User{}, "", err
	} else if exists {
		return user.User{}, "", fmt.Errorf("%w: email already registered", parley_errors.ErrConflict)
	}
	if err := validate.Phone(in.Phone); err != nil {
		return user.User{}, "", err
	}
	if exists, err := s.users.ExistsByPhone(ctx, in.Phone); err != nil {
		return user.User{}, "", err
	} else if exists {
		return user.User{}, "", fmt.Errorf("%w: phone already registered", parley_errors.ErrConflict)
	}
	if err := validate.Password(in.Password); err != nil {
		return user.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return user.User{}, "", err
	}

	u := user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, parley_errors.ErrConflict) {
			return user.User{}, "", fmt.Errorf("%w: email or phone already registered", parley_errors.ErrConflict)
		}
		return user.User{}, "", err
	}

	token, err := s.openSession(ctx, u.ID)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (user.User, string, error) {
	if in.Email == "" && in.Phone == "" {
		return user.User{}, "", fmt.Errorf("%w: log in with either your phone number or your email", parley_errors.ErrInvalidInput)
	}

	u, err := s.users.GetByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		if errors.Is(err, parley_errors.ErrNotFound) {
			return user.User{}, "", fmt.Errorf("%w: no user found with this phone number or email", parley_errors.ErrInvalidInput)
		}
		return user.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, "", fmt.Errorf("%w: incorrect password", parley_errors.ErrInvalidInput)
	}

	token, err := s.openSession(ctx, u.ID)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// openSession creates a session row and signs the handle over it.
func (s *AuthService) openSession(ctx context.Context, userID uuid.UUID) (string, error) {
	now := time.Now()
	session := user.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return "", err
	}

	claims := SessionClaims{
		UserID:    userID.String(),
		SessionID: session.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) ParseSessionToken(tokenString string) (SessionClaims, error) {
	if tokenString == "" {
		return SessionClaims{}, parley_errors.ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, parley_errors.ErrUnauthenticated
		}
		return s.secret, nil
	})
	if err != nil {
		return SessionClaims{}, parley_errors.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return SessionClaims{}, parley_errors.ErrUnauthenticated
	}
	return *claims, nil
}

// ValidateSession checks the session row behind a parsed token: it must
// exist, belong to the claimed user, not be revoked and not be expired.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID, userID uuid.UUID) (user.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return user.Session{}, parley_errors.ErrUnauthenticated
	}
	if session.UserID != userID || session.IsRevoked {
		return user.Session{}, parley_errors.ErrUnauthenticated
	}
	if time.Now().After(session.ExpiresAt) {
		return user.Session{}, parley_errors.ErrSessionExpired
	}
	return session, nil
}

// Identify resolves a raw token to the acting user and session. Used by the
// websocket handshake, where there is no middleware chain.
func (s *AuthService) Identify(ctx context.Context, token string) (uuid.UUID, uuid.UUID, error) {
	claims, err := s.ParseSessionToken(token)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, parley_errors.ErrUnauthenticated
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, parley_errors.ErrUnauthenticated
	}
	if _, err := s.ValidateSession(ctx, sessionID, userID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, sessionID, nil
}
