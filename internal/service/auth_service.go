package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

const issuer = "rental-core"

// Claims of the access token handed to the back office.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// AuthService authenticates administrators and issues HS256 tokens.
type AuthService struct {
	store  repository.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(store repository.Store, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthService{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Login checks the credentials and returns a signed token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if strings.TrimSpace(email) == "" {
		return "", nil, validationError("email", "email is required")
	}
	if password == "" {
		return "", nil, validationError("password", "password is required")
	}

	u, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, unauthorizedError("invalid credentials")
		}
		return "", nil, internalError("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, unauthorizedError("invalid credentials")
	}

	token, err := s.sign(u.ID)
	if err != nil {
		return "", nil, internalError("sign token", err)
	}
	return token, u, nil
}

func (s *AuthService) sign(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates signature and expiry and returns the user id.
func (s *AuthService) ParseToken(token string) (uuid.UUID, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, unauthorizedError("invalid or expired token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, unauthorizedError("invalid or expired token")
	}
	return id, nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorizedError("user no longer exists")
		}
		return nil, internalError("load user", err)
	}
	return u, nil
}

// EnsureAdmin creates the configured administrator on first start. An
// existing account is left untouched, password included.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*model.User, bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, false, validationError("email", "admin email and password are required")
	}

	u, err := s.store.Users().FindByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, internalError("find admin", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, internalError("hash password", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrador"
	}
	u = &model.User{Email: email, PasswordHash: string(hash), Name: strings.TrimSpace(name)}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, false, repoError(err, "user", "create admin")
	}
	return u, true, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < 8 {
		return validationError("newPassword", "password must have at least 8 characters")
	}
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return unauthorizedError("invalid credentials")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return internalError("hash password", err)
	}
	if err := s.store.Users().UpdatePassword(ctx, userID, string(hash)); err != nil {
		return repoError(err, "user", "update password")
	}
	return nil
}
