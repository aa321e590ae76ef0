package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Service issues credentials and resolves actors for the workflow engine.
type Service struct {
	repo      Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{repo: repo, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

type RegisterRequest struct {
	Username  string     `json:"username" binding:"required"`
	Email     string     `json:"email"`
	Password  string     `json:"password" binding:"required"`
	Role      Role       `json:"role" binding:"required"`
	ManagerID *uuid.UUID `json:"manager_id"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	switch req.Role {
	case RoleClerk, RoleManager, RoleED, RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		ManagerID:    req.ManagerID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns a signed token plus the user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

// ParseToken validates a token and resolves the actor it names.
func (s *Service) ParseToken(ctx context.Context, tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return Actor{}, ErrInvalidToken
	}
	return s.Resolve(ctx, id)
}

// Resolve returns the actor view of a principal: role plus assigned manager.
// This is the contract the workflow engine authorizes every call against.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (Actor, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Actor{}, err
	}
	return user.actor(), nil
}
