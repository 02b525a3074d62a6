// Package auth issues and validates viewer identity tokens. Viewers join
// with a display name only; broadcasters additionally present a stream
// key. No accounts are stored.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/config"
)

var (
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrInvalidStreamKey   = errors.New("invalid stream key")
	ErrInvalidDisplayName = errors.New("invalid display name")
)

// Role distinguishes viewers from broadcasters
type Role string

const (
	RoleViewer      Role = "viewer"
	RoleBroadcaster Role = "broadcaster"
)

// Identity is the authenticated caller carried through requests
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Service provides token issuing and validation
type Service struct {
	config *config.AuthConfig
}

// New creates a new auth service
func New(cfg *config.AuthConfig) *Service {
	return &Service{config: cfg}
}

// JoinViewer issues a viewer identity and its signed token
func (s *Service) JoinViewer(displayName string) (*Identity, string, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > 64 {
		return nil, "", ErrInvalidDisplayName
	}

	identity := &Identity{
		ID:   uuid.New().String(),
		Name: displayName,
		Role: RoleViewer,
	}
	token, err := s.sign(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// AuthenticateBroadcaster verifies the stream key and issues a
// broadcaster identity
func (s *Service) AuthenticateBroadcaster(streamKey, displayName string) (*Identity, string, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > 64 {
		return nil, "", ErrInvalidDisplayName
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.config.StreamKeyHash), []byte(streamKey)); err != nil {
		return nil, "", ErrInvalidStreamKey
	}

	identity := &Identity{
		ID:   uuid.New().String(),
		Name: displayName,
		Role: RoleBroadcaster,
	}
	token, err := s.sign(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

func (s *Service) sign(identity *Identity) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  identity.ID,
		"name": identity.Name,
		"role": string(identity.Role),
		"exp":  now.Add(s.config.TokenExpiry).Unix(),
		"iat":  now.Unix(),
	})

	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token and returns the identity it carries
func (s *Service) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	id, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if id == "" || name == "" {
		return nil, ErrTokenInvalid
	}

	return &Identity{ID: id, Name: name, Role: Role(role)}, nil
}
