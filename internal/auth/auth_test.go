package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/config"
)

func newTestService(t *testing.T, expiry time.Duration) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("stream-key-1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash stream key: %v", err)
	}
	return New(&config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenExpiry:   expiry,
		StreamKeyHash: string(hash),
	})
}

func TestJoinViewer(t *testing.T) {
	s := newTestService(t, time.Hour)

	t.Run("issues a valid token", func(t *testing.T) {
		identity, token, err := s.JoinViewer("alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Role != RoleViewer {
			t.Errorf("expected viewer role, got %s", identity.Role)
		}

		parsed, err := s.ValidateToken(token)
		if err != nil {
			t.Fatalf("validation failed: %v", err)
		}
		if parsed.ID != identity.ID || parsed.Name != "alice" || parsed.Role != RoleViewer {
			t.Errorf("identity mismatch: %+v vs %+v", parsed, identity)
		}
	})

	t.Run("rejects bad display names", func(t *testing.T) {
		if _, _, err := s.JoinViewer(""); !errors.Is(err, ErrInvalidDisplayName) {
			t.Errorf("expected ErrInvalidDisplayName for empty, got %v", err)
		}
		if _, _, err := s.JoinViewer("   "); !errors.Is(err, ErrInvalidDisplayName) {
			t.Errorf("expected ErrInvalidDisplayName for blank, got %v", err)
		}
		if _, _, err := s.JoinViewer(strings.Repeat("x", 65)); !errors.Is(err, ErrInvalidDisplayName) {
			t.Errorf("expected ErrInvalidDisplayName for long name, got %v", err)
		}
	})
}

func TestAuthenticateBroadcaster(t *testing.T) {
	s := newTestService(t, time.Hour)

	t.Run("correct key", func(t *testing.T) {
		identity, token, err := s.AuthenticateBroadcaster("stream-key-1", "Streamer")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Role != RoleBroadcaster {
			t.Errorf("expected broadcaster role, got %s", identity.Role)
		}
		parsed, err := s.ValidateToken(token)
		if err != nil || parsed.Role != RoleBroadcaster {
			t.Errorf("token did not carry the broadcaster role: %v %v", parsed, err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		_, _, err := s.AuthenticateBroadcaster("wrong", "Streamer")
		if !errors.Is(err, ErrInvalidStreamKey) {
			t.Errorf("expected ErrInvalidStreamKey, got %v", err)
		}
	})
}

func TestValidateToken(t *testing.T) {
	s := newTestService(t, time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		if _, err := s.ValidateToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("expected ErrTokenInvalid, got %v", err)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		_, token, err := s.JoinViewer("alice")
		if err != nil {
			t.Fatalf("join failed: %v", err)
		}
		tampered := token[:len(token)-4] + "AAAA"
		if _, err := s.ValidateToken(tampered); err == nil {
			t.Error("tampered token accepted")
		}
	})

	t.Run("token from another secret", func(t *testing.T) {
		other := New(&config.AuthConfig{
			JWTSecret:   "other-secret",
			TokenExpiry: time.Hour,
		})
		_, token, err := other.JoinViewer("alice")
		if err != nil {
			t.Fatalf("join failed: %v", err)
		}
		if _, err := s.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("expected ErrTokenInvalid, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		short := newTestService(t, -time.Minute)
		_, token, err := short.JoinViewer("alice")
		if err != nil {
			t.Fatalf("join failed: %v", err)
		}
		if _, err := short.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}
