package session

import (
	"context"
	"testing"
	"time"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = "revoked"
	return nil
}

func (m *memoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.values[key]
	return ok, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type staticKeyer struct{}

func (staticKeyer) SessionKey(sessionID string) string { return "bf:session:" + sessionID }

func TestRevokeAndCheck(t *testing.T) {
	m := &Manager{store: &memoryStore{}, keyer: staticKeyer{}, ttl: time.Hour}
	ctx := context.Background()

	revoked, err := m.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh token should not be revoked")
	}

	if err := m.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err = m.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("token should be revoked")
	}

	if err := m.Restore(ctx, "jti-1"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	revoked, _ = m.IsRevoked(ctx, "jti-1")
	if revoked {
		t.Fatal("restored token should not be revoked")
	}
}

func TestBlankTokenIDRejected(t *testing.T) {
	m := &Manager{store: &memoryStore{}, keyer: staticKeyer{}, ttl: time.Hour}
	if err := m.Revoke(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank token id")
	}
	if _, err := m.IsRevoked(context.Background(), ""); err == nil {
		t.Fatal("expected error for blank token id")
	}
}
