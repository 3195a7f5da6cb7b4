package security_test

import (
	"strings"
	"testing"

	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/security"
)

func testArgonConfig() config.APIKeyConfig {
	// Small parameters keep the test fast.
	return config.APIKeyConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestGenerateAPIKeyShape(t *testing.T) {
	key, prefix, err := security.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(key, "bfk_") {
		t.Fatalf("key missing prefix: %s", key)
	}
	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("prefix %q is not a prefix of %q", prefix, key)
	}

	other, _, err := security.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if other == key {
		t.Fatal("two generated keys should differ")
	}
}

func TestHashAndVerifyAPIKey(t *testing.T) {
	cfg := testArgonConfig()
	key, _, err := security.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}

	encoded, err := security.HashAPIKey(key, cfg)
	if err != nil {
		t.Fatalf("HashAPIKey: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := security.VerifyAPIKey(key, encoded)
	if err != nil {
		t.Fatalf("VerifyAPIKey: %v", err)
	}
	if !ok {
		t.Fatal("expected key to verify")
	}

	ok, err = security.VerifyAPIKey(key+"x", encoded)
	if err != nil {
		t.Fatalf("VerifyAPIKey: %v", err)
	}
	if ok {
		t.Fatal("tampered key should not verify")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	if _, err := security.VerifyAPIKey("whatever", "$bcrypt$nope"); err == nil {
		t.Fatal("expected malformed hash error")
	}
}

func TestHashEmptyKeyRejected(t *testing.T) {
	if _, err := security.HashAPIKey("", testArgonConfig()); err == nil {
		t.Fatal("expected empty key error")
	}
}
