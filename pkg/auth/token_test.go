package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "roamiii-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, JTI: "session-1"})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id mismatch: %s", claims.UserID)
	}
	if claims.ID != "session-1" {
		t.Fatalf("jti mismatch: %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer mismatch: %s", claims.Issuer)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatal(err)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseAccessTokenExpiry(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	stale := time.Now().Add(-2 * time.Hour)

	signed, err := MintAccessToken(cfg, stale, AccessTokenPayload{UserID: userID})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expired token must fail strict parse")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, signed)
	if err != nil {
		t.Fatalf("refresh path parse failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id mismatch: %s", claims.UserID)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()

	missingSecret := cfg
	missingSecret.Secret = ""
	if _, err := MintAccessToken(missingSecret, time.Now(), AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("missing secret must fail")
	}

	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("nil user id must fail")
	}
}
