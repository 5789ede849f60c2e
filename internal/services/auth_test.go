package services

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func testTokenService() TokenService {
	return TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "liftacademy",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc := testTokenService()
	hash, err := svc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !svc.VerifyPassword("s3cret-pass", hash) {
		t.Fatal("expected password to verify")
	}
	if svc.VerifyPassword("wrong-pass", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestVerifyPasswordLegacyBcrypt(t *testing.T) {
	svc := testTokenService()
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !svc.VerifyPassword("old-pass", string(legacy)) {
		t.Fatal("expected legacy bcrypt hash to verify")
	}
	if svc.VerifyPassword("other", string(legacy)) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testTokenService()
	signed, exp, err := svc.CreateAccessToken("user-1", "a@b.c", []string{"SUPER_ADMIN"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if exp <= time.Now().Unix() {
		t.Fatalf("expected future expiry, got %d", exp)
	}
	token, claims, err := svc.ParseToken(signed)
	if err != nil || !token.Valid {
		t.Fatalf("parse: %v", err)
	}
	if claims["sub"] != "user-1" {
		t.Fatalf("sub = %v", claims["sub"])
	}
	if claims["typ"] != "access" {
		t.Fatalf("typ = %v", claims["typ"])
	}
	roles := ClaimRoles(claims)
	if len(roles) != 1 || roles[0] != "SUPER_ADMIN" {
		t.Fatalf("roles = %v", roles)
	}
}

func TestRefreshTokenHasRefreshType(t *testing.T) {
	svc := testTokenService()
	signed, err := svc.CreateRefreshToken("user-2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	token, claims, err := svc.ParseToken(signed)
	if err != nil || !token.Valid {
		t.Fatalf("parse: %v", err)
	}
	if claims["typ"] != "refresh" {
		t.Fatalf("typ = %v", claims["typ"])
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	svc := testTokenService()
	other := svc
	other.Secret = []byte("another-secret")
	signed, _, err := other.CreateAccessToken("user-3", "x@y.z", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token, _, err := svc.ParseToken(signed); err == nil && token.Valid {
		t.Fatal("expected token signed with foreign secret to be rejected")
	}
}

func TestParseTokenRejectsForeignIssuer(t *testing.T) {
	svc := testTokenService()
	other := svc
	other.Issuer = "someone-else"
	signed, _, err := other.CreateAccessToken("user-4", "x@y.z", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token, _, err := svc.ParseToken(signed); err == nil && token.Valid {
		t.Fatal("expected token from foreign issuer to be rejected")
	}
}
