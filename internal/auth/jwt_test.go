package auth

import (
	"strings"
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT("test-secret")

	wallet := "7EqQdEULxWcraVx3mXKFjc84LhCkMGZCkRuDpvcMwJeK"
	token, err := GenerateToken(wallet)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.WalletAddress != wallet {
		t.Errorf("expected wallet %s, got %s", wallet, claims.WalletAddress)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	InitJWT("secret-one")
	token, err := GenerateToken("7EqQdEULxWcraVx3mXKFjc84LhCkMGZCkRuDpvcMwJeK")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	InitJWT("secret-two")
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	InitJWT("test-secret")
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidateWalletAddress(t *testing.T) {
	if err := ValidateWalletAddress("7EqQdEULxWcraVx3mXKFjc84LhCkMGZCkRuDpvcMwJeK"); err != nil {
		t.Errorf("expected valid address, got %v", err)
	}
	if err := ValidateWalletAddress(""); err == nil {
		t.Error("expected error for empty address")
	}
	if err := ValidateWalletAddress("0x0lI"); err == nil || !strings.Contains(err.Error(), "invalid wallet address") {
		t.Errorf("expected invalid address error, got %v", err)
	}
}
