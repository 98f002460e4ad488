package bank

import (
	"context"
	"testing"

	"price-prediction/internal/models"
)

func TestMemoryBankTransfer(t *testing.T) {
	b := NewMemoryBank()
	ctx := context.Background()

	b.Mint("alice", models.Coin{Denom: "uusd", Amount: 100})

	if err := b.Transfer(ctx, "alice", "bob", models.Coin{Denom: "uusd", Amount: 60}); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	aliceBal, _ := b.Balance(ctx, "alice", "uusd")
	bobBal, _ := b.Balance(ctx, "bob", "uusd")
	if aliceBal != 40 {
		t.Errorf("expected alice balance 40, got %d", aliceBal)
	}
	if bobBal != 60 {
		t.Errorf("expected bob balance 60, got %d", bobBal)
	}
}

func TestMemoryBankInsufficientFunds(t *testing.T) {
	b := NewMemoryBank()
	ctx := context.Background()

	b.Mint("alice", models.Coin{Denom: "uusd", Amount: 10})

	if err := b.Transfer(ctx, "alice", "bob", models.Coin{Denom: "uusd", Amount: 11}); err == nil {
		t.Error("expected insufficient funds error")
	}

	// A failed transfer moves nothing.
	aliceBal, _ := b.Balance(ctx, "alice", "uusd")
	if aliceBal != 10 {
		t.Errorf("expected alice balance unchanged at 10, got %d", aliceBal)
	}
}

func TestMemoryBankRejectsNegativeAmount(t *testing.T) {
	b := NewMemoryBank()
	if err := b.Transfer(context.Background(), "alice", "bob", models.Coin{Denom: "uusd", Amount: -1}); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestMemoryBankDenomsAreIndependent(t *testing.T) {
	b := NewMemoryBank()
	ctx := context.Background()

	b.Mint("alice", models.Coin{Denom: "uusd", Amount: 100})

	if err := b.Transfer(ctx, "alice", "bob", models.Coin{Denom: "uatom", Amount: 1}); err == nil {
		t.Error("expected insufficient funds in the other denom")
	}
}
