// Package bank is the boundary to the ledger that actually holds funds. The
// market engine only moves money through this interface; custody itself is
// out of scope.
package bank

import (
	"context"
	"fmt"
	"sync"

	"price-prediction/internal/models"
)

// Bank credits and debits accounts in a single denomination space.
type Bank interface {
	Transfer(ctx context.Context, from, to string, coin models.Coin) error
	Balance(ctx context.Context, addr, denom string) (int64, error)
}

// MemoryBank is the reference in-process ledger used by tests and dev runs.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[string]map[string]int64 // addr -> denom -> amount
}

func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[string]map[string]int64)}
}

// Mint credits an account out of thin air. Dev faucet only.
func (b *MemoryBank) Mint(addr string, coin models.Coin) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(addr, coin.Denom, coin.Amount)
}

func (b *MemoryBank) credit(addr, denom string, amount int64) {
	if b.balances[addr] == nil {
		b.balances[addr] = make(map[string]int64)
	}
	b.balances[addr][denom] += amount
}

func (b *MemoryBank) Transfer(_ context.Context, from, to string, coin models.Coin) error {
	if coin.Amount < 0 {
		return fmt.Errorf("cannot transfer a negative amount: %d", coin.Amount)
	}
	if coin.Amount == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[from][coin.Denom] < coin.Amount {
		return fmt.Errorf("insufficient funds: %s has %d%s, needs %d%s",
			from, b.balances[from][coin.Denom], coin.Denom, coin.Amount, coin.Denom)
	}
	b.balances[from][coin.Denom] -= coin.Amount
	b.credit(to, coin.Denom, coin.Amount)
	return nil
}

func (b *MemoryBank) Balance(_ context.Context, addr, denom string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[addr][denom], nil
}
