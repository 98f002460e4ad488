// Package rewards is the boundary to the external staking-rewards sink that
// receives flushed protocol fees.
package rewards

import (
	"context"
	"log"

	"price-prediction/internal/bank"
	"price-prediction/internal/models"
)

// Sink accepts a fund message with attached value.
type Sink interface {
	Fund(ctx context.Context, from string, coin models.Coin) error
}

// StakingSink forwards funded amounts to the rewards account on the bank.
type StakingSink struct {
	bank bank.Bank
	addr string
}

func NewStakingSink(b bank.Bank, addr string) *StakingSink {
	return &StakingSink{bank: b, addr: addr}
}

func (s *StakingSink) Fund(ctx context.Context, from string, coin models.Coin) error {
	if coin.Amount == 0 {
		return nil
	}
	if err := s.bank.Transfer(ctx, from, s.addr, coin); err != nil {
		return err
	}
	log.Printf("[Rewards] Funded %d%s to %s", coin.Amount, coin.Denom, s.addr)
	return nil
}
