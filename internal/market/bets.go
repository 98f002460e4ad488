package market

import (
	"context"
	"fmt"
	"log"

	"price-prediction/internal/metrics"
	"price-prediction/internal/models"
	"price-prediction/internal/store"
)

// PlaceBull wagers the attached funds on the price going up.
func (e *Engine) PlaceBull(ctx context.Context, sender string, roundID uint64, funds models.Coin) error {
	return e.placeBet(ctx, sender, roundID, funds, models.DirectionBull)
}

// PlaceBear wagers the attached funds on the price going down.
func (e *Engine) PlaceBear(ctx context.Context, sender string, roundID uint64, funds models.Coin) error {
	return e.placeBet(ctx, sender, roundID, funds, models.DirectionBear)
}

func (e *Engine) placeBet(ctx context.Context, sender string, roundID uint64, funds models.Coin, dir models.Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.assertNotHaulted(ctx); err != nil {
		return err
	}

	denom, err := e.settleDenom(ctx)
	if err != nil {
		return err
	}
	if funds.Denom != denom {
		return fmt.Errorf("%w: got %s, want %s", models.ErrWrongDenomination, funds.Denom, denom)
	}

	cfg, err := e.config(ctx)
	if err != nil {
		return err
	}
	if funds.Amount < cfg.MinimumBet {
		return fmt.Errorf("%w: %d < %d", models.ErrBelowMinimumBet, funds.Amount, cfg.MinimumBet)
	}

	next, hasNext, err := nextRoundItem.MayLoad(ctx, e.store)
	if err != nil {
		return err
	}
	if !hasNext || next.ID != roundID {
		return fmt.Errorf("%w: round %d is not open for bidding", models.ErrInvalidRound, roundID)
	}

	// One bet per account per round, across both sides.
	key := roundKey(roundID)
	for _, side := range []store.Table[int64]{bullBetsTable, bearBetsTable} {
		exists, err := side.Has(ctx, e.store, key, sender)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: round %d", models.ErrDuplicateBet, roundID)
		}
	}

	// The bet-time fee comes off the top: the staker cut accumulates
	// globally, the burn cut accrues against this round until it settles.
	burnFee := mulDiv(funds.Amount, cfg.BurnFee, models.FeePrecision)
	stakerFee := mulDiv(funds.Amount, cfg.StakerFee, models.FeePrecision)
	net := funds.Amount - burnFee - stakerFee

	var batch store.Batch
	switch dir {
	case models.DirectionBull:
		next.BullAmount += net
		if err := bullBetsTable.Save(&batch, net, key, sender); err != nil {
			return err
		}
	case models.DirectionBear:
		next.BearAmount += net
		if err := bearBetsTable.Save(&batch, net, key, sender); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown bet direction: %s", dir)
	}
	if err := nextRoundItem.Save(&batch, next); err != nil {
		return err
	}

	if stakerFee > 0 {
		accumulated, err := accumFeeItem.Load(ctx, e.store)
		if err != nil {
			return fmt.Errorf("failed to load accumulated fee: %w", err)
		}
		if err := accumFeeItem.Save(&batch, accumulated+stakerFee); err != nil {
			return err
		}
	}
	if burnFee > 0 {
		pending, _, err := pendingBurnTable.MayLoad(ctx, e.store, key)
		if err != nil {
			return err
		}
		if err := pendingBurnTable.Save(&batch, pending+burnFee, key); err != nil {
			return err
		}
	}

	// Pull the gross wager into escrow before committing the ledger entry;
	// an underfunded caller aborts with no state change.
	if err := e.bank.Transfer(ctx, sender, e.addr, funds); err != nil {
		return fmt.Errorf("failed to escrow wager: %w", err)
	}
	if err := e.store.Commit(ctx, batch.Ops()); err != nil {
		if refundErr := e.bank.Transfer(ctx, e.addr, sender, funds); refundErr != nil {
			log.Printf("[PlaceBet] Failed to refund %s after aborted bet: %v", sender, refundErr)
		}
		return fmt.Errorf("failed to record bet: %w", err)
	}

	metrics.BetsPlaced.WithLabelValues(string(dir)).Inc()
	log.Printf("[PlaceBet] %s bet %d%s on %s for round %d (net %d, fees burn=%d staker=%d)",
		sender, funds.Amount, funds.Denom, dir, roundID, net, burnFee, stakerFee)
	return nil
}
