package market

import (
	"context"
	"fmt"
	"log"

	"price-prediction/internal/metrics"
	"price-prediction/internal/models"
	"price-prediction/internal/store"
)

// FlushToRewardsSink forwards the accumulated staker fees, plus any funds the
// caller attached, to the external rewards sink and zeroes the accumulator.
// Permissionless: anyone may trigger a flush. Returns the amount forwarded.
func (e *Engine) FlushToRewardsSink(ctx context.Context, sender string, attached models.Coin) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	denom, err := e.settleDenom(ctx)
	if err != nil {
		return 0, err
	}
	if attached.Amount < 0 {
		return 0, fmt.Errorf("attached amount cannot be negative: %d", attached.Amount)
	}
	if attached.Amount > 0 && attached.Denom != denom {
		return 0, fmt.Errorf("%w: got %s, want %s", models.ErrWrongDenomination, attached.Denom, denom)
	}

	accumulated, err := accumFeeItem.Load(ctx, e.store)
	if err != nil {
		return 0, fmt.Errorf("failed to load accumulated fee: %w", err)
	}
	total := accumulated + attached.Amount
	if total == 0 {
		return 0, nil
	}

	if attached.Amount > 0 {
		if err := e.bank.Transfer(ctx, sender, e.addr, attached); err != nil {
			return 0, fmt.Errorf("failed to escrow attached funds: %w", err)
		}
	}

	var batch store.Batch
	if err := accumFeeItem.Save(&batch, 0); err != nil {
		return 0, err
	}
	if err := e.store.Commit(ctx, batch.Ops()); err != nil {
		if attached.Amount > 0 {
			if refundErr := e.bank.Transfer(ctx, e.addr, sender, attached); refundErr != nil {
				log.Printf("[FundStakers] Failed to refund %s after aborted flush: %v", sender, refundErr)
			}
		}
		return 0, fmt.Errorf("failed to reset fee accumulator: %w", err)
	}

	// A sink failure must not destroy the accumulated fees: restore the
	// accumulator and hand back anything attached.
	if err := e.rewards.Fund(ctx, e.addr, models.Coin{Denom: denom, Amount: total}); err != nil {
		var restore store.Batch
		if saveErr := accumFeeItem.Save(&restore, accumulated); saveErr != nil {
			log.Printf("[FundStakers] Failed to encode accumulator restore after aborted flush: %v", saveErr)
		} else if commitErr := e.store.Commit(ctx, restore.Ops()); commitErr != nil {
			log.Printf("[FundStakers] Failed to restore fee accumulator after aborted flush: %v", commitErr)
		}
		if attached.Amount > 0 {
			if refundErr := e.bank.Transfer(ctx, e.addr, sender, attached); refundErr != nil {
				log.Printf("[FundStakers] Failed to refund %s after aborted flush: %v", sender, refundErr)
			}
		}
		return 0, fmt.Errorf("failed to fund rewards sink: %w", err)
	}

	metrics.FeesFlushed.Inc()
	log.Printf("[FundStakers] Flushed %d%s to the rewards sink (%d accumulated, %d attached)",
		total, denom, accumulated, attached.Amount)
	return total, nil
}
