package market

import (
	"context"
	"fmt"
	"log"
	"time"

	"price-prediction/internal/metrics"
	"price-prediction/internal/models"
	"price-prediction/internal/store"
)

// AdvanceRound moves the round lifecycle forward as far as now allows:
// settling the live round once its close time is reached, promoting the
// bidding round to live once its open time is reached, and opening a fresh
// bidding round. It is permissionless and a successful no-op when nothing is
// due yet, so it is always safe to retry.
func (e *Engine) AdvanceRound(ctx context.Context, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.assertNotHaulted(ctx); err != nil {
		return err
	}

	cfg, err := e.config(ctx)
	if err != nil {
		return err
	}
	denom, err := e.settleDenom(ctx)
	if err != nil {
		return err
	}

	var batch store.Batch

	// Settle the live round if its close time has passed.
	burnAmount := int64(0)
	live, hasLive, err := liveRoundItem.MayLoad(ctx, e.store)
	if err != nil {
		return err
	}
	if hasLive && !now.Before(live.CloseTime) {
		burnAmount, err = e.settleLiveRound(ctx, &batch, live)
		if err != nil {
			return err
		}
		hasLive = false
	}

	// Promote the bidding round once its open time has passed and the live
	// slot is free, and open the next bidding round in its place. The new
	// round's open time is anchored to the promoted round's close time so
	// rounds stay contiguous even when the duration changes mid-flight.
	duration := time.Duration(cfg.NextRoundSeconds) * time.Second
	next, hasNext, err := nextRoundItem.MayLoad(ctx, e.store)
	if err != nil {
		return err
	}
	switch {
	case hasNext && !hasLive && !now.Before(next.OpenTime):
		openPrice, err := e.oracle.Price(ctx)
		if err != nil {
			return fmt.Errorf("failed to read opening price: %w", err)
		}
		promoted := models.LiveRound{
			ID:         next.ID,
			BidTime:    next.BidTime,
			OpenTime:   next.OpenTime,
			CloseTime:  next.CloseTime,
			OpenPrice:  openPrice,
			BullAmount: next.BullAmount,
			BearAmount: next.BearAmount,
		}
		if err := liveRoundItem.Save(&batch, promoted); err != nil {
			return err
		}
		if err := e.openBiddingRound(ctx, &batch, now, next.CloseTime, duration); err != nil {
			return err
		}
		log.Printf("[AdvanceRound] Round %d is live at price %d", promoted.ID, openPrice)

	case !hasNext:
		// Bootstrap: the very first bidding round after instantiation.
		if err := e.openBiddingRound(ctx, &batch, now, now.Add(duration), duration); err != nil {
			return err
		}
	}

	if len(batch.Ops()) == 0 {
		return nil
	}

	// The settled round's accrued burn fees leave escrow before the state
	// commit; if the transfer fails the whole advance aborts and can be
	// retried, and an aborted commit claws the payment back.
	burnCoin := models.Coin{Denom: denom, Amount: burnAmount}
	if burnAmount > 0 {
		if err := e.bank.Transfer(ctx, e.addr, cfg.BurnAddr, burnCoin); err != nil {
			return fmt.Errorf("failed to pay burn fees: %w", err)
		}
	}
	if err := e.store.Commit(ctx, batch.Ops()); err != nil {
		if burnAmount > 0 {
			if refundErr := e.bank.Transfer(ctx, cfg.BurnAddr, e.addr, burnCoin); refundErr != nil {
				log.Printf("[AdvanceRound] Failed to recover burn payment after aborted advance: %v", refundErr)
			}
		}
		return fmt.Errorf("failed to advance round: %w", err)
	}
	if burnAmount > 0 {
		log.Printf("[AdvanceRound] Burned %d%s to %s", burnAmount, denom, cfg.BurnAddr)
	}
	return nil
}

// settleLiveRound writes the immutable finished record for the live round and
// clears the live slot. It returns the round's pending burn amount.
func (e *Engine) settleLiveRound(ctx context.Context, batch *store.Batch, live models.LiveRound) (int64, error) {
	closePrice, err := e.oracle.Price(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read closing price: %w", err)
	}

	var winner *models.Direction
	switch {
	case closePrice > live.OpenPrice:
		bull := models.DirectionBull
		winner = &bull
	case closePrice < live.OpenPrice:
		bear := models.DirectionBear
		winner = &bear
	}

	finished := models.FinishedRound{
		ID:         live.ID,
		BidTime:    live.BidTime,
		OpenTime:   live.OpenTime,
		CloseTime:  live.CloseTime,
		OpenPrice:  live.OpenPrice,
		ClosePrice: closePrice,
		Winner:     winner,
		BullAmount: live.BullAmount,
		BearAmount: live.BearAmount,
	}
	if err := finishedTable.Save(batch, finished, roundKey(live.ID)); err != nil {
		return 0, err
	}
	liveRoundItem.Remove(batch)

	burn, hasBurn, err := pendingBurnTable.MayLoad(ctx, e.store, roundKey(live.ID))
	if err != nil {
		return 0, err
	}
	if hasBurn {
		pendingBurnTable.Remove(batch, roundKey(live.ID))
	}

	outcome := "tie"
	if winner != nil {
		outcome = string(*winner)
	}
	metrics.RoundsSettled.WithLabelValues(outcome).Inc()
	log.Printf("[AdvanceRound] Round %d finished: open=%d close=%d winner=%s bull=%d bear=%d",
		live.ID, live.OpenPrice, closePrice, outcome, live.BullAmount, live.BearAmount)

	return burn, nil
}

// openBiddingRound creates the next bidding round with the next unused id.
func (e *Engine) openBiddingRound(ctx context.Context, batch *store.Batch, now, openTime time.Time, duration time.Duration) error {
	id, err := nextRoundIDItem.Load(ctx, e.store)
	if err != nil {
		return fmt.Errorf("failed to load round counter: %w", err)
	}

	round := models.NextRound{
		ID:        id,
		BidTime:   now,
		OpenTime:  openTime,
		CloseTime: openTime.Add(duration),
	}
	if err := nextRoundItem.Save(batch, round); err != nil {
		return err
	}
	if err := nextRoundIDItem.Save(batch, id+1); err != nil {
		return err
	}

	log.Printf("[AdvanceRound] Round %d open for bidding until %s", id, round.OpenTime.UTC().Format(time.RFC3339))
	return nil
}
