package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"

	"price-prediction/internal/metrics"
	"price-prediction/internal/models"
	"price-prediction/internal/store"
)

// CollectWinnings settles the caller's stake in each requested finished
// round: a pro-rata share of the full pool on a win, a refund of their own
// stake on a tie or when the winning side is empty. Rounds are evaluated
// independently and sequentially; a payout already made in this call stands
// even if a later round id fails. Returns the total amount paid out.
func (e *Engine) CollectWinnings(ctx context.Context, sender string, roundIDs []uint64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := int64(0)
	for _, id := range roundIDs {
		payout, err := e.collectRound(ctx, sender, id)
		if err != nil {
			return total, fmt.Errorf("round %d: %w", id, err)
		}
		total += payout
	}
	return total, nil
}

func (e *Engine) collectRound(ctx context.Context, sender string, roundID uint64) (int64, error) {
	key := roundKey(roundID)

	finished, err := finishedTable.Load(ctx, e.store, key)
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("%w: round is not finished", models.ErrInvalidRound)
	}
	if err != nil {
		return 0, err
	}

	claimed, err := claimedTable.Has(ctx, e.store, sender, key)
	if err != nil {
		return 0, err
	}
	if claimed {
		return 0, models.ErrAlreadyClaimed
	}

	myBull, _, err := bullBetsTable.MayLoad(ctx, e.store, key, sender)
	if err != nil {
		return 0, err
	}
	myBear, _, err := bearBetsTable.MayLoad(ctx, e.store, key, sender)
	if err != nil {
		return 0, err
	}
	if myBull == 0 && myBear == 0 {
		return 0, models.ErrNothingToClaim
	}

	payout, err := roundPayout(finished, myBull, myBear)
	if err != nil {
		return 0, err
	}

	denom, err := e.settleDenom(ctx)
	if err != nil {
		return 0, err
	}

	var batch store.Batch
	if err := claimedTable.Save(&batch, true, sender, key); err != nil {
		return 0, err
	}

	// Pay out before marking the round claimed: a failed transfer must leave
	// the claim intact so the caller can retry.
	coin := models.Coin{Denom: denom, Amount: payout}
	if err := e.bank.Transfer(ctx, e.addr, sender, coin); err != nil {
		return 0, fmt.Errorf("failed to pay out winnings: %w", err)
	}
	if err := e.store.Commit(ctx, batch.Ops()); err != nil {
		if refundErr := e.bank.Transfer(ctx, sender, e.addr, coin); refundErr != nil {
			log.Printf("[CollectWinnings] Failed to claw back %d%s from %s after aborted claim: %v",
				payout, denom, sender, refundErr)
		}
		return 0, fmt.Errorf("failed to mark round claimed: %w", err)
	}

	metrics.ClaimsPaid.Inc()
	metrics.PayoutUnits.Add(float64(payout))
	log.Printf("[CollectWinnings] %s collected %d%s from round %d", sender, payout, denom, roundID)
	return payout, nil
}

// roundPayout computes what a claimant with the given stakes is owed.
func roundPayout(round models.FinishedRound, myBull, myBear int64) (int64, error) {
	// A tie refunds each side its own stake; so does a decisive round whose
	// winning side nobody joined, since there is no one to award the pool to.
	if round.Winner == nil {
		return myBull + myBear, nil
	}

	var myStake, winnerTotal int64
	switch *round.Winner {
	case models.DirectionBull:
		myStake, winnerTotal = myBull, round.BullAmount
	case models.DirectionBear:
		myStake, winnerTotal = myBear, round.BearAmount
	}
	if winnerTotal == 0 {
		return myBull + myBear, nil
	}
	if myStake == 0 {
		return 0, models.ErrNothingToClaim
	}

	pool := round.BullAmount + round.BearAmount
	return mulDiv(myStake, pool, winnerTotal), nil
}

// mulDiv returns a * b / c with floor division, widened through big.Int so
// the intermediate product cannot overflow int64.
func mulDiv(a, b, c int64) int64 {
	product := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	share := product.Div(product, big.NewInt(c))
	return share.Int64()
}
