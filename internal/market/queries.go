package market

import (
	"context"
	"errors"
	"fmt"

	"price-prediction/internal/models"
	"price-prediction/internal/store"
)

// ErrRoundNotFound is returned by FinishedRound for an unknown round id.
var ErrRoundNotFound = errors.New("finished round not found")

// Config returns the current mutable parameters.
func (e *Engine) Config(ctx context.Context) (models.Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config(ctx)
}

// Status returns the current bidding and live rounds; either may be absent.
func (e *Engine) Status(ctx context.Context) (models.StatusResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	marketID, _, err := marketIDItem.MayLoad(ctx, e.store)
	if err != nil {
		return models.StatusResponse{}, err
	}

	resp := models.StatusResponse{MarketID: marketID}

	next, hasNext, err := nextRoundItem.MayLoad(ctx, e.store)
	if err != nil {
		return models.StatusResponse{}, err
	}
	if hasNext {
		resp.BiddingRound = &next
	}

	live, hasLive, err := liveRoundItem.MayLoad(ctx, e.store)
	if err != nil {
		return models.StatusResponse{}, err
	}
	if hasLive {
		resp.LiveRound = &live
	}

	return resp, nil
}

// Position returns an account's recorded stakes in the live and bidding rounds.
func (e *Engine) Position(ctx context.Context, address string) (models.PositionResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var resp models.PositionResponse

	live, hasLive, err := liveRoundItem.MayLoad(ctx, e.store)
	if err != nil {
		return resp, err
	}
	if hasLive {
		key := roundKey(live.ID)
		if resp.LiveBullAmount, _, err = bullBetsTable.MayLoad(ctx, e.store, key, address); err != nil {
			return resp, err
		}
		if resp.LiveBearAmount, _, err = bearBetsTable.MayLoad(ctx, e.store, key, address); err != nil {
			return resp, err
		}
	}

	next, hasNext, err := nextRoundItem.MayLoad(ctx, e.store)
	if err != nil {
		return resp, err
	}
	if hasNext {
		key := roundKey(next.ID)
		if resp.NextBullAmount, _, err = bullBetsTable.MayLoad(ctx, e.store, key, address); err != nil {
			return resp, err
		}
		if resp.NextBearAmount, _, err = bearBetsTable.MayLoad(ctx, e.store, key, address); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// FinishedRound returns the immutable record for a settled round.
func (e *Engine) FinishedRound(ctx context.Context, roundID uint64) (models.FinishedRound, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	round, err := finishedTable.Load(ctx, e.store, roundKey(roundID))
	if errors.Is(err, store.ErrNotFound) {
		return models.FinishedRound{}, fmt.Errorf("%w: %d", ErrRoundNotFound, roundID)
	}
	if err != nil {
		return models.FinishedRound{}, err
	}
	return round, nil
}

// Denom returns the settle denomination fixed at instantiation.
func (e *Engine) Denom(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settleDenom(ctx)
}

// AccumulatedFee returns the staker fees pending a flush to the rewards sink.
func (e *Engine) AccumulatedFee(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fee, _, err := accumFeeItem.MayLoad(ctx, e.store)
	if err != nil {
		return 0, err
	}
	return fee, nil
}
