package models

import "errors"

// Market error kinds. Every failed operation aborts with one of these wrapped
// in context; no partial state is ever left behind.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSystemHaulted     = errors.New("market is haulted")
	ErrInvalidRound      = errors.New("invalid round reference")
	ErrDuplicateBet      = errors.New("account already has a bet on this round")
	ErrWrongDenomination = errors.New("wrong settle denomination")
	ErrBelowMinimumBet   = errors.New("bet is below the minimum")
	ErrAlreadyClaimed    = errors.New("winnings already claimed for this round")
	ErrNothingToClaim    = errors.New("no claimable stake in this round")
)
