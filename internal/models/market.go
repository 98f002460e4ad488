package models

import "time"

// FeePrecision is the denominator for all fee rates. A rate of 100 is 1%.
const FeePrecision = 10_000

type Direction string

const (
	DirectionBull Direction = "bull"
	DirectionBear Direction = "bear"
)

// Coin is an amount of a single denomination, in integer micro-units.
type Coin struct {
	Denom  string `json:"denom"`
	Amount int64  `json:"amount"`
}

// Config holds the owner-mutable market parameters.
type Config struct {
	NextRoundSeconds int64  `json:"next_round_seconds"`
	MinimumBet       int64  `json:"minimum_bet"`
	BurnFee          int64  `json:"burn_fee"`   // basis points of each bet, FeePrecision denominator
	StakerFee        int64  `json:"staker_fee"` // basis points of each bet, FeePrecision denominator
	BurnAddr         string `json:"burn_addr"`
	OracleAddr       string `json:"oracle_addr"`
	RewardsAddr      string `json:"rewards_addr"`
}

// PartialConfig is an overlay for Config: nil fields are left unchanged.
type PartialConfig struct {
	NextRoundSeconds *int64  `json:"next_round_seconds"`
	MinimumBet       *int64  `json:"minimum_bet"`
	BurnFee          *int64  `json:"burn_fee"`
	StakerFee        *int64  `json:"staker_fee"`
	BurnAddr         *string `json:"burn_addr"`
	OracleAddr       *string `json:"oracle_addr"`
	RewardsAddr      *string `json:"rewards_addr"`
}

// Apply merges the overlay into cfg and returns the result.
func (p PartialConfig) Apply(cfg Config) Config {
	if p.NextRoundSeconds != nil {
		cfg.NextRoundSeconds = *p.NextRoundSeconds
	}
	if p.MinimumBet != nil {
		cfg.MinimumBet = *p.MinimumBet
	}
	if p.BurnFee != nil {
		cfg.BurnFee = *p.BurnFee
	}
	if p.StakerFee != nil {
		cfg.StakerFee = *p.StakerFee
	}
	if p.BurnAddr != nil {
		cfg.BurnAddr = *p.BurnAddr
	}
	if p.OracleAddr != nil {
		cfg.OracleAddr = *p.OracleAddr
	}
	if p.RewardsAddr != nil {
		cfg.RewardsAddr = *p.RewardsAddr
	}
	return cfg
}

// NextRound is the round currently open for betting.
type NextRound struct {
	ID         uint64    `json:"id"`
	BidTime    time.Time `json:"bid_time"`
	OpenTime   time.Time `json:"open_time"`
	CloseTime  time.Time `json:"close_time"`
	BullAmount int64     `json:"bull_amount"`
	BearAmount int64     `json:"bear_amount"`
}

// LiveRound has its opening price fixed and no longer accepts bets.
type LiveRound struct {
	ID         uint64    `json:"id"`
	BidTime    time.Time `json:"bid_time"`
	OpenTime   time.Time `json:"open_time"`
	CloseTime  time.Time `json:"close_time"`
	OpenPrice  int64     `json:"open_price"`
	BullAmount int64     `json:"bull_amount"`
	BearAmount int64     `json:"bear_amount"`
}

// FinishedRound is the immutable settlement record for a round.
// Winner is nil when the round tied.
type FinishedRound struct {
	ID         uint64     `json:"id"`
	BidTime    time.Time  `json:"bid_time"`
	OpenTime   time.Time  `json:"open_time"`
	CloseTime  time.Time  `json:"close_time"`
	OpenPrice  int64      `json:"open_price"`
	ClosePrice int64      `json:"close_price"`
	Winner     *Direction `json:"winner"`
	BullAmount int64      `json:"bull_amount"`
	BearAmount int64      `json:"bear_amount"`
}

// StatusResponse reports the current bidding and live rounds; either may be absent.
type StatusResponse struct {
	MarketID     string     `json:"market_id"`
	BiddingRound *NextRound `json:"bidding_round"`
	LiveRound    *LiveRound `json:"live_round"`
}

// PositionResponse reports an account's stakes in the live and bidding rounds.
type PositionResponse struct {
	LiveBullAmount int64 `json:"live_bull_amount"`
	LiveBearAmount int64 `json:"live_bear_amount"`
	NextBullAmount int64 `json:"next_bull_amount"`
	NextBearAmount int64 `json:"next_bear_amount"`
}

// BetRequest places a wager on the current bidding round.
type BetRequest struct {
	RoundID uint64 `json:"round_id"`
	Amount  int64  `json:"amount" binding:"required,gt=0"`
}

// CollectRequest claims winnings for one or more finished rounds.
type CollectRequest struct {
	Rounds []uint64 `json:"rounds" binding:"required,min=1"`
}

// FundStakersRequest optionally attaches extra funds to a fee flush.
type FundStakersRequest struct {
	Amount int64 `json:"amount"`
}

// UpdatePriceRequest sets the oracle price from a decimal string, e.g. "1.000001".
type UpdatePriceRequest struct {
	Price string `json:"price" binding:"required"`
}

// WalletLoginRequest opens a session for a wallet address.
type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}
