// Package market implements the round lifecycle and settlement engine for the
// up/down price-prediction market: betting rounds advance Bidding -> Live ->
// Finished on externally supplied timestamps, wagers are recorded per account
// per side, finished rounds settle against the oracle price, and winners claim
// pari-mutuel payouts exactly once.
package market

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"price-prediction/internal/bank"
	"price-prediction/internal/models"
	"price-prediction/internal/oracle"
	"price-prediction/internal/rewards"
	"price-prediction/internal/store"

	"github.com/google/uuid"
)

// Persistent state slots and tables. All mutation goes through a single
// commit batch per operation, so a failed operation leaves no trace.
var (
	marketIDItem    = store.NewItem[string]("market_id")
	ownerItem       = store.NewItem[string]("owner")
	haultedItem     = store.NewItem[bool]("is_haulted")
	configItem      = store.NewItem[models.Config]("config")
	settleDenomItem = store.NewItem[string]("settle_denom")
	nextRoundIDItem = store.NewItem[uint64]("next_round_id")
	nextRoundItem   = store.NewItem[models.NextRound]("next_round")
	liveRoundItem   = store.NewItem[models.LiveRound]("live_round")
	accumFeeItem    = store.NewItem[int64]("accumulated_fee")

	bullBetsTable    = store.NewTable[int64]("bull_bets")             // (round, account) -> net stake
	bearBetsTable    = store.NewTable[int64]("bear_bets")             // (round, account) -> net stake
	claimedTable     = store.NewTable[bool]("my_claimed_rounds")      // (account, round) -> claimed
	finishedTable    = store.NewTable[models.FinishedRound]("rounds") // round -> record
	pendingBurnTable = store.NewTable[int64]("pending_burn")          // round -> burn fees awaiting settlement
)

func roundKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Engine executes market operations one at a time against the store. Every
// operation validates fully before mutating, and commits its writes as a
// single batch; operations are serialized by one global lock.
type Engine struct {
	mu      sync.Mutex
	store   store.Store
	oracle  oracle.PriceOracle
	bank    bank.Bank
	rewards rewards.Sink
	addr    string // the market's own bank account, holds all escrowed stakes
}

func NewEngine(s store.Store, o oracle.PriceOracle, b bank.Bank, r rewards.Sink, addr string) *Engine {
	return &Engine{
		store:   s,
		oracle:  o,
		bank:    b,
		rewards: r,
		addr:    addr,
	}
}

// Addr returns the market's own bank account address.
func (e *Engine) Addr() string {
	return e.addr
}

// Instantiate initializes a fresh market. It fails if the store already holds
// a market. No round is opened here; the first AdvanceRound opens round 0.
func (e *Engine) Instantiate(ctx context.Context, owner string, cfg models.Config, settleDenom string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok, err := marketIDItem.MayLoad(ctx, e.store); err != nil {
		return "", err
	} else if ok {
		return "", fmt.Errorf("market is already instantiated")
	}

	if cfg.NextRoundSeconds <= 0 {
		return "", fmt.Errorf("next_round_seconds must be positive")
	}
	if cfg.BurnFee+cfg.StakerFee >= models.FeePrecision {
		return "", fmt.Errorf("combined fees must stay below the precision denominator")
	}
	if settleDenom == "" {
		return "", fmt.Errorf("settle denomination is required")
	}

	marketID := uuid.New().String()

	var batch store.Batch
	saves := []error{
		marketIDItem.Save(&batch, marketID),
		ownerItem.Save(&batch, owner),
		haultedItem.Save(&batch, false),
		configItem.Save(&batch, cfg),
		settleDenomItem.Save(&batch, settleDenom),
		nextRoundIDItem.Save(&batch, 0),
		accumFeeItem.Save(&batch, 0),
	}
	for _, err := range saves {
		if err != nil {
			return "", err
		}
	}

	if err := e.store.Commit(ctx, batch.Ops()); err != nil {
		return "", fmt.Errorf("failed to instantiate market: %w", err)
	}
	return marketID, nil
}

func (e *Engine) config(ctx context.Context) (models.Config, error) {
	cfg, err := configItem.Load(ctx, e.store)
	if err != nil {
		return models.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (e *Engine) settleDenom(ctx context.Context) (string, error) {
	denom, err := settleDenomItem.Load(ctx, e.store)
	if err != nil {
		return "", fmt.Errorf("failed to load settle denom: %w", err)
	}
	return denom, nil
}

func (e *Engine) assertNotHaulted(ctx context.Context) error {
	haulted, err := haultedItem.Load(ctx, e.store)
	if err != nil {
		return fmt.Errorf("failed to load hault flag: %w", err)
	}
	if haulted {
		return models.ErrSystemHaulted
	}
	return nil
}

func (e *Engine) assertOwner(ctx context.Context, sender string) error {
	owner, err := ownerItem.Load(ctx, e.store)
	if err != nil {
		return fmt.Errorf("failed to load owner: %w", err)
	}
	if sender != owner {
		return fmt.Errorf("%w: sender %s is not the owner", models.ErrUnauthorized, sender)
	}
	return nil
}
