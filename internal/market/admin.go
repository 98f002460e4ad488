package market

import (
	"context"
	"fmt"
	"log"

	"price-prediction/internal/models"
	"price-prediction/internal/store"
)

// UpdateConfig overlays the supplied fields onto the current config.
// Owner only; fields left nil are unchanged.
func (e *Engine) UpdateConfig(ctx context.Context, sender string, partial models.PartialConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.assertOwner(ctx, sender); err != nil {
		return err
	}

	cfg, err := e.config(ctx)
	if err != nil {
		return err
	}
	cfg = partial.Apply(cfg)

	if cfg.NextRoundSeconds <= 0 {
		return fmt.Errorf("next_round_seconds must be positive")
	}
	if cfg.BurnFee+cfg.StakerFee >= models.FeePrecision {
		return fmt.Errorf("combined fees must stay below the precision denominator")
	}

	var batch store.Batch
	if err := configItem.Save(&batch, cfg); err != nil {
		return err
	}
	if err := e.store.Commit(ctx, batch.Ops()); err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	log.Printf("[UpdateConfig] Config updated by %s", sender)
	return nil
}

// Hault pauses round advancement and bet placement. Owner only.
func (e *Engine) Hault(ctx context.Context, sender string) error {
	return e.setHaulted(ctx, sender, true)
}

// Resume lifts a hault. Owner only.
func (e *Engine) Resume(ctx context.Context, sender string) error {
	return e.setHaulted(ctx, sender, false)
}

func (e *Engine) setHaulted(ctx context.Context, sender string, haulted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.assertOwner(ctx, sender); err != nil {
		return err
	}

	var batch store.Batch
	if err := haultedItem.Save(&batch, haulted); err != nil {
		return err
	}
	if err := e.store.Commit(ctx, batch.Ops()); err != nil {
		return fmt.Errorf("failed to set hault flag: %w", err)
	}

	if haulted {
		log.Printf("[Hault] Market haulted by %s", sender)
	} else {
		log.Printf("[Resume] Market resumed by %s", sender)
	}
	return nil
}
