package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"price-prediction/internal/market"
	"price-prediction/internal/models"
)

// RoundAdvancer keeps the round lifecycle moving by calling AdvanceRound on a
// ticker. AdvanceRound is a no-op before a round is due, so the interval only
// bounds how late a settlement can be.
type RoundAdvancer struct {
	engine   *market.Engine
	interval time.Duration
	stopChan chan struct{}
}

// NewRoundAdvancer creates a new round advancer job
func NewRoundAdvancer(engine *market.Engine, interval time.Duration) *RoundAdvancer {
	return &RoundAdvancer{
		engine:   engine,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the advance loop
func (ra *RoundAdvancer) Start() {
	log.Printf("[RoundAdvancer] Starting round advancer job (interval: %v)", ra.interval)

	ticker := time.NewTicker(ra.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ra.advance()
		case <-ra.stopChan:
			log.Println("[RoundAdvancer] Stopping round advancer job")
			return
		}
	}
}

// Stop stops the advance loop
func (ra *RoundAdvancer) Stop() {
	close(ra.stopChan)
}

func (ra *RoundAdvancer) advance() {
	ctx := context.Background()

	err := ra.engine.AdvanceRound(ctx, time.Now())
	if errors.Is(err, models.ErrSystemHaulted) {
		return
	}
	if err != nil {
		log.Printf("[RoundAdvancer] Error advancing round: %v", err)
	}
}
