// Package oracle is the price feed boundary. The engine reads a single
// integer price; where that price comes from is not its concern.
package oracle

import (
	"context"
	"fmt"
	"log"

	"price-prediction/internal/store"
)

// PriceOracle reports the current asset price in integer micro-units.
type PriceOracle interface {
	Price(ctx context.Context) (int64, error)
}

var priceItem = store.NewItem[int64]("oracle_price")

// KVOracle is a fast oracle backed by the same store as the market: one
// writable price slot. A fresh oracle reports zero until the first update.
type KVOracle struct {
	store store.Store
}

func NewKVOracle(s store.Store) *KVOracle {
	return &KVOracle{store: s}
}

func (o *KVOracle) Price(ctx context.Context) (int64, error) {
	price, ok, err := priceItem.MayLoad(ctx, o.store)
	if err != nil {
		return 0, fmt.Errorf("failed to read oracle price: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return price, nil
}

// Update overwrites the published price.
func (o *KVOracle) Update(ctx context.Context, price int64) error {
	if price < 0 {
		return fmt.Errorf("oracle price cannot be negative: %d", price)
	}

	var batch store.Batch
	if err := priceItem.Save(&batch, price); err != nil {
		return err
	}
	if err := o.store.Commit(ctx, batch.Ops()); err != nil {
		return fmt.Errorf("failed to update oracle price: %w", err)
	}

	log.Printf("[Oracle] Price updated to %d", price)
	return nil
}
