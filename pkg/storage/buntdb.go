// Package storage persists trade records and candle snapshots. The
// default store is BuntDB (file or in-memory); a SQL store is available
// behind any GORM dialector.
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/tidwall/buntdb"
)

// BuntStorage implements core.TradeStorage using BuntDB.
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory() (*BuntStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (*BuntStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex("trade_update_index", "trade:*", buntdb.IndexJSON("updated_at"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &BuntStorage{
		db: db,
	}, nil
}

// getID generates a unique ID for trades
func (b *BuntStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

func tradeKey(id int64) string {
	return "trade:" + strconv.FormatInt(id, 10)
}

// CreateTrade stores a new trade record
func (b *BuntStorage) CreateTrade(trade *core.Trade) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		trade.ID = b.getID()
		trade.CreatedAt = time.Now()
		trade.UpdatedAt = trade.CreatedAt

		content, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("failed to marshal trade: %w", err)
		}

		_, _, err = tx.Set(tradeKey(trade.ID), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store trade: %w", err)
		}

		return nil
	})
}

// UpdateTrade updates an existing trade record
func (b *BuntStorage) UpdateTrade(trade *core.Trade) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		key := tradeKey(trade.ID)

		// Check if trade exists
		_, err := tx.Get(key)
		if err != nil {
			return fmt.Errorf("trade not found: %w", err)
		}

		trade.UpdatedAt = time.Now()
		content, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("failed to marshal trade: %w", err)
		}

		_, _, err = tx.Set(key, string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to update trade: %w", err)
		}

		return nil
	})
}

// Trades retrieves trade records matching all provided filters
func (b *BuntStorage) Trades(filters ...core.TradeFilter) ([]*core.Trade, error) {
	trades := make([]*core.Trade, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Ascend("trade_update_index", func(_, value string) bool {
			var trade core.Trade
			err := json.Unmarshal([]byte(value), &trade)
			if err != nil {
				log.Printf("Failed to unmarshal trade: %v", err)
				return true // Continue iteration
			}

			// Apply all filters
			for _, filter := range filters {
				if !filter(trade) {
					return true // Skip this trade and continue iteration
				}
			}

			trades = append(trades, &trade)
			return true
		})

		if err != nil {
			return fmt.Errorf("failed to iterate over trades: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return trades, nil
}

// SaveCandle stores the latest closed candle per index and timeframe.
// Only the most recent snapshot per feed is retained.
func (b *BuntStorage) SaveCandle(candle core.Candle) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		content, err := json.Marshal(candle)
		if err != nil {
			return fmt.Errorf("failed to marshal candle: %w", err)
		}

		_, _, err = tx.Set("candle:"+candle.FeedKey(), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store candle: %w", err)
		}

		return nil
	})
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
