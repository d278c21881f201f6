package storage

import (
	"fmt"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// CandleSnapshot is the persisted form of the latest closed candle for
// one index and timeframe.
type CandleSnapshot struct {
	FeedKey   string    `gorm:"primaryKey"`
	Index     string    `json:"index"`
	Timeframe int       `json:"timeframe"`
	Start     time.Time `json:"start"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Ticks     int       `json:"ticks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SQLStorage implements core.TradeStorage using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(&core.Trade{}, &CandleSnapshot{})
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{
		db: db,
	}, nil
}

// CreateTrade creates a new trade record in the SQL database
func (s *SQLStorage) CreateTrade(trade *core.Trade) error {
	result := s.db.Create(trade)
	if result.Error != nil {
		return fmt.Errorf("failed to create trade: %w", result.Error)
	}

	return nil
}

// UpdateTrade updates an existing trade record in the SQL database
func (s *SQLStorage) UpdateTrade(trade *core.Trade) error {
	// First check if the trade exists
	var existing core.Trade
	result := s.db.First(&existing, trade.ID)
	if result.Error != nil {
		return fmt.Errorf("trade not found: %w", result.Error)
	}

	result = s.db.Save(trade)
	if result.Error != nil {
		return fmt.Errorf("failed to update trade: %w", result.Error)
	}

	return nil
}

// Trades retrieves trade records matching all provided filters
func (s *SQLStorage) Trades(filters ...core.TradeFilter) ([]*core.Trade, error) {
	var trades []*core.Trade

	result := s.db.Find(&trades)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch trades: %w", result.Error)
	}

	// Apply filters in memory
	// Note: This could be optimized by translating filters to SQL WHERE clauses
	filtered := lo.Filter(trades, func(trade *core.Trade, _ int) bool {
		for _, filter := range filters {
			if !filter(*trade) {
				return false
			}
		}
		return true
	})

	return filtered, nil
}

// SaveCandle upserts the latest closed candle for its feed
func (s *SQLStorage) SaveCandle(candle core.Candle) error {
	snapshot := CandleSnapshot{
		FeedKey:   candle.FeedKey(),
		Index:     candle.Index,
		Timeframe: candle.Timeframe,
		Start:     candle.Start,
		Open:      candle.Open,
		High:      candle.High,
		Low:       candle.Low,
		Close:     candle.Close,
		Ticks:     candle.Ticks,
		UpdatedAt: time.Now(),
	}

	result := s.db.Save(&snapshot)
	if result.Error != nil {
		return fmt.Errorf("failed to store candle: %w", result.Error)
	}

	return nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

// WithTransaction executes the given function within a database transaction
func (s *SQLStorage) WithTransaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}
