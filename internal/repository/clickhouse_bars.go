package repository

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/clickhouse"
)

// BarSchema creates the bar history table. Idempotent; passed to InitSchema
// at startup.
var BarSchema = []string{
	`CREATE TABLE IF NOT EXISTS market_bars (
		symbol LowCardinality(String),
		freq   LowCardinality(String),
		ts     DateTime64(3, 'UTC'),
		open   Float64,
		high   Float64,
		low    Float64,
		close  Float64,
		volume Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (symbol, freq, ts)`,
}

// BarRepository persists streamed bars to ClickHouse and serves the price
// history the momentum, mean-reversion, and breakout models consume.
type BarRepository struct {
	client *clickhouse.Client
}

// NewBarRepository creates the bar store over an established client.
func NewBarRepository(client *clickhouse.Client) *BarRepository {
	return &BarRepository{client: client}
}

// Init ensures the schema exists.
func (r *BarRepository) Init(ctx context.Context) error {
	return r.client.InitSchema(ctx, BarSchema)
}

// InsertBar writes one bar. ReplacingMergeTree dedupes replays on
// (symbol, freq, ts).
func (r *BarRepository) InsertBar(ctx context.Context, bar models.Bar, freq models.Frequency) error {
	const q = `INSERT INTO market_bars
		(symbol, freq, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.client.DB().ExecContext(ctx, q,
		bar.Symbol, string(freq), time.UnixMilli(bar.Timestamp).UTC(),
		bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
	)
	if err != nil {
		return fmt.Errorf("insert bar %s: %w", bar.Symbol, err)
	}
	return nil
}

// LatestBars returns up to n most recent bars for (symbol, freq), oldest first.
func (r *BarRepository) LatestBars(ctx context.Context, symbol string, n int, freq models.Frequency) ([]models.Bar, error) {
	const q = `SELECT symbol, ts, open, high, low, close, volume
		FROM market_bars FINAL
		WHERE symbol = ? AND freq = ?
		ORDER BY ts DESC
		LIMIT ?`
	rows, err := r.client.DB().QueryContext(ctx, q, symbol, string(freq), n)
	if err != nil {
		return nil, fmt.Errorf("query bars %s: %w", symbol, err)
	}
	defer rows.Close()

	bars := make([]models.Bar, 0, n)
	for rows.Next() {
		var b models.Bar
		var ts time.Time
		if err := rows.Scan(&b.Symbol, &ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = ts.UnixMilli()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars %s: %w", symbol, err)
	}

	// query is newest-first; callers want chronological order
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

var _ drepo.BarStore = (*BarRepository)(nil)
