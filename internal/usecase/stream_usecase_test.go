package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

type fakeBarStore struct {
	bars []models.Bar
	err  error

	gotSymbol string
	gotN      int
	gotFreq   models.Frequency
}

func (f *fakeBarStore) LatestBars(_ context.Context, symbol string, n int, freq models.Frequency) ([]models.Bar, error) {
	f.gotSymbol, f.gotN, f.gotFreq = symbol, n, freq
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

func barAt(ts time.Time, close float64) models.Bar {
	return models.Bar{Symbol: "AAPL", Close: close, Timestamp: ts.UnixMilli()}
}

func TestHistoryWithoutStore(t *testing.T) {
	u := NewStreamUsecase(nil, nil, nil, nil, testLogger(t))
	_, err := u.History(context.Background(), "AAPL", 10, models.Freq1Min, time.Time{})
	if !errors.Is(err, ErrNoHistory) {
		t.Fatalf("err = %v, want ErrNoHistory", err)
	}
}

func TestHistoryPassesQueryThrough(t *testing.T) {
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	store := &fakeBarStore{bars: []models.Bar{
		barAt(base, 100),
		barAt(base.Add(time.Minute), 101),
		barAt(base.Add(2*time.Minute), 102),
	}}
	u := NewStreamUsecase(nil, nil, nil, store, testLogger(t))

	got, err := u.History(context.Background(), "AAPL", 3, models.Freq1Min, time.Time{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("bars = %d, want 3", len(got))
	}
	if store.gotSymbol != "AAPL" || store.gotN != 3 || store.gotFreq != models.Freq1Min {
		t.Fatalf("store query = %s/%d/%s", store.gotSymbol, store.gotN, store.gotFreq)
	}
}

func TestHistorySinceFiltersOlderBars(t *testing.T) {
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	store := &fakeBarStore{bars: []models.Bar{
		barAt(base, 100),
		barAt(base.Add(time.Minute), 101),
		barAt(base.Add(2*time.Minute), 102),
	}}
	u := NewStreamUsecase(nil, nil, nil, store, testLogger(t))

	got, err := u.History(context.Background(), "AAPL", 3, models.Freq1Min, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("bars = %d, want 2", len(got))
	}
	if got[0].Close != 101 || got[1].Close != 102 {
		t.Fatalf("wrong bars survived the cutoff: %+v", got)
	}
}

func TestHistoryPropagatesStoreErrors(t *testing.T) {
	store := &fakeBarStore{err: errors.New("clickhouse down")}
	u := NewStreamUsecase(nil, nil, nil, store, testLogger(t))
	if _, err := u.History(context.Background(), "AAPL", 3, models.Freq1Min, time.Time{}); err == nil {
		t.Fatal("expected store error")
	}
}

func TestFilterCoveringMatchesSymbol(t *testing.T) {
	subs := []models.Subscription{
		{ID: "a", Symbols: []string{"AAPL", "MSFT"}},
		{ID: "b", Symbols: []string{"TSLA"}},
		{ID: "c", Symbols: []string{"MSFT"}},
	}

	got := filterCovering(subs, "msft")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("covering msft = %+v, want subscriptions a and c", got)
	}

	if got := filterCovering(subs, "NVDA"); len(got) != 0 {
		t.Fatalf("covering NVDA = %+v, want none", got)
	}
}
