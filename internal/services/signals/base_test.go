package signals

import (
	"testing"

	"MarketPulse/internal/domain/models"
)

func TestHistoryFrequency(t *testing.T) {
	cases := []struct {
		name      string
		base      models.Frequency
		timeframe string
		want      models.Frequency
	}{
		{"day horizon keeps configured interval", models.Freq1Day, models.Timeframe1D, models.Freq1Day},
		{"day horizon keeps intraday interval", models.Freq1Min, models.Timeframe1D, models.Freq1Min},
		{"week horizon coarsens to daily", models.Freq1Min, models.Timeframe1W, models.Freq1Day},
		{"month horizon coarsens to daily", models.Freq1Hour, models.Timeframe1M, models.Freq1Day},
		{"empty timeframe keeps configured interval", models.Freq1Hour, "", models.Freq1Hour},
		{"unknown timeframe keeps configured interval", models.Freq1Day, "6H", models.Freq1Day},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := historyFrequency(tc.base, tc.timeframe); got != tc.want {
				t.Fatalf("historyFrequency(%q, %q) = %q, want %q", tc.base, tc.timeframe, got, tc.want)
			}
		})
	}
}
