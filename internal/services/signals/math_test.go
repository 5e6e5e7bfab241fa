package signals

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if got := sma(values, 3); !almost(got, 4) {
		t.Fatalf("sma(3) = %v, want 4", got)
	}
	if got := sma(values, 5); !almost(got, 3) {
		t.Fatalf("sma(5) = %v, want 3", got)
	}
	if got := sma(values, 6); got != 0 {
		t.Fatalf("sma with short input = %v, want 0", got)
	}
	if got := sma(values, 0); got != 0 {
		t.Fatalf("sma(0) = %v, want 0", got)
	}
}

func TestRSI(t *testing.T) {
	flat := []float64{5, 5, 5, 5, 5, 5}
	if got := rsi(flat, 5); !almost(got, 50) {
		t.Fatalf("flat rsi = %v, want 50", got)
	}

	rising := []float64{1, 2, 3, 4, 5, 6}
	if got := rsi(rising, 5); !almost(got, 100) {
		t.Fatalf("all-gains rsi = %v, want 100", got)
	}

	falling := []float64{6, 5, 4, 3, 2, 1}
	if got := rsi(falling, 5); !almost(got, 0) {
		t.Fatalf("all-losses rsi = %v, want 0", got)
	}

	// equal gains and losses balance to 50
	mixed := []float64{10, 11, 10, 11, 10}
	if got := rsi(mixed, 4); !almost(got, 50) {
		t.Fatalf("balanced rsi = %v, want 50", got)
	}

	if got := rsi([]float64{1, 2}, 5); !almost(got, 50) {
		t.Fatalf("short input rsi = %v, want 50", got)
	}
}

func TestMeanAndStddev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := mean(values); !almost(got, 5) {
		t.Fatalf("mean = %v, want 5", got)
	}
	// population stddev of the classic example is exactly 2
	if got := stddev(values); !almost(got, 2) {
		t.Fatalf("stddev = %v, want 2", got)
	}
	if got := stddev(nil); got != 0 {
		t.Fatalf("stddev(nil) = %v, want 0", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(2, -1, 1); got != 1 {
		t.Fatalf("clamp high = %v", got)
	}
	if got := clamp(-2, -1, 1); got != -1 {
		t.Fatalf("clamp low = %v", got)
	}
	if got := clamp(0.5, -1, 1); got != 0.5 {
		t.Fatalf("clamp mid = %v", got)
	}
}
