package signals

import (
	"math"

	"MarketPulse/internal/domain/models"
)

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// sma averages the last n values. Returns 0 when fewer than n are available.
func sma(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// rsi computes the simple-average RSI over the last n periods.
func rsi(values []float64, n int) float64 {
	if n <= 0 || len(values) < n+1 {
		return 50
	}
	window := values[len(values)-n-1:]
	gains, losses := 0.0, 0.0
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
