// Package stats implements windowed descriptive statistics over an item's
// retained price history. The window always covers the N most recent stored
// observations in storage order (newest first), regardless of calendar gaps
// between them.
package stats

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rpindulic/Quaggy/internal/domain"
)

// ErrRange is returned when a statistic is requested over a non-positive
// window or more observations than are stored.
var ErrRange = errors.New("window out of range")

// Projection extracts the attribute of interest from an observation.
type Projection func(domain.Observation) float64

// Transform post-processes a projected value. A nil Transform is identity.
type Transform func(float64) float64

// Common projections.
var (
	BuyPrice  Projection = func(o domain.Observation) float64 { return o.BuyPrice }
	SellPrice Projection = func(o domain.Observation) float64 { return o.SellPrice }
)

func checkWindow(history []domain.Observation, n int) error {
	if n <= 0 || n > len(history) {
		return fmt.Errorf("%w: want %d of %d stored observations", ErrRange, n, len(history))
	}
	return nil
}

func apply(tf Transform, x float64) float64 {
	if tf == nil {
		return x
	}
	return tf(x)
}

// Mean is the arithmetic mean of the transformed projection over the n most
// recent observations.
func Mean(history []domain.Observation, proj Projection, n int, tf Transform) (float64, error) {
	if err := checkWindow(history, n); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += apply(tf, proj(history[i]))
	}
	return sum / float64(n), nil
}

// Variance is the mean squared deviation from Mean over the same window
// (population variance, matching the upstream digest consumers).
func Variance(history []domain.Observation, proj Projection, n int, tf Transform) (float64, error) {
	mean, err := Mean(history, proj, n, tf)
	if err != nil {
		return 0, err
	}
	return Mean(history, proj, n, func(x float64) float64 {
		d := apply(tf, x) - mean
		return d * d
	})
}

// Median sorts the n transformed values ascending and returns the central
// value, or the average of the two central values for an even count.
func Median(history []domain.Observation, proj Projection, n int, tf Transform) (float64, error) {
	if err := checkWindow(history, n); err != nil {
		return 0, err
	}
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = apply(tf, proj(history[i]))
	}
	sort.Float64s(vals)
	if n%2 == 0 {
		return (vals[n/2] + vals[n/2-1]) / 2, nil
	}
	return vals[n/2], nil
}

// MeanSlope is the average of successive differences value[i]-value[i-1]
// over the n most recent observations in storage order. Storage order is
// newest-first, so this is the mean backward difference: the average change
// per step walking from newest toward oldest. A single observation has no
// slope and yields 0.
func MeanSlope(history []domain.Observation, proj Projection, n int) (float64, error) {
	if err := checkWindow(history, n); err != nil {
		return 0, err
	}
	if n == 1 {
		return 0, nil
	}
	sum := 0.0
	for i := 1; i < n; i++ {
		sum += proj(history[i]) - proj(history[i-1])
	}
	return sum / float64(n-1), nil
}
