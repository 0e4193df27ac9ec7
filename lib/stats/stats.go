// Package stats provides lightweight statistics helpers for benchmarking
// the action queue and the host bridge. This file implements summary
// statistics over float64 samples and a latency histogram with exponential
// bucket sizing, covering microseconds to minutes with minimal memory
// overhead.
//
// Key features include:
//   - Efficient memory usage through bucketing
//   - Thread-safe sample addition and querying
//   - Statistical estimators (median, percentiles)
//
// This utility is particularly useful for load generators that need to
// report latency characteristics without retaining every sample.
package stats

import (
	"math"
	"sync"
	"time"
)

// ----------------------------------------------------------------------------
// Summary statistics
// ----------------------------------------------------------------------------

type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes the standard deviation, minimum, maximum and mean
// from an array of float64 values.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	// initialize min and max with the first value
	min := values[0]
	max := values[0]

	// calculate sum for mean
	var sum float64
	for _, v := range values {
		sum += v

		// update min and max while iterating
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	// calculate mean
	mean := sum / float64(len(values))

	// calculate sum of squared differences from mean
	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}

	// calculate standard deviation (population formula)
	stdDev := math.Sqrt(sumSquaredDiffs / float64(len(values)))

	// calculate min/max ratio
	var minMaxRatio float64 = 1.0
	if max > 0 {
		minMaxRatio = min / max
	}

	return Stats{
		StdDeviation: stdDev,
		Min:          min,
		Max:          max,
		Mean:         mean,
		MinMaxRatio:  minMaxRatio,
	}
}

// ----------------------------------------------------------------------------
// LatencyHistogram
// ----------------------------------------------------------------------------

// LatencyHistogram tracks the distribution of operation latencies.
// It organizes samples into buckets for efficient memory usage while still
// providing accurate estimations. Supports tracking values from
// microseconds to multiple minutes.
type LatencyHistogram struct {
	mutex      sync.RWMutex
	boundaries []time.Duration // Bucket boundaries covering µs to minute range
	buckets    []int64         // Count of samples in each bucket
	count      int64           // Total number of samples
	sum        time.Duration   // Sum of all sampled latencies
}

// NewLatencyHistogram creates a new latency histogram with default bucket
// boundaries. The boundaries are calibrated to handle latencies from
// microseconds to minutes.
func NewLatencyHistogram() *LatencyHistogram {
	// Using exponential bucket sizes to cover a wide range efficiently
	boundaries := []time.Duration{
		10 * time.Microsecond, 50 * time.Microsecond, 250 * time.Microsecond,
		time.Millisecond, 5 * time.Millisecond, 25 * time.Millisecond,
		100 * time.Millisecond, 500 * time.Millisecond,
		time.Second, 5 * time.Second, 30 * time.Second, time.Minute,
	}
	return &LatencyHistogram{
		boundaries: boundaries,
		buckets:    make([]int64, len(boundaries)+1), // +1 for larger values
	}
}

// AddSample adds a latency sample to the histogram
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) AddSample(d time.Duration) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// Find the appropriate bucket for this latency
	bucketIndex := 0
	for i, boundary := range h.boundaries {
		if d <= boundary {
			bucketIndex = i
			break
		}
		bucketIndex = len(h.boundaries) // Last bucket for all larger values
	}

	// Update statistics
	h.buckets[bucketIndex]++
	h.count++
	h.sum += d
}

// GetCount returns the total number of samples
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) GetCount() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// Average returns the average latency across all samples
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) Average() time.Duration {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 0
	}
	return h.sum / time.Duration(h.count)
}

// MedianEstimate estimates the median latency based on the histogram
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) MedianEstimate() time.Duration {
	return h.PercentileEstimate(50)
}

// PercentileEstimate returns an estimate for the given percentile (0-100)
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) PercentileEstimate(percentile int) time.Duration {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	// Calculate target count for percentile
	targetCount := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	cumulativeCount := int64(0)

	for i, count := range h.buckets {
		cumulativeCount += count
		if cumulativeCount >= targetCount {
			// Found the percentile bucket
			if i == 0 {
				// For the first bucket, estimate as half of the boundary
				return h.boundaries[0] / 2
			} else if i < len(h.boundaries) {
				// For middle buckets, use the average of boundaries
				return (h.boundaries[i-1] + h.boundaries[i]) / 2
			} else {
				// For the last bucket, estimate as 2x the last boundary
				return h.boundaries[len(h.boundaries)-1] * 2
			}
		}
	}

	// Should never reach here
	return h.sum / time.Duration(h.count)
}

// Reset clears all histogram data
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.count = 0
	h.sum = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}

// Distribution returns the distribution of samples across buckets.
// Returns two slices: bucket boundaries and the percentage in each bucket
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) Distribution() ([]time.Duration, []float64) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return h.boundaries, make([]float64, len(h.buckets))
	}

	// Calculate percentages
	percentages := make([]float64, len(h.buckets))
	for i, count := range h.buckets {
		percentages[i] = float64(count) * 100.0 / float64(h.count)
	}

	return h.boundaries, percentages
}
