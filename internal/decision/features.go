package decision

import "fmt"

// Default rolling window sizes, shortest to longest.
var defaultWindows = []int{3, 8, 21}

// RollingFeatures derives moving-average and momentum features from a
// bounded history of prices.
type RollingFeatures struct {
	windows map[int][]float64
	sizes   []int
}

// NewRollingFeatures creates a feature computer with the default windows
// (3, 8 and 21 observations).
func NewRollingFeatures(sizes ...int) *RollingFeatures {
	if len(sizes) == 0 {
		sizes = defaultWindows
	}
	windows := make(map[int][]float64, len(sizes))
	for _, size := range sizes {
		windows[size] = make([]float64, 0, size)
	}
	return &RollingFeatures{windows: windows, sizes: sizes}
}

// Update appends a price to every window, evicting the oldest observation
// once a window is full.
func (r *RollingFeatures) Update(price float64) {
	for size, window := range r.windows {
		if len(window) == size {
			copy(window, window[1:])
			window[size-1] = price
		} else {
			window = append(window, price)
		}
		r.windows[size] = window
	}
}

// Features returns ma_<n> for each window plus momentum_8, the distance of
// the latest price from the 8-observation average. Empty windows report 0.
func (r *RollingFeatures) Features() map[string]float64 {
	out := make(map[string]float64, len(r.sizes)+1)
	var last float64
	var seen bool
	for _, size := range r.sizes {
		window := r.windows[size]
		key := maKey(size)
		if len(window) == 0 {
			out[key] = 0
			continue
		}
		var sum float64
		for _, price := range window {
			sum += price
		}
		out[key] = sum / float64(len(window))
		last = window[len(window)-1]
		seen = true
	}
	if seen {
		out["momentum_8"] = last - out["ma_8"]
	} else {
		out["momentum_8"] = 0
	}
	return out
}

func maKey(size int) string {
	return fmt.Sprintf("ma_%d", size)
}
