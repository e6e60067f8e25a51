package sampling

import "errors"

// Window is a fixed-capacity circular buffer of recent sensor values.
// It is owned by a single sampler goroutine and is not safe for
// concurrent use.
type Window struct {
	slots  []float64
	write  int
	filled bool
}

// NewWindow constructs a window holding up to capacity values.
func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, errors.New("sampling: window capacity must be positive")
	}
	return &Window{slots: make([]float64, capacity)}, nil
}

// Push writes a value into the current slot and advances the write
// index, wrapping at capacity. Once the index wraps the window reports
// itself filled and the oldest value is overwritten on each push.
func (w *Window) Push(value float64) {
	w.slots[w.write] = value
	w.write++
	if w.write == len(w.slots) {
		w.write = 0
		w.filled = true
	}
}

// Count returns the number of valid values currently held.
func (w *Window) Count() int {
	if w.filled {
		return len(w.slots)
	}
	return w.write
}

// HasData reports whether any value has ever been pushed.
func (w *Window) HasData() bool {
	return w.filled || w.write > 0
}

// Average returns the arithmetic mean over the valid values. An empty
// window yields 0.0; callers that need to distinguish "no data" from a
// zero mean must check HasData first.
func (w *Window) Average() float64 {
	count := w.Count()
	if count == 0 {
		return 0.0
	}
	var sum float64
	for i := 0; i < count; i++ {
		sum += w.slots[i]
	}
	return sum / float64(count)
}
