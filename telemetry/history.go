package telemetry

// Sample is one tick's panel metrics.
type Sample struct {
	Tick      int32   `json:"tick"`
	Entropy   float64 `json:"entropy"`
	Alignment float64 `json:"alignment"`
}

// History is a fixed-capacity ring of metric samples. When full, the oldest
// sample is evicted first.
type History struct {
	samples    []Sample
	writeIndex int
	count      int
}

// NewHistory creates a history holding at most capacity samples.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{samples: make([]Sample, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (h *History) Push(s Sample) {
	h.samples[h.writeIndex] = s
	h.writeIndex = (h.writeIndex + 1) % len(h.samples)
	if h.count < len(h.samples) {
		h.count++
	}
}

// Len returns the number of stored samples.
func (h *History) Len() int {
	return h.count
}

// Cap returns the capacity.
func (h *History) Cap() int {
	return len(h.samples)
}

// Last returns the newest sample.
func (h *History) Last() (Sample, bool) {
	if h.count == 0 {
		return Sample{}, false
	}
	i := (h.writeIndex - 1 + len(h.samples)) % len(h.samples)
	return h.samples[i], true
}

// AppendTo appends the samples oldest first to dst.
func (h *History) AppendTo(dst []Sample) []Sample {
	start := (h.writeIndex - h.count + len(h.samples)) % len(h.samples)
	for i := 0; i < h.count; i++ {
		dst = append(dst, h.samples[(start+i)%len(h.samples)])
	}
	return dst
}

// Clear drops every sample.
func (h *History) Clear() {
	h.writeIndex = 0
	h.count = 0
}
