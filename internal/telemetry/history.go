package telemetry

// #region history

// History is a fixed-capacity ring buffer of snapshots. Oldest entries are
// evicted FIFO once capacity is reached. Capacity is fixed at construction.
type History struct {
	buf   []Snapshot
	head  int // index of the next write slot
	count int
}

// NewHistory creates a ring buffer holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Snapshot, capacity)}
}

// Push appends a snapshot, evicting the oldest entry if at capacity.
func (h *History) Push(s Snapshot) {
	h.buf[h.head] = s
	h.head = (h.head + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return h.count
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.buf)
}

// Latest returns the most recent snapshot. ok is false when empty.
func (h *History) Latest() (Snapshot, bool) {
	if h.count == 0 {
		return Snapshot{}, false
	}
	idx := (h.head - 1 + len(h.buf)) % len(h.buf)
	return h.buf[idx], true
}

// At returns the i-th most recent snapshot (0 = latest). ok is false when
// i is out of range.
func (h *History) At(i int) (Snapshot, bool) {
	if i < 0 || i >= h.count {
		return Snapshot{}, false
	}
	idx := (h.head - 1 - i + 2*len(h.buf)) % len(h.buf)
	return h.buf[idx], true
}

// #endregion history
