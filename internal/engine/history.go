package engine

import "github.com/fentz26/hyperplex/internal/models"

// DefaultHistoryCapacity bounds mission history when no option is given.
const DefaultHistoryCapacity = 12

// history is a fixed-capacity ring of completed missions.
type history struct {
	buf   []models.Mission
	start int
	size  int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &history{buf: make([]models.Mission, capacity)}
}

// push appends m, evicting the oldest entry when full. It reports the
// evicted mission, if any.
func (h *history) push(m models.Mission) (models.Mission, bool) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = m
		h.size++
		return models.Mission{}, false
	}
	evicted := h.buf[h.start]
	h.buf[h.start] = m
	h.start = (h.start + 1) % len(h.buf)
	return evicted, true
}

func (h *history) len() int {
	return h.size
}

func (h *history) capacity() int {
	return len(h.buf)
}

// list returns deep copies, oldest first.
func (h *history) list() []models.Mission {
	out := make([]models.Mission, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)].Clone()
	}
	return out
}

// avgAgents is recomputed from the retained entries on every call.
func (h *history) avgAgents() float64 {
	if h.size == 0 {
		return 0
	}
	total := 0
	for i := 0; i < h.size; i++ {
		total += len(h.buf[(h.start+i)%len(h.buf)].AgentIDs)
	}
	return float64(total) / float64(h.size)
}
