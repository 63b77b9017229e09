package tui

// maxInputHistory caps remembered commands.
const maxInputHistory = 30

// InputHistory recalls previously submitted commands, newest first.
type InputHistory struct {
	entries []string
	// idx is the recalled entry, or -1 while editing a fresh line.
	idx int
}

// NewInputHistory returns an empty history.
func NewInputHistory() *InputHistory {
	return &InputHistory{idx: -1}
}

// Push records a submitted command and ends any recall in progress.
func (h *InputHistory) Push(cmd string) {
	h.entries = append([]string{cmd}, h.entries...)
	if len(h.entries) > maxInputHistory {
		h.entries = h.entries[:maxInputHistory]
	}
	h.idx = -1
}

// Older steps back one entry, stopping at the oldest.
func (h *InputHistory) Older() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.idx < len(h.entries)-1 {
		h.idx++
	}
	return h.entries[h.idx], true
}

// Newer steps forward one entry. Stepping past the newest returns an
// empty line.
func (h *InputHistory) Newer() (string, bool) {
	if len(h.entries) == 0 || h.idx < 0 {
		return "", false
	}
	h.idx--
	if h.idx < 0 {
		return "", true
	}
	return h.entries[h.idx], true
}

// Len returns the number of remembered commands.
func (h *InputHistory) Len() int {
	return len(h.entries)
}
