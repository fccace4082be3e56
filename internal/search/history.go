package search

import (
	"sync"

	"github.com/thesavant42/issuenav/internal/models"
)

// History is an in-memory browser-style history stack. It implements Navigator.
// The optional listener is called with every location that becomes current.
type History struct {
	mu       sync.Mutex
	entries  []models.Location
	index    int
	listener func(models.Location)
}

// NewHistory starts a history at the given location
func NewHistory(start models.Location, listener func(models.Location)) *History {
	return &History{
		entries:  []models.Location{start},
		listener: listener,
	}
}

// Push adds a location, dropping any forward entries
func (h *History) Push(loc models.Location) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], loc)
	h.index = len(h.entries) - 1
	h.mu.Unlock()
	h.notify(loc)
}

// Replace swaps the current location without adding an entry
func (h *History) Replace(loc models.Location) {
	h.mu.Lock()
	h.entries[h.index] = loc
	h.mu.Unlock()
	h.notify(loc)
}

// Back moves to the previous entry. It returns false at the start of history.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves to the next entry. It returns false at the end of history.
func (h *History) Forward() bool {
	return h.move(1)
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	loc := h.entries[next]
	h.mu.Unlock()
	h.notify(loc)
	return true
}

// Current returns the current location
func (h *History) Current() models.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) notify(loc models.Location) {
	if h.listener != nil {
		h.listener(loc)
	}
}

// Recorder is a Navigator that only records pushes
type Recorder struct {
	mu     sync.Mutex
	Pushed []models.Location
}

func (r *Recorder) Push(loc models.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pushed = append(r.Pushed, loc)
}

// Last returns the most recent push and whether there was one
func (r *Recorder) Last() (models.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Pushed) == 0 {
		return models.Location{}, false
	}
	return r.Pushed[len(r.Pushed)-1], true
}
