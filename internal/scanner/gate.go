package scanner

import (
	"sync"
	"time"
)

// DefaultWindow is the debounce window applied when none is given.
const DefaultWindow = 2 * time.Second

// ScanGate debounces repeated barcode scans. A repeat of the last admitted
// code inside the window is rejected; state is owned by the gate instance,
// not shared process-wide.
type ScanGate struct {
	mu     sync.Mutex
	window time.Duration
	last   string
	lastAt time.Time

	now func() time.Time
}

// NewScanGate creates a gate with the given debounce window.
func NewScanGate(window time.Duration) *ScanGate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ScanGate{window: window, now: time.Now}
}

// Admit reports whether code should be processed, and records it when so.
func (g *ScanGate) Admit(code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if code == g.last && now.Sub(g.lastAt) < g.window {
		return false
	}

	g.last = code
	g.lastAt = now
	return true
}

// Reset clears the gate so any code is admitted again.
func (g *ScanGate) Reset() {
	g.mu.Lock()
	g.last = ""
	g.lastAt = time.Time{}
	g.mu.Unlock()
}
