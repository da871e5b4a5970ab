package output

import (
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// Progress renders a terminal progress bar over per-file completions.
// The bar starts lazily on the first update, since tree scans only know
// their total once enumeration finishes. Updates arrive from worker
// goroutines, so they are locked.
type Progress struct {
	enabled bool
	mu      sync.Mutex
	bar     *pb.ProgressBar
}

// NewProgress creates a progress display; disabled instances show nothing
func NewProgress(enabled bool) *Progress {
	return &Progress{enabled: enabled}
}

// Update moves the bar to done completions out of total
func (p *Progress) Update(done, total int) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		p.bar = pb.StartNew(total)
	}
	if int64(total) != p.bar.Total() {
		p.bar.SetTotal(int64(total))
	}
	p.bar.SetCurrent(int64(done))
}

// Finish completes and removes the bar if it was ever started
func (p *Progress) Finish() {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Finish()
	}
}
