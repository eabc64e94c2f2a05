package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Progress shows the current phase of a match run. On a terminal it is a
// spinner whose description follows each report; otherwise each report is
// printed on its own line.
type Progress struct {
	w    io.Writer
	bar  *progressbar.ProgressBar
	mu   sync.Mutex
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// NewProgress creates a progress reporter writing to w.
func NewProgress(w io.Writer, interactive bool) *Progress {
	p := &Progress{w: w}
	if !interactive {
		return p
	}

	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.spin()
	return p
}

func (p *Progress) spin() {
	defer close(p.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			_ = p.bar.Add(1)
			p.mu.Unlock()
		}
	}
}

// Report sets the current phase. It satisfies providers.ProgressFunc.
func (p *Progress) Report(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		fmt.Fprintln(p.w, SubtleStyle.Render(message))
		return
	}
	p.bar.Describe(message)
}

// Finish stops the spinner and clears its line.
func (p *Progress) Finish() {
	if p.bar == nil {
		return
	}
	p.once.Do(func() {
		close(p.stop)
		<-p.done
		p.mu.Lock()
		defer p.mu.Unlock()
		_ = p.bar.Finish()
	})
}
