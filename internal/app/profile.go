package app

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/guidoenr/bloomer/internal/log"
)

// profiler appends per-section frame timings to a CSV file. A nil profiler
// is a no-op.
type profiler struct {
	mu    sync.Mutex
	file  *os.File
	frame uint64
	start time.Time
	last  time.Time
}

func newProfiler(path string, logger log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Warningf("profiler disabled: %v", err)
		return nil
	}
	p := &profiler{file: f}
	fmt.Fprintln(p.file, "timestamp,frame,section,delta_ms")
	logger.Infof("writing frame timings to %s", path)
	return p
}

func (p *profiler) beginFrame(frame uint64) {
	if p == nil {
		return
	}
	now := time.Now()
	p.frame = frame
	p.start = now
	p.last = now
}

func (p *profiler) markSection(name string) {
	if p == nil {
		return
	}
	now := time.Now()
	delta := now.Sub(p.last)
	p.last = now
	p.write(name, delta)
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	p.write("frame_total", time.Since(p.start))
}

func (p *profiler) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

func (p *profiler) write(section string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return
	}
	ms := float64(d) / float64(time.Millisecond)
	fmt.Fprintf(p.file, "%s,%d,%s,%.3f\n", time.Now().Format(time.RFC3339Nano), p.frame, section, ms)
}
