// Package writer streams frames and samples of a clip to a sink with
// strict byte accounting. A short write ends the stream; the caller learns
// how far it got from the returned count.
package writer

import (
	"time"

	"github.com/mengelbart/pipemod/internal/logging"
	pionlogging "github.com/pion/logging"
	"golang.org/x/time/rate"
)

// Progress tracks how many units (frames or samples) of Target have been
// written since Start.
type Progress struct {
	Written int64
	Target  int64
	Start   time.Time
}

func NewProgress(target int64) *Progress {
	return &Progress{Target: target, Start: time.Now()}
}

// Percent returns the completed share, rounded down.
func (p *Progress) Percent() int {
	if p.Target <= 0 {
		return 0
	}
	return int(p.Written * 100 / p.Target)
}

func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.Start)
}

// Complete reports whether everything was written.
func (p *Progress) Complete() bool {
	return p.Written == p.Target
}

// reporter logs progress at most once per interval.
type reporter struct {
	log       pionlogging.LeveledLogger
	sometimes *rate.Sometimes
}

func newReporter(log pionlogging.LeveledLogger, interval time.Duration) *reporter {
	if log == nil {
		log = logging.NewLogger("writer")
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &reporter{
		log:       log,
		sometimes: &rate.Sometimes{Interval: interval},
	}
}

func (r *reporter) report(format string, args ...any) {
	r.sometimes.Do(func() {
		r.log.Infof(format, args...)
	})
}
