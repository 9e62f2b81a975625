// Package progress renders the progress signal of long runs on a terminal
// stream and mirrors it to the logger.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	barWidth    = 40
	minInterval = 100 * time.Millisecond
)

// Reporter draws a single self-overwriting status line. It is driven by one
// goroutine (the run's collector) and is not safe for concurrent use.
type Reporter struct {
	w     io.Writer // nil disables rendering
	label string
	unit  string
	bar   progress.Model
	log   *zap.Logger
	now   func() time.Time
	last  time.Time
	drawn bool
}

// New returns a Reporter writing to w. A nil w keeps only the log output.
func New(w io.Writer, label, unit string, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{
		w:     w,
		label: label,
		unit:  unit,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		log:   log,
		now:   time.Now,
	}
}

// Fraction is done/total clamped to [0,1]; an empty total counts as complete.
func Fraction(done, total int) float64 {
	if total <= 0 {
		return 1
	}
	f := float64(done) / float64(total)
	return max(0, min(f, 1))
}

func (r *Reporter) due(final bool) bool {
	t := r.now()
	if !final && r.drawn && t.Sub(r.last) < minInterval {
		return false
	}
	r.last = t
	r.drawn = true
	return true
}

// Update reports done of total units.
func (r *Reporter) Update(done, total int) {
	if !r.due(done >= total) {
		return
	}
	r.log.Debug("progress", zap.String("task", r.label), zap.Int("done", done), zap.Int("total", total))
	if r.w != nil {
		fmt.Fprintf(r.w, "\r%s %s %s/%s %s", r.label, r.bar.ViewAs(Fraction(done, total)),
			humanize.Comma(int64(done)), humanize.Comma(int64(total)), r.unit)
	}
}

// Count reports progress of a run with no known total.
func (r *Reporter) Count(done int) {
	if !r.due(false) {
		return
	}
	r.log.Debug("progress", zap.String("task", r.label), zap.Int("done", done))
	if r.w != nil {
		fmt.Fprintf(r.w, "\r%s %s %s", r.label, humanize.Comma(int64(done)), r.unit)
	}
}

// Done terminates the status line.
func (r *Reporter) Done() {
	if r.w != nil && r.drawn {
		fmt.Fprintln(r.w)
	}
}
