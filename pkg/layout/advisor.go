// Package layout chooses between a one and a two column dashboard.
//
// Narrow viewports always get one column. Wider viewports are rendered with
// one column first; once that render has settled the content height is
// measured and, if it overflows the viewport, the dashboard switches to two
// columns.
package layout

import (
	"sync"
	"time"
)

// Columns is the number of display columns
type Columns int

const (
	Single Columns = 1
	Double Columns = 2
)

const (
	// DefaultBreakpoint is the mobile breakpoint width
	DefaultBreakpoint = 768
	// DefaultSettleDelay approximates the time until the next paint
	DefaultSettleDelay = 50 * time.Millisecond
)

// Viewport is the visible area, in the renderer's own units
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Decide is the layout rule: below the breakpoint one column regardless of
// content, otherwise two columns only when content overflows the viewport.
func Decide(vp Viewport, contentHeight, breakpoint int) Columns {
	if vp.Width < breakpoint {
		return Single
	}
	if contentHeight > vp.Height {
		return Double
	}
	return Single
}

// Config tunes an Advisor
type Config struct {
	Breakpoint  int
	SettleDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Breakpoint <= 0 {
		c.Breakpoint = DefaultBreakpoint
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	return c
}

// MeasureFunc returns the content height as rendered with one column
type MeasureFunc func() int

// Advisor tracks the current column count for one view. Recomputation is
// triggered by Resize and Invalidate; measurements go through a single-slot
// scheduler so only the latest one runs.
type Advisor struct {
	cfg      Config
	measure  MeasureFunc
	onChange func(Columns)
	sched    *Scheduler

	mu       sync.Mutex
	columns  Columns
	viewport Viewport
	// gen identifies the latest recompute; a measurement taken for an
	// older one is discarded.
	gen uint64
}

// NewAdvisor returns an advisor starting at one column. onChange is called
// whenever the column count changes and may be nil.
func NewAdvisor(cfg Config, measure MeasureFunc, onChange func(Columns)) *Advisor {
	return &Advisor{
		cfg:      cfg.withDefaults(),
		measure:  measure,
		onChange: onChange,
		sched:    NewScheduler(),
		columns:  Single,
	}
}

// Columns returns the current decision
func (a *Advisor) Columns() Columns {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.columns
}

// Viewport returns the last viewport seen
func (a *Advisor) Viewport() Viewport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewport
}

// Resize records a new viewport and recomputes
func (a *Advisor) Resize(vp Viewport) {
	a.mu.Lock()
	a.viewport = vp
	a.mu.Unlock()
	a.recompute()
}

// Invalidate recomputes for the current viewport. Call it when the holdings
// or the loading state change.
func (a *Advisor) Invalidate() {
	a.recompute()
}

// Pending reports whether a measurement is scheduled
func (a *Advisor) Pending() bool {
	return a.sched.Pending()
}

// Stop cancels any pending measurement
func (a *Advisor) Stop() {
	a.sched.Cancel()
}

func (a *Advisor) recompute() {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	changed := a.setLocked(Single)
	if a.viewport.Width < a.cfg.Breakpoint {
		a.sched.Cancel()
	} else {
		a.sched.Schedule(a.cfg.SettleDelay, func() { a.measureNow(gen) })
	}
	a.mu.Unlock()

	a.notify(changed)
}

func (a *Advisor) measureNow(gen uint64) {
	height := 0
	if a.measure != nil {
		height = a.measure()
	}

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	changed := a.setLocked(Decide(a.viewport, height, a.cfg.Breakpoint))
	a.mu.Unlock()

	a.notify(changed)
}

func (a *Advisor) setLocked(c Columns) bool {
	changed := a.columns != c
	a.columns = c
	return changed
}

// notify reports the current decision, not the one that triggered it, so
// the last callback always matches Columns.
func (a *Advisor) notify(changed bool) {
	if changed && a.onChange != nil {
		a.onChange(a.Columns())
	}
}
