package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Rohianon/equishare-dashboard/cmd/dashboard/internal/output"
	"github.com/Rohianon/equishare-dashboard/pkg/layout"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the portfolio",
	Long: `Load the portfolio and display holdings and totals.

Wide terminals get a second column when the one column rendering would not
fit on screen. With --watch the dashboard stays open, is laid out again when
the terminal is resized and reloads every --interval.`,
	RunE: runShow,
}

var (
	watchFlag    bool
	intervalFlag time.Duration
)

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "keep the dashboard open")
	showCmd.Flags().DurationVar(&intervalFlag, "interval", 0, "reload interval with --watch (default terminal.refresh)")
}

// terminalViewport measures stdout. ok is false when stdout is not a terminal.
func terminalViewport() (layout.Viewport, bool) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return layout.Viewport{}, false
	}
	return layout.Viewport{Width: w, Height: h}, true
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, done := newSession()
	defer done()

	view, err := session.Load(ctx)
	if err != nil {
		return describe(err)
	}

	if getFormat() == "json" {
		return output.JSON(view)
	}

	breakpoint := viper.GetInt("terminal.breakpoint")
	vp, isTerm := terminalViewport()
	if !watchFlag || !isTerm {
		cols := layout.Single
		if isTerm {
			cols = layout.Decide(vp, output.Height(output.Dashboard(view, layout.Single)), breakpoint)
		}
		fmt.Fprintln(output.Stdout, output.Dashboard(view, cols))
		return nil
	}

	interval := intervalFlag
	if interval <= 0 {
		interval = viper.GetDuration("terminal.refresh")
	}
	w := newWatcher(view, breakpoint)
	return w.run(ctx, vp, interval, session.Load)
}

// watcher keeps one dashboard on screen. The advisor decides the columns;
// the screen is redrawn on every decision and on every reload.
type watcher struct {
	mu      sync.Mutex
	view    *portfolio.ViewModel
	status  string
	advisor *layout.Advisor
}

func newWatcher(view *portfolio.ViewModel, breakpoint int) *watcher {
	w := &watcher{view: view}
	w.advisor = layout.NewAdvisor(layout.Config{
		Breakpoint:  breakpoint,
		SettleDelay: viper.GetDuration("layout.settle_delay"),
	}, w.measure, func(layout.Columns) { w.draw() })
	return w
}

func (w *watcher) measure() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return output.Height(output.Dashboard(w.view, layout.Single))
}

func (w *watcher) draw() {
	cols := w.advisor.Columns()

	w.mu.Lock()
	defer w.mu.Unlock()
	// Clear screen and move home
	fmt.Fprint(output.Stdout, "\033[H\033[2J")
	fmt.Fprintln(output.Stdout, output.Dashboard(w.view, cols))
	fmt.Fprintln(output.Stdout)
	output.Info(fmt.Sprintf("%s · %s · Ctrl+C to quit", output.Columns(cols), w.status))
}

func (w *watcher) update(view *portfolio.ViewModel, status string) {
	w.mu.Lock()
	if view != nil {
		w.view = view
	}
	w.status = status
	w.mu.Unlock()
}

func (w *watcher) run(ctx context.Context, vp layout.Viewport, interval time.Duration, load func(context.Context) (*portfolio.ViewModel, error)) error {
	defer w.advisor.Stop()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	w.update(nil, "updated "+time.Now().Format("15:04:05"))
	w.advisor.Resize(vp)
	w.draw()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-winch:
			if vp, ok := terminalViewport(); ok {
				w.advisor.Resize(vp)
				w.draw()
			}

		case <-ticker.C:
			view, err := load(ctx)
			if err != nil {
				// Keep showing the last snapshot
				w.update(nil, "reload failed: "+err.Error())
			} else {
				w.update(view, "updated "+time.Now().Format("15:04:05"))
			}
			w.advisor.Invalidate()
			w.draw()
		}
	}
}
