// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

// Package progress renders a terminal progress bar for bulk operations.
// Output goes to stderr and is disabled automatically outside a TTY.
package progress

import (
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// descWidth is the fixed width of the description column.
const descWidth = 28

// Bar tracks progress of one bulk operation.
type Bar struct {
	container *mpb.Progress
	bar       *mpb.Bar
	desc      string
}

// New creates a progress bar over total steps. The returned Bar is a no-op
// when disabled or when stderr is not a terminal.
func New(total int, enabled bool) *Bar {
	b := &Bar{}
	if !enabled || !term.IsTerminal(int(os.Stderr.Fd())) {
		return b
	}

	b.container = mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)
	b.bar = b.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				if len(b.desc) > descWidth {
					return b.desc[:descWidth-2] + ".."
				}
				return b.desc
			}, decor.WC{W: descWidth, C: decor.DindentRight}),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	return b
}

// Increment advances the bar by one step and updates the description.
func (b *Bar) Increment(desc string) {
	if b == nil || b.bar == nil {
		return
	}

	b.desc = desc
	b.bar.Increment()
}

// Finish waits for the bar to render its final state.
func (b *Bar) Finish() {
	if b == nil || b.container == nil {
		return
	}

	b.container.Wait()
}
