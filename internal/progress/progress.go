// Package progress provides progress indication for rendering and collection
// runs. The renderer notifies an Indicator as it works through category
// sections; the indicator has no effect on the rendered output and may be a
// no-op, which is what tests and non-TTY runs use.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Indicator receives progress notifications during rendering.
// Init is called once with the total number of steps, SetTitle before each
// step with its display title, Tick after each step completes, and Terminate
// once at the end of the run.
type Indicator interface {
	Init(total int)
	SetTitle(title string)
	Tick()
	Terminate()
}

// Noop is an Indicator that does nothing.
type Noop struct{}

func (Noop) Init(int)        {}
func (Noop) SetTitle(string) {}
func (Noop) Tick()           {}
func (Noop) Terminate()      {}

// Bar is a spinner-backed Indicator for interactive terminals.
// It writes to stderr so rendered markdown on stdout stays clean.
type Bar struct {
	spin  *spinner.Spinner
	total int
	done  int
	title string
}

// NewBar creates a spinner-backed progress bar using the symbol set
// appropriate for the given terminal capabilities. Output goes to w;
// tests pass a buffer, normal runs pass os.Stderr.
func NewBar(caps TerminalCapabilities, w io.Writer) *Bar {
	symbols := SelectSymbols(caps)
	return &Bar{
		spin: spinner.New(spinner.CharSets[symbols.SpinnerSet],
			100*time.Millisecond, spinner.WithWriter(w)),
	}
}

// Init records the total step count and starts the spinner.
func (b *Bar) Init(total int) {
	b.total = total
	b.done = 0
	b.updateSuffix()
	b.spin.Start()
}

// SetTitle updates the step title shown next to the spinner.
func (b *Bar) SetTitle(title string) {
	b.title = title
	b.updateSuffix()
}

// Tick marks one step as complete.
func (b *Bar) Tick() {
	b.done++
	b.updateSuffix()
}

// Terminate stops the spinner and clears its line.
func (b *Bar) Terminate() {
	b.spin.Stop()
}

func (b *Bar) updateSuffix() {
	if b.title == "" {
		b.spin.Suffix = fmt.Sprintf(" %d/%d", b.done, b.total)
		return
	}
	b.spin.Suffix = fmt.Sprintf(" %s (%d/%d)", b.title, b.done, b.total)
}

// NewIndicator returns a Bar when stdout is an interactive terminal and a
// Noop otherwise. Piped output never gets spinner escape sequences.
func NewIndicator(caps TerminalCapabilities) Indicator {
	if !caps.IsTTY {
		return Noop{}
	}
	return NewBar(caps, os.Stderr)
}
