package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter renders a progress bar per audit stage.
type CLIProgressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
	stage string
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

// Update implements audit.ProgressFunc.
func (c *CLIProgressReporter) Update(stage string, done, total int) {
	if c.quiet || total == 0 {
		return
	}

	if stage != c.stage {
		c.finish()
		c.stage = stage
		c.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(stage),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}

	if c.bar != nil {
		c.bar.Set(done)
	}
}

// Finish closes the active bar, if any.
func (c *CLIProgressReporter) Finish() {
	c.finish()
}

func (c *CLIProgressReporter) finish() {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
}
