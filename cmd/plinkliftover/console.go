package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/carbocation/plinkliftover/plink"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	purple = color.New(color.FgMagenta).SprintFunc()
)

var stageBanners = map[plink.Stage]string{
	plink.StageMapToBed: "Converting MAP file %s to UCSC BED...",
	plink.StageLift:     "Lifting BED file %s...",
	plink.StageBedToMap: "Converting lifted BED file %s back to MAP...",
	plink.StageDat:      "Updating DAT file %s...",
	plink.StagePed:      "Updating PED file %s...",
	plink.StageCleanup:  "Cleaning up BED files next to %s...",
}

// console prints stage banners to w. verbosity 1 adds line counts, 2 adds
// timings. The spinner only runs while liftOver does.
type console struct {
	mu        sync.Mutex
	w         io.Writer
	verbosity int
	spin      *spinner.Spinner
	started   map[plink.Stage]time.Time
	processed map[plink.Stage]int
}

func newConsole(w io.Writer, verbosity int) *console {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Writer = w
	s.Suffix = " waiting for liftOver"

	return &console{
		w:         w,
		verbosity: verbosity,
		spin:      s,
		started:   make(map[plink.Stage]time.Time),
		processed: make(map[plink.Stage]int),
	}
}

func (c *console) StageStarted(stage plink.Stage, input string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.started[stage] = time.Now()
	banner, ok := stageBanners[stage]
	if !ok {
		banner = string(stage) + " %s..."
	}
	fmt.Fprintf(c.w, banner+"\n", blue(input))

	if stage == plink.StageLift {
		c.spin.Start()
	}
}

func (c *console) LinesProcessed(stage plink.Stage, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed[stage] += n
}

func (c *console) StageFinished(stage plink.Stage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stage == plink.StageLift {
		c.spin.Stop()
	}

	status := green("SUCCESS")
	if err != nil {
		status = red("FAILED")
	}
	fmt.Fprintf(c.w, "%s: %s\n", purple(string(stage)), status)

	if c.verbosity > 0 {
		fmt.Fprintf(c.w, "  %d lines processed\n", c.processed[stage])
	}
	if c.verbosity > 1 {
		if t, ok := c.started[stage]; ok {
			fmt.Fprintf(c.w, "  took %s\n", time.Since(t).Round(time.Millisecond))
		}
	}
}
