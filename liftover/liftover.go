package liftover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/plinkliftover"
	"github.com/carbocation/plinkliftover/plink"
)

// UnliftedSuffix is appended to the output BED path to name the file where
// liftOver records what it rejected.
const UnliftedSuffix = ".unlifted"

// Args are liftOver's four positional arguments, in command line order.
type Args struct {
	InputBed  string
	ChainFile string
	OutputBed string
	Unlifted  string
}

func NewArgs(inputBed, chainFile, outputBed string) Args {
	return Args{
		InputBed:  inputBed,
		ChainFile: chainFile,
		OutputBed: outputBed,
		Unlifted:  outputBed + UnliftedSuffix,
	}
}

// Positional returns the arguments as liftOver expects them:
// oldFile map.chain newFile unMapped.
func (a Args) Positional() []string {
	return []string{a.InputBed, a.ChainFile, a.OutputBed, a.Unlifted}
}

// ToolInvocationError means liftOver ran but did not exit cleanly. Its
// outputs must not be used.
type ToolInvocationError struct {
	Tool     string
	Args     Args
	ExitCode int // -1 if the process could not be started or was killed
	Stderr   string
	Err      error
}

func (e *ToolInvocationError) Error() string {
	msg := fmt.Sprintf("%s failed lifting %s (exit code %d): %v", e.Tool, e.Args.InputBed, e.ExitCode, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// Invoker runs a resolved liftOver executable.
type Invoker struct {
	Tool     string
	Observer plink.Observer
}

func (inv Invoker) observer() plink.Observer {
	if inv.Observer == nil {
		return plink.NopObserver{}
	}
	return inv.Observer
}

// Lift runs liftOver and blocks until it exits. On success both of its outputs
// are parsed: lifted holds the ids of the new BED, unlifted those of the
// rejection file. Either may be empty.
func (inv Invoker) Lift(ctx context.Context, args Args) (lifted, unlifted plink.IDSet, err error) {
	obs := inv.observer()
	obs.StageStarted(plink.StageLift, args.InputBed)
	defer func() { obs.StageFinished(plink.StageLift, err) }()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, inv.Tool, args.Positional()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, nil, &ToolInvocationError{
			Tool:     inv.Tool,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	unlifted, err = ReadIDSet(args.Unlifted)
	if err != nil {
		return nil, nil, err
	}
	obs.LinesProcessed(plink.StageLift, unlifted.Len())

	lifted, err = ReadIDSet(args.OutputBed)
	if err != nil {
		return nil, nil, err
	}
	obs.LinesProcessed(plink.StageLift, lifted.Len())

	return lifted, unlifted, nil
}

// ParseIDSet collects the last whitespace-delimited token of every line that
// is neither blank nor a # comment. Both BED output and liftOver's unmapped
// file end each record with the variant id.
func ParseIDSet(lines []string) plink.IDSet {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) == 0 {
			continue
		}
		ids = append(ids, cols[len(cols)-1])
	}
	return plink.NewIDSet(ids...)
}

// ReadIDSet reads a local liftOver output file with ParseIDSet.
func ReadIDSet(path string) (plink.IDSet, error) {
	lines, err := plinkliftover.ReadLines(context.Background(), path, nil)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return ParseIDSet(lines), nil
}
