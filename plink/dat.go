package plink

import (
	"context"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/plinkliftover"
)

// DatLineLength is the token count of a well-formed marker line: tag, id.
const DatLineLength = 2

// DatStats summarizes a DAT filter run.
type DatStats struct {
	Markers   int // well-formed marker lines seen
	Kept      int // marker lines whose variant was lifted
	Malformed int // M-prefixed lines without exactly 2 tokens; dropped
	PassedOn  int // non-marker lines, copied verbatim
}

// Dropped counts marker lines removed from the output, malformed or unlifted.
func (s DatStats) Dropped() int {
	return s.Markers - s.Kept + s.Malformed
}

type datKind byte

const (
	datPassThrough datKind = iota
	datKept
	datUnlifted
	datMalformed
)

func classifyDatLine(line string, lifted IDSet) datKind {
	if len(line) == 0 || line[0] != 'M' {
		return datPassThrough
	}

	cols := strings.Fields(line)
	if len(cols) != DatLineLength {
		return datMalformed
	}
	if lifted.Has(cols[1]) {
		return datKept
	}
	return datUnlifted
}

// LiftDatLines keeps non-marker lines and the marker lines ("M<tag> <id>")
// whose id is in lifted. Output order follows the input.
func LiftDatLines(lines []string, lifted IDSet, opts Options) ([]string, DatStats, error) {
	out, err := transform(StageDat, lines, opts, func(_ int, line string) (string, bool, error) {
		switch classifyDatLine(line, lifted) {
		case datPassThrough, datKept:
			return line, true, nil
		}
		return "", false, nil
	})
	if err != nil {
		return nil, DatStats{}, err
	}

	var stats DatStats
	for _, line := range lines {
		switch classifyDatLine(line, lifted) {
		case datPassThrough:
			stats.PassedOn++
		case datKept:
			stats.Markers++
			stats.Kept++
		case datUnlifted:
			stats.Markers++
		case datMalformed:
			stats.Malformed++
		}
	}

	return out, stats, nil
}

// LiftDat filters the DAT file at input into output, see LiftDatLines.
func LiftDat(ctx context.Context, input, output string, lifted IDSet, opts Options) (stats DatStats, err error) {
	obs := opts.observer()
	obs.StageStarted(StageDat, input)
	defer func() { obs.StageFinished(StageDat, err) }()

	lines, err := plinkliftover.ReadLines(ctx, input, opts.Client)
	if err != nil {
		return stats, pfx.Err(err)
	}

	out, stats, err := LiftDatLines(lines, lifted, opts)
	if err != nil {
		return stats, err
	}

	if err = plinkliftover.WriteLines(output, out); err != nil {
		return stats, pfx.Err(err)
	}

	return stats, nil
}
