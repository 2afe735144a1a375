package plink

import (
	"context"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/plinkliftover"
)

// PedHeaderFields are family, individual, paternal, maternal, sex, phenotype.
const PedHeaderFields = 6

// PedStats summarizes a PED filter run. Every row carries the same pairs, so
// the pair counts are per row.
type PedStats struct {
	Rows         int
	PairsKept    int
	PairsDropped int
}

// MapMarkers returns the variant id of every MAP record, in file order. Only
// lines with exactly 4 fields are records, which keeps the marker list in
// step with what MapToBed hands to liftOver.
func MapMarkers(lines []string) []string {
	markers := make([]string, 0, len(lines))
	for _, line := range lines {
		cols := strings.Fields(line)
		if len(cols) != MapLineLength {
			continue
		}
		markers = append(markers, cols[VariantID])
	}
	return markers
}

// PedFilter drops genotype pairs by position. Pair i of every row belongs to
// markers[i]; it is kept unless that marker is in the unlifted set.
type PedFilter struct {
	PedFile string
	MapFile string
	keep    []bool
	kept    int
}

// NewPedFilter precomputes the keep mask. The PED rows must have been written
// against markers, i.e. the original, pre-lift MAP.
func NewPedFilter(pedFile, mapFile string, markers []string, unlifted IDSet) *PedFilter {
	f := &PedFilter{
		PedFile: pedFile,
		MapFile: mapFile,
		keep:    make([]bool, len(markers)),
	}
	for i, marker := range markers {
		if !unlifted.Has(marker) {
			f.keep[i] = true
			f.kept++
		}
	}
	return f
}

// Row filters one PED row. line is the 1-based line number used in errors.
// Input fields may be separated by tabs, spaces or both (plink --recode tab
// puts a space inside each pair); the output is always tab-delimited.
func (f *PedFilter) Row(line int, row string) (string, error) {
	fields := strings.Fields(row)

	genotypes := len(fields) - PedHeaderFields
	if genotypes < 0 || genotypes%2 != 0 || genotypes/2 != len(f.keep) {
		pairs := 0
		if genotypes > 0 {
			pairs = genotypes / 2
		}
		return "", &InconsistentFileLengthError{
			PedFile:    f.PedFile,
			MapFile:    f.MapFile,
			Line:       line,
			PedPairs:   pairs,
			MapMarkers: len(f.keep),
			OddFields:  genotypes > 0 && genotypes%2 != 0,
		}
	}

	var sb strings.Builder
	sb.Grow(len(row))
	sb.WriteString(strings.Join(fields[:PedHeaderFields], "\t"))
	for i, keep := range f.keep {
		if !keep {
			continue
		}
		a := PedHeaderFields + 2*i
		sb.WriteByte('\t')
		sb.WriteString(fields[a])
		sb.WriteByte('\t')
		sb.WriteString(fields[a+1])
	}

	return sb.String(), nil
}

// LiftPedLines filters every non-blank PED row. A single row whose pair count
// disagrees with the marker count fails the whole file.
func LiftPedLines(f *PedFilter, lines []string, opts Options) ([]string, PedStats, error) {
	out, err := transform(StagePed, lines, opts, func(i int, line string) (string, bool, error) {
		if strings.TrimSpace(line) == "" {
			return "", false, nil
		}
		row, err := f.Row(i+1, line)
		if err != nil {
			return "", false, err
		}
		return row, true, nil
	})
	if err != nil {
		return nil, PedStats{}, err
	}

	return out, PedStats{
		Rows:         len(out),
		PairsKept:    f.kept,
		PairsDropped: len(f.keep) - f.kept,
	}, nil
}

// LiftPed removes the genotype pairs of unlifted markers from the PED file at
// input. mapFile must be the original MAP the PED columns were written
// against. Nothing is written when any row fails the length check.
func LiftPed(ctx context.Context, input, output, mapFile string, unlifted IDSet, opts Options) (stats PedStats, err error) {
	obs := opts.observer()
	obs.StageStarted(StagePed, input)
	defer func() { obs.StageFinished(StagePed, err) }()

	mapLines, err := plinkliftover.ReadLines(ctx, mapFile, opts.Client)
	if err != nil {
		return stats, pfx.Err(err)
	}

	lines, err := plinkliftover.ReadLines(ctx, input, opts.Client)
	if err != nil {
		return stats, pfx.Err(err)
	}

	f := NewPedFilter(input, mapFile, MapMarkers(mapLines), unlifted)

	out, stats, err := LiftPedLines(f, lines, opts)
	if err != nil {
		return stats, err
	}

	if err = plinkliftover.WriteLines(output, out); err != nil {
		return stats, pfx.Err(err)
	}

	return stats, nil
}
