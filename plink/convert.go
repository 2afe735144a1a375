package plink

import (
	"context"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/plinkliftover"
)

// ConvertStats summarizes a MAP<->BED conversion.
type ConvertStats struct {
	Records int // lines written
	Skipped int // non-blank lines without exactly 4 fields
}

// MapToBedLines converts MAP lines to BED lines. Lines that do not have
// exactly 4 fields are dropped; a non-numeric or non-positive position is a
// *ParseError. name is only used in error messages.
func MapToBedLines(name string, lines []string, opts Options) ([]string, ConvertStats, error) {
	out, err := transform(StageMapToBed, lines, opts, func(i int, line string) (string, bool, error) {
		cols := strings.Fields(line)
		if len(cols) != MapLineLength {
			return "", false, nil
		}

		row, err := ParseMapFields(cols)
		if err != nil {
			return "", false, &ParseError{File: name, Line: i + 1, Field: "position", Value: cols[Coordinate], Err: err}
		}

		return row.Bed().String(), true, nil
	})
	if err != nil {
		return nil, ConvertStats{}, err
	}

	return out, ConvertStats{Records: len(out), Skipped: countNonBlank(lines) - len(out)}, nil
}

// BedToMapLines is the inverse of MapToBedLines: the chr prefix is stripped
// and the BED end becomes the 1-based MAP position.
func BedToMapLines(name string, lines []string, opts Options) ([]string, ConvertStats, error) {
	out, err := transform(StageBedToMap, lines, opts, func(i int, line string) (string, bool, error) {
		cols := strings.Fields(line)
		if len(cols) != BedLineLength {
			return "", false, nil
		}

		end, err := parseCoordinate(cols[BedEnd])
		if err != nil {
			return "", false, &ParseError{File: name, Line: i + 1, Field: "end", Value: cols[BedEnd], Err: err}
		}

		row := MapRow{
			Chromosome: strings.TrimPrefix(cols[BedChrom], ChrPrefix),
			VariantID:  cols[BedName],
			Coordinate: end,
		}
		return row.String(), true, nil
	})
	if err != nil {
		return nil, ConvertStats{}, err
	}

	return out, ConvertStats{Records: len(out), Skipped: countNonBlank(lines) - len(out)}, nil
}

// MapToBed converts the MAP file at input into a BED file at output.
func MapToBed(ctx context.Context, input, output string, opts Options) (ConvertStats, error) {
	return convertFile(ctx, StageMapToBed, input, output, opts, MapToBedLines)
}

// BedToMap converts the BED file at input into a MAP file at output.
func BedToMap(ctx context.Context, input, output string, opts Options) (ConvertStats, error) {
	return convertFile(ctx, StageBedToMap, input, output, opts, BedToMapLines)
}

func convertFile(ctx context.Context, stage Stage, input, output string, opts Options,
	conv func(string, []string, Options) ([]string, ConvertStats, error)) (stats ConvertStats, err error) {

	obs := opts.observer()
	obs.StageStarted(stage, input)
	defer func() { obs.StageFinished(stage, err) }()

	lines, err := plinkliftover.ReadLines(ctx, input, opts.Client)
	if err != nil {
		return stats, pfx.Err(err)
	}

	out, stats, err := conv(input, lines, opts)
	if err != nil {
		return stats, err
	}

	if err = plinkliftover.WriteLines(output, out); err != nil {
		return stats, pfx.Err(err)
	}

	return stats, nil
}

func countNonBlank(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
