// Package plink converts between PLINK MAP and UCSC BED text and filters the
// PLINK companion files (DAT, PED) down to the variants that survived a lift.
package plink

import (
	"fmt"
	"strconv"
	"strings"
)

// Map columns in the MAP file to their positions
const (
	Chromosome int = iota
	VariantID
	Morgans
	Coordinate
)

// Columns in the 4-column BED files handed to and received from liftOver
const (
	BedChrom int = iota
	BedStart
	BedEnd
	BedName
)

// MapLineLength and BedLineLength are the only field counts accepted from
// MAP and BED lines. Anything else is skipped.
const (
	MapLineLength = 4
	BedLineLength = 4
)

// ChrPrefix is the UCSC chromosome naming prefix.
const ChrPrefix = "chr"

type MapRow struct {
	Chromosome string
	VariantID  string // E.g., RSID
	Coordinate int64  // 1-based; labeled "position" by most applications
	// Morgans is never read back; bed->map always writes 0.0
}

// BedRow is a single-base UCSC interval. Start is 0-based, End is exclusive,
// so for a SNP End-Start == 1 and End equals the MAP coordinate.
type BedRow struct {
	Chrom string
	Start int64
	End   int64
	Name  string
}

// ParseMapFields builds a MapRow from an already split MAP line.
func ParseMapFields(cols []string) (MapRow, error) {
	if len(cols) != MapLineLength {
		return MapRow{}, fmt.Errorf("expected %d fields, found %d", MapLineLength, len(cols))
	}

	pos, err := parseCoordinate(cols[Coordinate])
	if err != nil {
		return MapRow{}, err
	}

	return MapRow{
		Chromosome: cols[Chromosome],
		VariantID:  cols[VariantID],
		Coordinate: pos,
	}, nil
}

// Bed converts the 1-based MAP coordinate to a half-open, 0-based interval.
// The chr prefix is only added when it is missing.
func (m MapRow) Bed() BedRow {
	chrom := m.Chromosome
	if !strings.HasPrefix(chrom, ChrPrefix) {
		chrom = ChrPrefix + chrom
	}

	return BedRow{
		Chrom: chrom,
		Start: m.Coordinate - 1,
		End:   m.Coordinate,
		Name:  m.VariantID,
	}
}

func (b BedRow) String() string {
	return fmt.Sprintf("%s\t%d\t%d\t%s", b.Chrom, b.Start, b.End, b.Name)
}

// String renders the row as a MAP line. Genetic distance is not
// recoverable from BED and is always written as 0.0.
func (m MapRow) String() string {
	return fmt.Sprintf("%s\t%s\t0.0\t%d", m.Chromosome, m.VariantID, m.Coordinate)
}

func parseCoordinate(s string) (int64, error) {
	pos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if pos < 1 {
		return 0, fmt.Errorf("coordinate %d is not 1-based", pos)
	}

	return pos, nil
}
