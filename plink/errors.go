package plink

import "fmt"

// ParseError is fatal: a well-shaped MAP or BED line whose coordinate is not a
// positive integer.
type ParseError struct {
	File  string
	Line  int // 1-based
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: cannot parse %s %q: %v", e.File, e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InconsistentFileLengthError reports a PED row whose genotype pair count does
// not match the number of markers in the MAP file. Column alignment cannot be
// trusted after that, so the whole PED file is rejected.
type InconsistentFileLengthError struct {
	PedFile    string
	MapFile    string
	Line       int // 1-based line in PedFile
	PedPairs   int
	MapMarkers int
	OddFields  bool // the row ended on half a pair
}

func (e *InconsistentFileLengthError) Error() string {
	odd := ""
	if e.OddFields {
		odd = " (odd number of genotype fields)"
	}
	return fmt.Sprintf("%s:%d has %d genotype pairs%s but %s has %d markers",
		e.PedFile, e.Line, e.PedPairs, odd, e.MapFile, e.MapMarkers)
}
