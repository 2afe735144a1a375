package plink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLiftPedExample(t *testing.T) {
	f := NewPedFilter("x.ped", "x.map", []string{"rs1", "rs2", "rs3"}, NewIDSet("rs2"))
	out, stats, err := LiftPedLines(f, []string{"FAM1\tIND1\t0\t0\t1\t2\tA\tG\tC\tC\tT\tA"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if expected := []string{"FAM1\tIND1\t0\t0\t1\t2\tA\tG\tT\tA"}; !reflect.DeepEqual(out, expected) {
		t.Fatalf("got %q, expected %q", out, expected)
	}
	if stats.Rows != 1 || stats.PairsKept != 2 || stats.PairsDropped != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestLiftPedMixedWhitespace(t *testing.T) {
	f := NewPedFilter("x.ped", "x.map", []string{"rs1", "rs2"}, NewIDSet("rs1"))
	for _, row := range []string{
		"F I 0 0 1 -9 A G C T",
		"F\tI\t0\t0\t1\t-9\tA G\tC T",
		"  F\tI\t0\t0\t1\t-9\tA\tG\tC\tT\t\n",
	} {
		got, err := f.Row(1, row)
		if err != nil {
			t.Fatalf("%q: %v", row, err)
		}
		if expected := "F\tI\t0\t0\t1\t-9\tC\tT"; got != expected {
			t.Errorf("%q: got %q, expected %q", row, got, expected)
		}
	}
}

func TestLiftPedLengthMismatchIsFatal(t *testing.T) {
	f := NewPedFilter("x.ped", "x.map", []string{"rs1", "rs2", "rs3"}, NewIDSet())
	for _, v := range []struct {
		row   string
		pairs int
		odd   bool
	}{
		{"F I 0 0 1 2 A G C C", 2, false},
		{"F I 0 0 1 2 A G C C T A G G", 4, false},
		{"F I 0 0 1 2 A G C C T", 2, true},
		{"F I 0 0", 0, false},
	} {
		_, _, err := LiftPedLines(f, []string{"F I 0 0 1 2 A G C C T A", v.row}, Options{})
		var lerr *InconsistentFileLengthError
		if !errors.As(err, &lerr) {
			t.Fatalf("%q: expected *InconsistentFileLengthError, got %v", v.row, err)
		}
		if lerr.Line != 2 || lerr.PedPairs != v.pairs || lerr.MapMarkers != 3 || lerr.OddFields != v.odd {
			t.Errorf("%q: unexpected error details %+v", v.row, lerr)
		}
	}
}

func TestLiftPedSkipsBlankRows(t *testing.T) {
	f := NewPedFilter("x.ped", "x.map", []string{"rs1"}, NewIDSet())
	out, _, err := LiftPedLines(f, []string{"", "F I 0 0 1 2 A A", "   ", "G J 0 0 2 1 C C"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if expected := []string{"F\tI\t0\t0\t1\t2\tA\tA", "G\tJ\t0\t0\t2\t1\tC\tC"}; !reflect.DeepEqual(out, expected) {
		t.Fatalf("got %q, expected %q", out, expected)
	}
}

func TestMapMarkersOnlyCountsRecords(t *testing.T) {
	markers := MapMarkers([]string{"1 rs1 0 10", "", "1 rs2 20", "1 rs3 0 30"})
	if expected := []string{"rs1", "rs3"}; !reflect.DeepEqual(markers, expected) {
		t.Errorf("got %q, expected %q", markers, expected)
	}
}

func TestLiftPedFile(t *testing.T) {
	dir := t.TempDir()
	mapFile := filepath.Join(dir, "orig.map")
	pedFile := filepath.Join(dir, "orig.ped")
	out := filepath.Join(dir, "new.ped")

	if err := os.WriteFile(mapFile, []byte("1\trs1\t0\t10\n1\trs2\t0\t20\n1\trs3\t0\t30\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pedFile, []byte("F1\tI1\t0\t0\t1\t2\tA\tG\tC\tC\tT\tA\nF2\tI2\t0\t0\t2\t1\tG\tG\tC\tT\tA\tA\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := LiftPed(context.Background(), pedFile, out, mapFile, NewIDSet("rs3"), Options{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if expected := "F1\tI1\t0\t0\t1\t2\tA\tG\tC\tC\nF2\tI2\t0\t0\t2\t1\tG\tG\tC\tT\n"; string(got) != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}
}

func TestLiftPedMismatchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	mapFile := filepath.Join(dir, "orig.map")
	pedFile := filepath.Join(dir, "orig.ped")
	out := filepath.Join(dir, "new.ped")

	if err := os.WriteFile(mapFile, []byte("1 rs1 0 10\n1 rs2 0 20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pedFile, []byte("F1 I1 0 0 1 2 A G C C\nF2 I2 0 0 2 1 G G\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LiftPed(context.Background(), pedFile, out, mapFile, NewIDSet(), Options{})
	var lerr *InconsistentFileLengthError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *InconsistentFileLengthError, got %v", err)
	}
	if lerr.PedFile != pedFile || lerr.MapFile != mapFile || lerr.PedPairs != 1 || lerr.MapMarkers != 2 {
		t.Errorf("unexpected error details %+v", lerr)
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat returned %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected only the two inputs in %s, found %d entries", dir, len(entries))
	}
}
