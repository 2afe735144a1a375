package liftover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

// writeTool drops an executable shell script into dir. The script receives
// liftOver's four positional arguments as $1..$4.
func writeTool(t *testing.T, dir, body string) string {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh to run a fake liftOver")
	}
	path := filepath.Join(dir, "fakeLiftOver")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// identityTool copies the input BED and rejects every line mentioning rs2.
const identityTool = `grep -v -w rs2 "$1" > "$3"
{ echo '#Deleted in new'; grep -w rs2 "$1"; } > "$4"
exit 0`

func TestArgsOrder(t *testing.T) {
	a := NewArgs("old.bed", "hg19ToHg38.over.chain.gz", "new.bed")
	if expected := []string{"old.bed", "hg19ToHg38.over.chain.gz", "new.bed", "new.bed.unlifted"}; !reflect.DeepEqual(a.Positional(), expected) {
		t.Errorf("got %q, expected %q", a.Positional(), expected)
	}
}

func TestParseIDSet(t *testing.T) {
	set := ParseIDSet([]string{
		"#Deleted in new",
		"chr1\t99\t100\trs1",
		"",
		"   ",
		"#Partially deleted in new",
		"chr2 4 5 rs2",
		"chr2\t4\t5\trs2",
	})
	if set.Len() != 2 || !set.Has("rs1") || !set.Has("rs2") {
		t.Errorf("unexpected set %v", set)
	}
}

func TestLiftIdentity(t *testing.T) {
	dir := t.TempDir()
	tool := writeTool(t, dir, identityTool)

	in := filepath.Join(dir, "old.bed")
	if err := os.WriteFile(in, []byte("chr1\t99\t100\trs1\nchr1\t199\t200\trs2\nchr1\t299\t300\trs3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	args := NewArgs(in, filepath.Join(dir, "chain"), filepath.Join(dir, "new.bed"))
	lifted, unlifted, err := Invoker{Tool: tool}.Lift(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}

	if lifted.Len() != 2 || !lifted.Has("rs1") || !lifted.Has("rs3") {
		t.Errorf("unexpected lifted set %v", lifted)
	}
	if unlifted.Len() != 1 || !unlifted.Has("rs2") {
		t.Errorf("unexpected unlifted set %v", unlifted)
	}
	if both := lifted.Intersect(unlifted); both.Len() != 0 {
		t.Errorf("lifted and unlifted overlap: %v", both)
	}
}

// rejectListTool maps every input line except those whose name is listed in
// the file at rejects, which it reports as unlifted.
func rejectListTool(rejects string) string {
	return `grep -v -w -F -f '` + rejects + `' "$1" > "$3"
{ echo '#Deleted in new'; grep -w -F -f '` + rejects + `' "$1"; } > "$4"
exit 0`
}

func TestLiftedAndUnliftedAreDisjoint(t *testing.T) {
	const n = 10
	for _, v := range []struct {
		name   string
		reject func(i int) bool
	}{
		{"none", func(int) bool { return false }},
		{"all", func(int) bool { return true }},
		{"alternating", func(i int) bool { return i%2 == 0 }},
		{"first half", func(i int) bool { return i < n/2 }},
	} {
		t.Run(v.name, func(t *testing.T) {
			dir := t.TempDir()

			var bed, rejects strings.Builder
			expectedUnlifted := 0
			for i := 0; i < n; i++ {
				id := "rs" + strconv.Itoa(i+1)
				pos := strconv.Itoa(100 * (i + 1))
				bed.WriteString("chr1\t" + pos + "\t" + pos + "\t" + id + "\n")
				if v.reject(i) {
					rejects.WriteString(id + "\n")
					expectedUnlifted++
				}
			}

			in := filepath.Join(dir, "old.bed")
			if err := os.WriteFile(in, []byte(bed.String()), 0644); err != nil {
				t.Fatal(err)
			}
			rejectFile := filepath.Join(dir, "rejects")
			if err := os.WriteFile(rejectFile, []byte(rejects.String()), 0644); err != nil {
				t.Fatal(err)
			}
			tool := writeTool(t, dir, rejectListTool(rejectFile))

			lifted, unlifted, err := Invoker{Tool: tool}.Lift(context.Background(), NewArgs(in, "chain", filepath.Join(dir, "new.bed")))
			if err != nil {
				t.Fatal(err)
			}
			if both := lifted.Intersect(unlifted); both.Len() != 0 {
				t.Errorf("lifted and unlifted overlap: %v", both)
			}
			if unlifted.Len() != expectedUnlifted {
				t.Errorf("got %d unlifted, expected %d", unlifted.Len(), expectedUnlifted)
			}
			if lifted.Len() != n-expectedUnlifted {
				t.Errorf("got %d lifted, expected %d", lifted.Len(), n-expectedUnlifted)
			}
		})
	}
}

func TestLiftNothingMapped(t *testing.T) {
	dir := t.TempDir()
	tool := writeTool(t, dir, `: > "$3"; : > "$4"`)

	in := filepath.Join(dir, "old.bed")
	if err := os.WriteFile(in, nil, 0644); err != nil {
		t.Fatal(err)
	}

	lifted, unlifted, err := Invoker{Tool: tool}.Lift(context.Background(), NewArgs(in, "chain", filepath.Join(dir, "new.bed")))
	if err != nil {
		t.Fatal(err)
	}
	if lifted.Len() != 0 || unlifted.Len() != 0 {
		t.Errorf("expected empty sets, got %v and %v", lifted, unlifted)
	}
}

func TestLiftFailure(t *testing.T) {
	dir := t.TempDir()
	tool := writeTool(t, dir, `echo "ERROR: chain file is corrupt" >&2
exit 3`)

	_, _, err := Invoker{Tool: tool}.Lift(context.Background(), NewArgs("old.bed", "chain", filepath.Join(dir, "new.bed")))
	var terr *ToolInvocationError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *ToolInvocationError, got %v", err)
	}
	if terr.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", terr.ExitCode)
	}
	if !strings.Contains(terr.Stderr, "chain file is corrupt") || !strings.Contains(err.Error(), "chain file is corrupt") {
		t.Errorf("stderr not surfaced: %v", err)
	}
	if !strings.Contains(err.Error(), "old.bed") {
		t.Errorf("input file not named: %v", err)
	}
}

func TestFindTool(t *testing.T) {
	dir := t.TempDir()

	if _, err := FindTool(filepath.Join(dir, "missing")); !isNotFound(err) {
		t.Errorf("missing explicit path: expected *ToolNotFoundError, got %v", err)
	}
	if _, err := FindTool(dir); !isNotFound(err) {
		t.Errorf("directory: expected *ToolNotFoundError, got %v", err)
	}

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := FindTool(plain); !isNotFound(err) {
		t.Errorf("non-executable: expected *ToolNotFoundError, got %v", err)
	}

	exe := filepath.Join(dir, "liftOver")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if got, err := FindTool(exe); err != nil || got != exe {
		t.Errorf("explicit: got %q, %v", got, err)
	}

	t.Setenv(EnvTool, exe)
	if got, err := FindTool(""); err != nil || got != exe {
		t.Errorf("env: got %q, %v", got, err)
	}

	t.Setenv(EnvTool, "")
	t.Setenv("PATH", dir)
	if got, err := FindTool(""); err != nil || got != exe {
		t.Errorf("PATH: got %q, %v", got, err)
	}

	t.Setenv("PATH", t.TempDir())
	if _, err := FindTool(""); !isNotFound(err) {
		t.Errorf("empty PATH: expected *ToolNotFoundError, got %v", err)
	}
}

func isNotFound(err error) bool {
	var nf *ToolNotFoundError
	return errors.As(err, &nf)
}
