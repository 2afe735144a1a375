// Package liftover runs UCSC's liftOver executable on a BED file and reads
// back which variants it could and could not map.
package liftover

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/carbocation/plinkliftover"
)

const (
	// DefaultTool is looked up on $PATH when no explicit path is given.
	DefaultTool = "liftOver"

	// EnvTool may point at the executable instead of a flag.
	EnvTool = "LIFTOVER_PATH"
)

// ToolNotFoundError means the liftOver executable could not be located.
type ToolNotFoundError struct {
	Path string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("liftOver executable %q not found: %v", e.Path, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// FindTool resolves the liftOver executable: explicit wins, then $LIFTOVER_PATH,
// then liftOver on $PATH.
func FindTool(explicit string) (string, error) {
	if explicit != "" {
		return checkExecutable(explicit)
	}

	if env := os.Getenv(EnvTool); env != "" {
		return checkExecutable(env)
	}

	path, err := exec.LookPath(DefaultTool)
	if err != nil {
		return "", &ToolNotFoundError{Path: DefaultTool, Err: err}
	}

	return path, nil
}

func checkExecutable(path string) (string, error) {
	expanded, err := plinkliftover.ExpandHome(path)
	if err != nil {
		return "", &ToolNotFoundError{Path: path, Err: err}
	}

	info, err := os.Stat(expanded)
	if err != nil {
		return "", &ToolNotFoundError{Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &ToolNotFoundError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	if info.Mode().Perm()&0111 == 0 {
		return "", &ToolNotFoundError{Path: path, Err: fmt.Errorf("is not executable")}
	}

	return expanded, nil
}
