// Package plinkliftover holds the file plumbing shared by the lift pipeline:
// local or gs:// inputs, transparent decompression and atomic output writes.
package plinkliftover

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// ReadAll loads the whole, possibly compressed, file at path into memory.
func ReadAll(ctx context.Context, path string, client *storage.Client) ([]byte, error) {
	f, err := MaybeOpenSeekerFromGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := MaybeDecompressReadCloser(f)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return data, nil
}

// CompressionSuffixes are the file extensions of the decompressors that
// MaybeDecompressReadCloser supports.
var CompressionSuffixes = []string{".gz", ".bz2", ".xz", ".zip"}

// Stem is the base name of path without its compression suffix and file
// extension: /data/x.map.gz becomes x.
func Stem(path string) string {
	base := filepath.Base(path)
	for _, ext := range CompressionSuffixes {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SplitLines splits text into lines without their terminators. A final
// newline does not produce a trailing empty line, and \r\n endings are
// accepted.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ReadLines reads path and splits it with SplitLines.
func ReadLines(ctx context.Context, path string, client *storage.Client) ([]string, error) {
	data, err := ReadAll(ctx, path, client)
	if err != nil {
		return nil, err
	}

	return SplitLines(string(data)), nil
}

// WriteLines writes each line followed by a newline. The data lands in a
// temporary file next to path and is renamed into place only once fully
// flushed, so readers never observe a partial output.
func WriteLines(path string, lines []string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pfx.Err(err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err = bw.WriteString(line); err != nil {
			return pfx.Err(err)
		}
		if err = bw.WriteByte('\n'); err != nil {
			return pfx.Err(err)
		}
	}
	if err = bw.Flush(); err != nil {
		return pfx.Err(err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return pfx.Err(err)
	}
	if err = tmp.Close(); err != nil {
		return pfx.Err(err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// LocalCopy makes path available on the local filesystem, for consumers such
// as external executables that cannot read from GCS or through a
// decompressor. Local paths are returned untouched with a no-op cleanup.
func LocalCopy(ctx context.Context, path string, client *storage.Client) (string, func(), error) {
	if !IsGoogleStoragePath(path) {
		return path, func() {}, nil
	}

	src, err := MaybeOpenSeekerFromGoogleStorage(ctx, path, client)
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "plinkliftover-*-"+filepath.Base(path))
	if err != nil {
		return "", nil, pfx.Err(err)
	}
	cleanup := func() { os.Remove(dst.Name()) }

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", nil, pfx.Err(err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, pfx.Err(err)
	}

	return dst.Name(), cleanup, nil
}
