package plink

import (
	"sync"

	"cloud.google.com/go/storage"
	"github.com/exascience/pargo/parallel"
)

// Options tune the file-level converters and filters. The zero value runs on
// all CPUs with no progress reporting and local files only.
type Options struct {
	// Workers bounds the number of batches lines are split into. 0 lets
	// pargo choose, 1 runs serially.
	Workers int

	Observer Observer

	// Client is only needed when an input path starts with gs://.
	Client *storage.Client
}

func (o Options) observer() Observer {
	if o.Observer == nil {
		return NopObserver{}
	}
	return o.Observer
}

// lineFunc maps input line i to its output. keep=false drops the line.
type lineFunc func(i int, line string) (out string, keep bool, err error)

// lineError remembers the earliest failing line across batches.
type lineError struct {
	mu   sync.Mutex
	line int
	err  error
}

func (l *lineError) set(line int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err == nil || line < l.line {
		l.line, l.err = line, err
	}
}

// transform applies f to every line in parallel batches and returns the kept
// outputs in input order.
func transform(stage Stage, lines []string, opts Options, f lineFunc) ([]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	obs := opts.observer()
	results := make([]string, len(lines))
	kept := make([]bool, len(lines))
	var failure lineError

	batch := func(low, high int) {
		for i := low; i < high; i++ {
			out, keep, err := f(i, lines[i])
			if err != nil {
				failure.set(i, err)
				return
			}
			results[i], kept[i] = out, keep
		}
		obs.LinesProcessed(stage, high-low)
	}

	switch {
	case opts.Workers == 1:
		batch(0, len(lines))
	case opts.Workers > 1:
		parallel.Range(0, len(lines), opts.Workers, batch)
	default:
		parallel.Range(0, len(lines), 0, batch)
	}

	if failure.err != nil {
		return nil, failure.err
	}

	out := results[:0]
	for i, keep := range kept {
		if keep {
			out = append(out, results[i])
		}
	}

	return out, nil
}
