// Package pipeline sequences a full PLINK lift: MAP to BED, liftOver, BED back
// to MAP, then the optional DAT and PED filters against the ids liftOver
// accepted or rejected.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/plinkliftover"
	"github.com/carbocation/plinkliftover/liftover"
	"github.com/carbocation/plinkliftover/plink"
	"golang.org/x/sync/errgroup"
)

// Config describes one lift. MapFile and ChainFile are required.
type Config struct {
	MapFile   string
	ChainFile string
	PedFile   string // optional
	DatFile   string // optional

	// Prefix for every output. Defaults to the MAP file stem plus ".lifted",
	// in the current directory.
	Prefix string

	// Tool is an explicit liftOver path; see liftover.FindTool.
	Tool string

	// KeepIntermediate leaves both BED files in place after a successful run.
	KeepIntermediate bool

	Workers  int
	Observer plink.Observer
	Client   *storage.Client
}

// StageError tags a failure with the stage it happened in.
type StageError struct {
	Stage plink.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Paths are the files a run reads and writes, derived from Config.Prefix.
type Paths struct {
	OldBed   string
	NewBed   string
	Unlifted string // written by liftOver next to NewBed
	Report   string // where Unlifted is moved during cleanup
	Map      string
	Dat      string
	Ped      string
}

func NewPaths(prefix string) Paths {
	newBed := prefix + ".new.bed"
	return Paths{
		OldBed:   prefix + ".old.bed",
		NewBed:   newBed,
		Unlifted: newBed + liftover.UnliftedSuffix,
		Report:   prefix + liftover.UnliftedSuffix,
		Map:      prefix + ".map",
		Dat:      prefix + ".dat",
		Ped:      prefix + ".ped",
	}
}

// DefaultPrefix strips the extension (and any compression suffix) from the
// MAP file's base name.
func DefaultPrefix(mapFile string) string {
	return plinkliftover.Stem(mapFile) + ".lifted"
}

// Result reports what a run produced. On error it holds whatever stages
// finished before the failure.
type Result struct {
	Paths    Paths
	Map      plink.ConvertStats
	Lifted   int
	Unlifted int
	NewMap   plink.ConvertStats
	Dat      *plink.DatStats
	Ped      *plink.PedStats
	Outputs  []string
}

// Run executes the pipeline. A failed lift stops everything and leaves the BED
// files behind for inspection; DAT and PED are filtered concurrently and a
// failure in one does not stop the other.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.MapFile == "" || cfg.ChainFile == "" {
		return nil, pfx.Err(fmt.Errorf("a MAP file and a chain file are required"))
	}

	tool, err := liftover.FindTool(cfg.Tool)
	if err != nil {
		return nil, &StageError{Stage: plink.StageLift, Err: err}
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix(cfg.MapFile)
	}
	if prefix, err = plinkliftover.ExpandHome(prefix); err != nil {
		return nil, err
	}

	res := &Result{Paths: NewPaths(prefix)}
	paths := res.Paths

	opts := plink.Options{
		Workers:  cfg.Workers,
		Observer: cfg.Observer,
		Client:   cfg.Client,
	}

	// MAP_TO_BED
	if res.Map, err = plink.MapToBed(ctx, cfg.MapFile, paths.OldBed, opts); err != nil {
		return res, &StageError{Stage: plink.StageMapToBed, Err: err}
	}

	// LIFT
	chain, removeChain, err := plinkliftover.LocalCopy(ctx, cfg.ChainFile, cfg.Client)
	if err != nil {
		return res, &StageError{Stage: plink.StageLift, Err: err}
	}
	defer removeChain()

	inv := liftover.Invoker{Tool: tool, Observer: cfg.Observer}
	lifted, unlifted, err := inv.Lift(ctx, liftover.NewArgs(paths.OldBed, chain, paths.NewBed))
	if err != nil {
		return res, &StageError{Stage: plink.StageLift, Err: err}
	}
	res.Lifted, res.Unlifted = lifted.Len(), unlifted.Len()

	// BED_TO_MAP
	if res.NewMap, err = plink.BedToMap(ctx, paths.NewBed, paths.Map, opts); err != nil {
		return res, &StageError{Stage: plink.StageBedToMap, Err: err}
	}
	res.Outputs = append(res.Outputs, paths.Map)

	// DAT_FILTER and PED_FILTER only read the two sets, so they can share them.
	var g errgroup.Group
	var datStats plink.DatStats
	var pedStats plink.PedStats
	var datErr, pedErr error

	if cfg.DatFile != "" {
		g.Go(func() error {
			datStats, datErr = plink.LiftDat(ctx, cfg.DatFile, paths.Dat, lifted, opts)
			if datErr != nil {
				return &StageError{Stage: plink.StageDat, Err: datErr}
			}
			return nil
		})
	}

	if cfg.PedFile != "" {
		g.Go(func() error {
			pedStats, pedErr = plink.LiftPed(ctx, cfg.PedFile, paths.Ped, cfg.MapFile, unlifted, opts)
			if pedErr != nil {
				return &StageError{Stage: plink.StagePed, Err: pedErr}
			}
			return nil
		})
	}

	filterErr := g.Wait()

	if cfg.DatFile != "" && datErr == nil {
		res.Dat = &datStats
		res.Outputs = append(res.Outputs, paths.Dat)
	}
	if cfg.PedFile != "" && pedErr == nil {
		res.Ped = &pedStats
		res.Outputs = append(res.Outputs, paths.Ped)
	}

	if filterErr != nil {
		return res, filterErr
	}

	// CLEANUP
	if err := cleanup(paths, cfg.KeepIntermediate, cfg.Observer); err != nil {
		return res, &StageError{Stage: plink.StageCleanup, Err: err}
	}
	res.Outputs = append(res.Outputs, paths.Report)

	return res, nil
}

func cleanup(paths Paths, keepIntermediate bool, obs plink.Observer) (err error) {
	if obs == nil {
		obs = plink.NopObserver{}
	}
	obs.StageStarted(plink.StageCleanup, paths.NewBed)
	defer func() { obs.StageFinished(plink.StageCleanup, err) }()

	if err := os.Rename(paths.Unlifted, paths.Report); err != nil {
		return pfx.Err(err)
	}

	if keepIntermediate {
		return nil
	}

	for _, bed := range []string{paths.NewBed, paths.OldBed} {
		if err := os.Remove(bed); err != nil && !os.IsNotExist(err) {
			return pfx.Err(err)
		}
	}

	return nil
}
