// plinkliftover converts genotype data stored in plink's PED+MAP format from
// one genome build to another, using UCSC's liftOver.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/carbocation/plinkliftover"
	"github.com/carbocation/plinkliftover/compileinfo"
	"github.com/carbocation/plinkliftover/pipeline"
	"github.com/carbocation/plinkliftover/plink"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("plinkliftover", "Converts genotype data stored in plink's PED+MAP format from one genome build to another, using liftOver.")

	verbose = app.Flag("verbose", "Control output verbosity. Pass this flag multiple times to increase the amount of output.").Short('v').Counter()
	workers = app.Flag("workers", "Number of line batches processed in parallel. 0 uses every CPU, 1 runs serially.").Default("0").Int()

	map2bedCmd = app.Command("map2bed", "Convert a PLINK MAP file into a UCSC BED file, e.g. for the online version of liftOver.")
	map2bedIn  = map2bedCmd.Arg("mapfile", "A PLINK MAP file. Optionally, may be a google storage URL (gs://).").Required().String()
	map2bedOut = map2bedCmd.Flag("output", "Directory to save the BED file to. Defaults to where the MAP file is.").Short('o').String()

	bed2mapCmd = app.Command("bed2map", "Convert a lifted UCSC BED file back into a PLINK MAP file.")
	bed2mapIn  = bed2mapCmd.Arg("bedfile", "A BED file. Optionally, may be a google storage URL (gs://).").Required().String()
	bed2mapOut = bed2mapCmd.Flag("output", "Directory to save the MAP file to. Defaults to where the BED file is.").Short('o').String()

	liftCmd    = app.Command("liftover", "Lift a MAP file and drop unlifted SNPs from the matching PED and DAT files.")
	liftMap    = liftCmd.Arg("mapfile", "The plink MAP file to liftOver.").Required().String()
	liftChain  = liftCmd.Arg("chainfile", "The chain file to provide to liftOver.").Required().String()
	liftPed    = liftCmd.Flag("ped", "Optionally remove unlifted SNPs from this plink PED file. Its columns must follow the MAP file.").String()
	liftDat    = liftCmd.Flag("dat", "Optionally remove unlifted SNPs from a data file listing SNPs (e.g. for --exclude or --include in plink).").String()
	liftPrefix = liftCmd.Flag("prefix", "The prefix to give to the output files. Defaults to the MAP file name plus .lifted").String()
	liftTool   = liftCmd.Flag("liftover", "The location of the liftOver executable. Defaults to $LIFTOVER_PATH, then liftOver on your $PATH.").String()
	liftKeep   = liftCmd.Flag("keep-intermediate", "Keep the BED files handed to and produced by liftOver.").Bool()

	versionCmd = app.Command("version", "Print build information.")
)

func main() {
	info := compileinfo.Get()
	app.Version(info.VersionString())

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *verbose > 1 {
		compileinfo.PrintToStdErr()
	}

	var err error
	switch cmd {
	case versionCmd.FullCommand():
		log.Println(info)
	case map2bedCmd.FullCommand():
		err = convert(*map2bedIn, *map2bedOut, ".bed", plink.MapToBed)
	case bed2mapCmd.FullCommand():
		err = convert(*bed2mapIn, *bed2mapOut, ".map", plink.BedToMap)
	case liftCmd.FullCommand():
		err = lift()
	}

	if err != nil {
		log.Fatalln(err)
	}
}

func newClient(ctx context.Context, paths ...string) (*storage.Client, error) {
	if !plinkliftover.NeedsGoogleStorage(paths...) {
		return nil, nil
	}
	return storage.NewClient(ctx)
}

// outputPath places stem+ext in dir, or next to input when dir is empty.
func outputPath(input, dir, ext string) string {
	if dir == "" {
		if plinkliftover.IsGoogleStoragePath(input) {
			dir = "."
		} else {
			dir = filepath.Dir(input)
		}
	}
	return filepath.Join(dir, plinkliftover.Stem(input)+ext)
}

func convert(input, dir, ext string, conv func(context.Context, string, string, plink.Options) (plink.ConvertStats, error)) error {
	ctx := context.Background()

	client, err := newClient(ctx, input)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}

	if dir, err = plinkliftover.ExpandHome(dir); err != nil {
		return err
	}
	output := outputPath(input, dir, ext)

	stats, err := conv(ctx, input, output, plink.Options{
		Workers:  *workers,
		Observer: newConsole(os.Stderr, *verbose),
		Client:   client,
	})
	if err != nil {
		return err
	}

	log.Printf("Finished. Wrote %d records to %s. Skipped %d malformed lines.\n", stats.Records, output, stats.Skipped)
	return nil
}

func lift() error {
	ctx := context.Background()

	client, err := newClient(ctx, *liftMap, *liftChain, *liftPed, *liftDat)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}

	res, err := pipeline.Run(ctx, pipeline.Config{
		MapFile:          *liftMap,
		ChainFile:        *liftChain,
		PedFile:          *liftPed,
		DatFile:          *liftDat,
		Prefix:           *liftPrefix,
		Tool:             *liftTool,
		KeepIntermediate: *liftKeep,
		Workers:          *workers,
		Observer:         newConsole(os.Stderr, *verbose),
		Client:           client,
	})
	if res != nil {
		summarize(res)
	}
	return err
}

func summarize(res *pipeline.Result) {
	log.Printf("MAP records: %d (%d malformed lines skipped). Lifted: %d. Unlifted: %d\n",
		res.Map.Records, res.Map.Skipped, res.Lifted, res.Unlifted)
	if res.Dat != nil {
		log.Printf("DAT: kept %d of %d markers, dropped %d malformed marker lines\n",
			res.Dat.Kept, res.Dat.Markers, res.Dat.Malformed)
	}
	if res.Ped != nil {
		log.Printf("PED: wrote %d rows, kept %d and dropped %d genotype pairs per row\n",
			res.Ped.Rows, res.Ped.PairsKept, res.Ped.PairsDropped)
	}
	for _, out := range res.Outputs {
		log.Println("Wrote", out)
	}
}
