// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	golog "log"
	"os"
	"path/filepath"

	"github.com/grailbio/amplicon/otu"
	"github.com/grailbio/amplicon/usearch"
	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"
	"v.io/x/lib/cmdline"
)

type clusterFlags struct {
	outputDir string
	readPath  string
	lenient   bool
	usearch   usearch.Opts
}

// outputs lists the files written by one pipeline run.
type outputs struct {
	renamed string
	usearch usearch.Outputs
	binary  string
}

func newCmdRoot() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "bio-otu-cluster",
		Short: "Cluster amplicon reads into OTUs with usearch and build a presence/absence matrix",
		Long: `
bio-otu-cluster normalizes the read headers of a FASTA file, clusters the reads
into OTUs with usearch, and converts the resulting OTU table into a
presence/absence matrix. All outputs are written to the output directory.`,
		LookPath: false,
	}
	flags := clusterFlags{usearch: usearch.DefaultOpts}
	for _, name := range []string{"o", "outputDir"} {
		cmd.Flags.StringVar(&flags.outputDir, name, "", "Location of the output directory. It must already exist and be writable. Required.")
	}
	for _, name := range []string{"r", "read"} {
		cmd.Flags.StringVar(&flags.readPath, name, "", "Location of the FASTA file containing the reads. May be gzip or bzip2 compressed. Required.")
	}
	cmd.Flags.Float64Var(&flags.usearch.PercentID, "perID", usearch.DefaultOpts.PercentID, "Percent identity threshold, in (0,1].")
	cmd.Flags.IntVar(&flags.usearch.Threads, "cpu", usearch.DefaultOpts.Threads, "Number of threads usearch may use.")
	cmd.Flags.BoolVar(&flags.usearch.Verbose, "verbose", false, "Print progress messages to stdout.")
	cmd.Flags.StringVar(&flags.usearch.Exec, "usearch", usearch.DefaultOpts.Exec, "Name or path of the usearch executable.")
	cmd.Flags.BoolVar(&flags.lenient, "lenient", false, `Accept duplicate read names and unrecognized headers.
Offending reads are logged and copied through unchanged.`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("bio-otu-cluster takes no positional arguments, but got %v", argv)
		}
		if flags.usearch.Verbose {
			golog.SetOutput(env.Stdout)
		}
		ctx := context.Background()
		if err := validate(&flags); err != nil {
			return err
		}
		if _, err := run(ctx, flags, usearch.ExecRunner{Stdout: env.Stdout, Stderr: env.Stderr}); err != nil {
			if status, ok := usearch.ExitStatus(err); ok {
				log.Error.Printf("%v", err)
				if status <= 0 {
					status = 1
				}
				return cmdline.ErrExitCode(status)
			}
			return err
		}
		return nil
	})
	return cmd
}

// validate checks the flags and the filesystem before any work is done, and
// makes all paths absolute.
func validate(flags *clusterFlags) error {
	if flags.outputDir == "" {
		return errors.E(errors.Invalid, "-o/-outputDir is required")
	}
	if flags.readPath == "" {
		return errors.E(errors.Invalid, "-r/-read is required")
	}
	if err := flags.usearch.Validate(); err != nil {
		return err
	}
	var err error
	if flags.outputDir, err = filepath.Abs(flags.outputDir); err != nil {
		return errors.E(err, "outputDir")
	}
	if flags.readPath, err = filepath.Abs(flags.readPath); err != nil {
		return errors.E(err, "read")
	}
	if err := checkWritableDir(flags.outputDir); err != nil {
		return err
	}
	if err := checkReadableFile(flags.readPath); err != nil {
		return err
	}
	exe, err := usearch.LookPath(flags.usearch.Exec)
	if err != nil {
		return err
	}
	flags.usearch.Exec = exe
	return nil
}

func checkWritableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.E(errors.NotExist, err, path, "is not a valid path")
	}
	if !info.IsDir() {
		return errors.E(errors.Invalid, path, "is not a directory")
	}
	if err := unix.Access(path, unix.W_OK|unix.X_OK); err != nil {
		return errors.E(errors.NotAllowed, err, path, "is not a writeable dir")
	}
	return nil
}

func checkReadableFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.E(errors.NotExist, err, path, "is not a valid file path")
	}
	if !info.Mode().IsRegular() {
		return errors.E(errors.Invalid, path, "is not a regular file")
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return errors.E(errors.NotAllowed, err, path, "is not a readable file")
	}
	return nil
}

// run executes the three pipeline stages in order. The flags must have been
// validated.
func run(ctx context.Context, flags clusterFlags, runner usearch.Runner) (outputs, error) {
	var out outputs
	renamed, stats, err := otu.Normalize(ctx, flags.readPath, otu.NormalizeOpts{
		OutputDir: flags.outputDir,
		Verbose:   flags.usearch.Verbose,
		Lenient:   flags.lenient,
	})
	if err != nil {
		return out, err
	}
	out.renamed = renamed
	if stats.Records == 0 {
		return out, errors.E(errors.Invalid, fmt.Sprintf("%s contains no reads", flags.readPath))
	}
	if out.usearch, err = usearch.Cluster(ctx, runner, renamed, flags.usearch); err != nil {
		return out, err
	}
	if out.binary, err = otu.Binarize(ctx, out.usearch.OTUTable, flags.usearch.Verbose); err != nil {
		return out, err
	}
	if flags.usearch.Verbose {
		log.Printf("done: %s", out.binary)
	}
	return out, nil
}

func main() {
	golog.SetFlags(golog.Ldate | golog.Ltime | golog.Lmicroseconds | golog.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newCmdRoot())
}
