package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/mslc/internal/build"
	"github.com/gogpu/mslc/msl"
)

func (a *app) buildCmd() *cobra.Command {
	var (
		outDir  string
		targets []string
		stage   string
		jobs    int
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "build FILE...",
		Short: "Compile sources and write their artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("out-dir") {
				a.cfg.OutDir = outDir
			}
			if flags.Changed("target") {
				a.cfg.Targets = targets
			}
			if flags.Changed("jobs") {
				a.cfg.Jobs = jobs
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			paths, err := relativePaths(args)
			if err != nil {
				return err
			}
			fsys, err := build.OSFS(".")
			if err != nil {
				return err
			}
			b, err := build.New(fsys, build.Options{Config: a.cfg, Stage: stage, Logger: a.log})
			if err != nil {
				return err
			}

			reports, err := b.Build(cmd.Context(), paths)
			for _, rep := range reports {
				a.printReport(cmd, rep)
			}
			if !watch {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return b.Watch(ctx, ".", paths, func(rep build.Report) {
				a.printReport(cmd, rep)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&outDir, "out-dir", "o", "", "output directory (default: next to each source)")
	f.StringSliceVarP(&targets, "target", "t", nil, "artifacts to write: bc, md, glsl, hlsl")
	f.StringVar(&stage, "stage", "", "shader stage: vertex or pixel (default: from file name)")
	f.IntVarP(&jobs, "jobs", "j", 0, "parallel compilations (default: one per CPU)")
	f.BoolVarP(&watch, "watch", "w", false, "rebuild sources when they change")
	return cmd
}

func (a *app) printReport(cmd *cobra.Command, rep build.Report) {
	if rep.Err != nil {
		if errors.Is(rep.Err, context.Canceled) {
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", rep.Path, strings.TrimRight(msl.FormatWithContext(rep.Err, rep.Source), "\n"))
		return
	}
	for _, art := range rep.Artifacts {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", rep.Path, art.Path, art.Size)
	}
}

// relativePaths maps arguments onto the working directory root used by the
// build file system.
func relativePaths(args []string) ([]string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p := arg
		if filepath.IsAbs(p) {
			if p, err = filepath.Rel(wd, p); err != nil {
				return nil, err
			}
		}
		p = filepath.Clean(p)
		if p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s: outside the working directory", arg)
		}
		paths = append(paths, filepath.ToSlash(p))
	}
	return paths, nil
}
