package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"
)

type renderCmd struct {
	viewFlags
	outputPath string
}

func (c *renderCmd) Name() string     { return "render" }
func (c *renderCmd) Synopsis() string { return "render one frame of a tileset to a PNG file" }
func (c *renderCmd) Usage() string {
	return "tileview render -o <path> [-i <path> -if <format> -z <zoom>] [-w <px> -h <px> -x <col> -y <row> -anchor <anchor> -debug]\n"
}
func (c *renderCmd) SetFlags(f *flag.FlagSet) {
	c.viewFlags.register(f)
	f.StringVar(&c.outputPath, "o", "", "Output PNG path")
}

func (c *renderCmd) render() error {
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.frame(); err != nil {
		return err
	}
	return s.save(c.outputPath)
}

func (c *renderCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.outputPath == "" {
		slog.Error("missing output path")
		return subcommands.ExitUsageError
	}
	if err := c.render(); err != nil {
		slog.Error("render failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
