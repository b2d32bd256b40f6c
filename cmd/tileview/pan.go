package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type panCmd struct {
	viewFlags
	outputDir string
	dx, dy    float64
	frames    int
}

func (c *panCmd) Name() string     { return "pan" }
func (c *panCmd) Synopsis() string { return "render a sequence of frames while scrolling" }
func (c *panCmd) Usage() string {
	return "tileview pan -o <dir> [-dx <px> -dy <px> -n <frames>] [render flags]\n"
}
func (c *panCmd) SetFlags(f *flag.FlagSet) {
	c.viewFlags.register(f)
	f.StringVar(&c.outputDir, "o", "", "Output directory")
	f.Float64Var(&c.dx, "dx", 32, "Drag distance per frame along x (previous minus current pointer position)")
	f.Float64Var(&c.dy, "dy", 0, "Drag distance per frame along y")
	f.IntVar(&c.frames, "n", 16, "Number of frames")
}

func (c *panCmd) pan(ctx context.Context) error {
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return err
	}
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()

	bar := progressbar.NewOptions(c.frames, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	defer bar.Finish()

	for i := range c.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			s.viewer.Scroll(c.dx, c.dy)
		}
		if err := s.frame(); err != nil {
			return err
		}
		if err := s.save(filepath.Join(c.outputDir, fmt.Sprintf("frame%04d.png", i))); err != nil {
			return err
		}
		bar.Add(1)
	}
	return nil
}

func (c *panCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.outputDir == "" || c.frames <= 0 {
		slog.Error("missing output directory or frame count")
		return subcommands.ExitUsageError
	}
	if err := c.pan(ctx); err != nil {
		slog.Error("pan failed", "error", err)
		return subcommands.ExitFailure
	}
	fmt.Println()
	return subcommands.ExitSuccess
}
