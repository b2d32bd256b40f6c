// Command tileview renders tilesets through the tile grid viewer.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
	_ "github.com/mattn/go-sqlite3"
)

var verbose = flag.Bool("v", false, "Verbose logging")

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&seedCmd{}, "")
	subcommands.Register(&renderCmd{}, "")
	subcommands.Register(&panCmd{}, "")
	subcommands.ImportantFlag("v")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	os.Exit(int(subcommands.Execute(context.Background())))
}
