// Command mclevel inspects and edits Alpha-format worlds.
//
// Usage:
//
//	mclevel [flags] create
//	mclevel [flags] fill <x> <y> <z> <w> <h> <l> <blockID> [blockData]
//	mclevel [flags] relight
//	mclevel [flags] save
//	mclevel [flags] info
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/OCharnyshevich/mclevel/internal/config"
	"github.com/OCharnyshevich/mclevel/pkg/level"
	"github.com/OCharnyshevich/mclevel/pkg/material"
)

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.StringVar(&cfg.WorldDir, "world", cfg.WorldDir, "world directory")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed for create (0 = random)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.StringVar(&cfg.Palette, "palette", cfg.Palette, "block palette: alpha or classic")
	flag.Parse()

	if *configPath != "" {
		fromFile, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		explicit := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, fromFile, explicit)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: mclevel [flags] create|fill|relight|save|info")
		os.Exit(2)
	}

	if err := run(cfg, log, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Error("command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func palette(name string) *material.Table {
	if name == "classic" {
		return material.Classic()
	}
	return material.Alpha()
}

func run(cfg *config.Config, log *slog.Logger, command string, args []string) error {
	if command == "create" {
		_, err := level.Create(cfg.WorldDir, cfg.Seed, log)
		return err
	}

	w, err := level.Open(cfg.WorldDir, log)
	if err != nil {
		return err
	}
	w.UseMaterials(palette(cfg.Palette))

	switch command {
	case "fill":
		return fill(w, args)

	case "relight":
		if err := w.GenerateLights(nil); err != nil {
			return err
		}
		_, err := w.SaveInPlace()
		return err

	case "save":
		dirty, err := w.SaveInPlace()
		if err != nil {
			return err
		}
		fmt.Printf("saved %d dirty chunks\n", dirty)
		return nil

	case "info":
		sx, sy, sz := w.SpawnPosition()
		fmt.Printf("world: %s\n", w.Dir())
		fmt.Printf("chunks: %d\n", w.PresentChunkCount())
		fmt.Printf("spawn: %d %d %d\n", sx, sy, sz)
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func fill(w *level.World, args []string) error {
	if len(args) < 7 || len(args) > 8 {
		return fmt.Errorf("usage: fill <x> <y> <z> <w> <h> <l> <blockID> [blockData]")
	}
	vals := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("bad argument %q: %w", a, err)
		}
		vals[i] = v
	}
	box := level.NewBoundingBox(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
	blockData := 0
	if len(vals) == 8 {
		blockData = vals[7]
	}

	if err := w.CreateChunksInRange(box); err != nil {
		return err
	}
	if err := w.FillBlocks(box, byte(vals[6]), byte(blockData)); err != nil {
		return err
	}
	if err := w.GenerateLights(nil); err != nil {
		return err
	}
	_, err := w.SaveInPlace()
	return err
}
