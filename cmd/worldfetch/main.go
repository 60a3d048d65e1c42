// Command worldfetch downloads a world directory from any go-getter
// source (git, http, s3, local path) and verifies it opens as an
// Alpha-format world.
package main

import (
	"flag"
	"log/slog"
	"os"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/mclevel/pkg/level"
)

func main() {
	var (
		src   = flag.String("src", "", "go-getter source url (e.g. git::https://host/repo.git//world)")
		out   = flag.String("o", "./world", "output dir path")
		force = flag.Bool("force", false, "remove the output dir first")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *src == "" {
		log.Error("source url required")
		os.Exit(2)
	}

	if *force {
		if err := os.RemoveAll(*out); err != nil {
			log.Error("clean output dir", "error", err)
			os.Exit(1)
		}
	}

	log.Info("downloading world", "src", *src, "dest", *out)
	if err := get.Get(*out, *src); err != nil {
		log.Error("download failed", "error", err)
		os.Exit(1)
	}

	w, err := level.Open(*out, log)
	if err != nil {
		log.Error("downloaded directory is not a readable world", "error", err)
		os.Exit(1)
	}
	log.Info("world verified", "chunks", w.PresentChunkCount())
}
