package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/formbind/internal/gen"
)

func run(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")

	var types []string
	for _, v := range cmd.StringSlice("type") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				types = append(types, name)
			}
		}
	}

	src, err := gen.Generate(gen.Config{
		Dir:           dir,
		Types:         types,
		Package:       cmd.String("pkg"),
		BindingImport: cmd.String("binding"),
	})
	if err != nil {
		return err
	}

	out := cmd.String("o")
	if out == "" {
		out = strings.ToLower(types[0]) + "_bind.go"
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	slog.Info("generated bind file", slog.String("path", out), slog.Int("types", len(types)))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "bindgen",
		Usage:  "Generate lenses, field tables and handle accessors for model structs",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Usage:    "Struct type names, comma separated; nested types must be listed too",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Package directory to scan",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "o",
				Usage: "Output file, relative to -dir (default <first type>_bind.go)",
			},
			&cli.StringFlag{
				Name:  "pkg",
				Usage: "Package name of the output (default: scanned package)",
			},
			&cli.StringFlag{
				Name:  "binding",
				Usage: "Import path of the binding package (default: derived from go.mod)",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("bindgen error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
