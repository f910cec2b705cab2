package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/voicefont/builder"
)

func buildCmd() *cli.Command {
	var manifestPath string

	return &cli.Command{
		Name:  "build",
		Usage: "Compile a voice font from a TOML build manifest",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "manifest",
				Aliases:     []string{"f"},
				Usage:       "path to the build manifest",
				Destination: &manifestPath,
				Required:    true,
			},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx
			_ = cmd

			if err := setupLogger(); err != nil {
				return err
			}

			man, err := builder.LoadManifest(manifestPath)
			if err != nil {
				return err
			}

			b, err := builder.New(man, filepath.Dir(manifestPath))
			if err != nil {
				return err
			}

			result, err := b.Build()
			if err != nil {
				return err
			}

			fmt.Printf("built %s (%d tables, %d questions, %d strings)\n",
				result.FontPath, result.Tables, result.Questions, result.Strings)
			if result.CostPath != "" {
				fmt.Printf("built %s\n", result.CostPath)
			}

			return nil
		},
	}
}
