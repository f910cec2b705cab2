package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/voicefont/font"
	"github.com/arloliu/voicefont/format"
)

func archiveCmd() *cli.Command {
	var (
		inPath  string
		outPath string
		codec   string
	)

	return &cli.Command{
		Name:  "archive",
		Usage: "Compress a voice-font artifact into a distribution archive",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "artifact to archive",
				Destination: &inPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "archive path (default: input path + .vfa)",
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "codec",
				Usage:       "compression codec (none, zstd, s2, lz4)",
				Value:       "zstd",
				Destination: &codec,
			},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx
			_ = cmd

			if err := setupLogger(); err != nil {
				return err
			}

			ct, err := format.ParseCompressionType(codec)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = inPath + ".vfa"
			}

			stats, err := font.Export(inPath, outPath, font.WithArchiveCompression(ct))
			if err != nil {
				return err
			}

			fmt.Printf("archived %s (%s, %d -> %d bytes, ratio %.2f)\n",
				outPath, stats.Algorithm, stats.OriginalSize, stats.CompressedSize,
				stats.CompressionRatio())

			return nil
		},
	}
}

func extractCmd() *cli.Command {
	var (
		inPath  string
		outPath string
	)

	return &cli.Command{
		Name:  "extract",
		Usage: "Restore a voice-font artifact from a distribution archive",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "archive to extract",
				Destination: &inPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "artifact path (default: archive path without .vfa)",
				Destination: &outPath,
			},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx
			_ = cmd

			if err := setupLogger(); err != nil {
				return err
			}

			if outPath == "" {
				outPath = strings.TrimSuffix(inPath, ".vfa")
				if outPath == inPath {
					return fmt.Errorf("cannot derive output path from %s, use --out", inPath)
				}
			}

			stats, err := font.Import(inPath, outPath)
			if err != nil {
				return err
			}

			fmt.Printf("extracted %s (%s, %d -> %d bytes)\n",
				outPath, stats.Algorithm, stats.CompressedSize, stats.OriginalSize)

			return nil
		},
	}
}
