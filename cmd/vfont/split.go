package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/voicefont/format"
	"github.com/arloliu/voicefont/postedit"
	"github.com/arloliu/voicefont/wave"
)

func splitCmd() *cli.Command {
	var (
		streamPath string
		indexPath  string
		outDir     string
		baseName   string
		counts     string
		auxSpecs   []string
		noFill     bool
	)

	return &cli.Command{
		Name:  "split",
		Usage: "Split an indexed waveform stream into block-aligned segments",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "stream",
				Usage:       "waveform stream artifact (.vfwv)",
				Destination: &streamPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "index",
				Usage:       "sentence index artifact (.vfwi)",
				Destination: &indexPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory",
				Value:       ".",
				Destination: &outDir,
			},
			&cli.StringFlag{
				Name:        "base",
				Usage:       "segment file base name (default: stream file name)",
				Destination: &baseName,
			},
			&cli.StringFlag{
				Name:        "counts",
				Usage:       "cumulative per-segment sentence counts, comma separated (e.g. 120,260,400)",
				Destination: &counts,
				Required:    true,
			},
			&cli.StringSliceFlag{
				Name:        "aux",
				Usage:       "auxiliary acoustic container to update, as kind=path (repeatable)",
				Destination: &auxSpecs,
			},
			&cli.BoolFlag{
				Name:        "no-fill",
				Usage:       "report fill frames without writing the zero padding",
				Destination: &noFill,
			},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx
			_ = cmd

			if err := setupLogger(); err != nil {
				return err
			}

			return split(streamPath, indexPath, outDir, baseName, counts, auxSpecs, noFill)
		},
	}
}

func split(streamPath, indexPath, outDir, baseName, counts string, auxSpecs []string, noFill bool) error {
	bounds, err := parseCounts(counts)
	if err != nil {
		return err
	}

	stream, err := wave.ReadStream(streamPath)
	if err != nil {
		return err
	}
	index, err := wave.ReadIndex(indexPath)
	if err != nil {
		return err
	}

	var spOpts []postedit.SplitterOption
	if noFill {
		spOpts = append(spOpts, postedit.WithoutFill())
	}

	sp, err := postedit.NewSplitter(stream, index, bounds, spOpts...)
	if err != nil {
		return err
	}

	edOpts := make([]postedit.EditorOption, 0, len(auxSpecs))
	for _, spec := range auxSpecs {
		kind, path, err := parseAuxSpec(spec)
		if err != nil {
			return err
		}
		edOpts = append(edOpts, postedit.WithAuxiliary(kind, path))
	}

	ed, err := postedit.NewEditor(sp, edOpts...)
	if err != nil {
		return err
	}

	if baseName == "" {
		baseName = strings.TrimSuffix(filepath.Base(streamPath), filepath.Ext(streamPath))
	}

	result, err := ed.Run(outDir, baseName)
	if err != nil {
		return err
	}

	// The padded global index reflects the post-split frame numbering.
	indexOut := filepath.Join(outDir, baseName+".vfwi")
	if err := result.Index.WriteFile(indexOut); err != nil {
		return err
	}

	fmt.Printf("wrote %d segments (%d fill frames) and %s\n",
		len(result.Segments), result.TotalFillFrames, indexOut)

	return nil
}

// parseCounts parses the cumulative sentence counts flag.
func parseCounts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	bounds := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("counts: %w", err)
		}
		bounds = append(bounds, n)
	}

	return bounds, nil
}

// parseAuxSpec parses one kind=path auxiliary container flag.
func parseAuxSpec(spec string) (format.DataKind, string, error) {
	name, path, ok := strings.Cut(spec, "=")
	if !ok || path == "" {
		return 0, "", fmt.Errorf("aux %q: want kind=path", spec)
	}

	kind, err := format.ParseDataKind(name)
	if err != nil {
		return 0, "", fmt.Errorf("aux %q: %w", spec, err)
	}

	return kind, path, nil
}
