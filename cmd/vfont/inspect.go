package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/font"
	"github.com/arloliu/voicefont/section"
	"github.com/arloliu/voicefont/table"
	"github.com/arloliu/voicefont/wave"
)

type headerJSON struct {
	Tag             string `json:"tag"`
	FormatGUID      string `json:"format_guid"`
	PayloadSize     uint32 `json:"payload_size"`
	Version         uint32 `json:"version"`
	Build           uint32 `json:"build"`
	LangID          uint16 `json:"lang_id"`
	ShortPause      uint16 `json:"short_pause"`
	FixedPoint      uint32 `json:"fixed_point"`
	SamplesPerSec   uint32 `json:"samples_per_sec"`
	BitsPerSample   uint32 `json:"bits_per_sample"`
	SamplesPerFrame uint32 `json:"samples_per_frame"`
	StateCount      uint32 `json:"state_count"`
}

type sectionJSON struct {
	Slot   int    `json:"slot"`
	Name   string `json:"name"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

type tableJSON struct {
	Key       []int32 `json:"key"`
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	RawFloats bool    `json:"raw_floats"`
	Bits      int     `json:"bits,omitempty"`
	Scale     float32 `json:"scale,omitempty"`
	Offset    float32 `json:"offset,omitempty"`
	RowMap    bool    `json:"row_map"`
	ColumnMap bool    `json:"column_map"`
}

type sentenceJSON struct {
	ID         string `json:"id"`
	FirstFrame uint32 `json:"first_frame"`
	FrameCount uint32 `json:"frame_count"`
}

type inspectJSON struct {
	Path        string         `json:"path"`
	Header      headerJSON     `json:"header"`
	Sections    []sectionJSON  `json:"sections,omitempty"`
	Questions   int            `json:"questions,omitempty"`
	Strings     int            `json:"strings,omitempty"`
	KeyLength   int            `json:"key_length,omitempty"`
	Tables      []tableJSON    `json:"tables,omitempty"`
	Frames      int            `json:"frames,omitempty"`
	FrameBytes  int            `json:"frame_bytes,omitempty"`
	Sentences   []sentenceJSON `json:"sentences,omitempty"`
	TotalFrames uint64         `json:"total_frames,omitempty"`
}

func inspectCmd() *cli.Command {
	var (
		path      string
		asJSON    bool
		sentLimit int64
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Dump the structure of a voice-font artifact",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "artifact path (font, container, wave stream or index)",
				Destination: &path,
				Required:    true,
			},
			&cli.BoolFlag{Name: "json", Usage: "emit JSON instead of text", Destination: &asJSON},
			&cli.Int64Flag{
				Name:        "sentences-limit",
				Usage:       "limit sentence listing in text output (0 = no limit)",
				Value:       20,
				Destination: &sentLimit,
			},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx
			_ = cmd

			if err := setupLogger(); err != nil {
				return err
			}

			return inspect(path, asJSON, int(sentLimit))
		},
	}
}

func inspect(path string, asJSON bool, sentLimit int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	engine := endian.GetLittleEndianEngine()
	header, err := section.ParseFontHeader(data, engine)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	info := &inspectJSON{Path: path, Header: headerInfo(header)}

	switch header.Tag {
	case section.TagFont:
		err = inspectFont(data, info)
	case section.TagDataTable:
		err = inspectContainer(data, info)
	case section.TagAcdData:
		err = inspectSingle(data, info)
	case section.TagWaveStream:
		err = inspectStream(data, info)
	case section.TagWaveIndex:
		err = inspectIndex(data, info)
	default:
		err = fmt.Errorf("unrecognized artifact tag %q", header.Tag)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if asJSON {
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		return nil
	}

	printInfo(info, sentLimit)

	return nil
}

func headerInfo(h section.FontHeader) headerJSON {
	return headerJSON{
		Tag:             h.Tag.String(),
		FormatGUID:      h.FormatID.String(),
		PayloadSize:     h.Size,
		Version:         h.Version,
		Build:           h.Build,
		LangID:          h.LangID,
		ShortPause:      h.ShortPause,
		FixedPoint:      h.FixedPoint,
		SamplesPerSec:   h.SamplesPerSec,
		BitsPerSample:   h.BitsPerSample,
		SamplesPerFrame: h.SamplesPerFrame,
		StateCount:      h.StateCount,
	}
}

var slotNames = map[int]string{
	section.SlotQuestions:  "questions",
	section.SlotModel:      "model",
	section.SlotStringPool: "strings",
	section.SlotCodebook:   "codebook",
}

func slotName(slot int) string {
	if name, ok := slotNames[slot]; ok {
		return name
	}

	return "reserved"
}

func inspectFont(data []byte, info *inspectJSON) error {
	f, err := font.Parse(data)
	if err != nil {
		return err
	}

	for slot, r := range f.Header.Sections {
		if r.Size == 0 {
			continue
		}
		info.Sections = append(info.Sections, sectionJSON{
			Slot:   slot,
			Name:   slotName(slot),
			Offset: r.Offset,
			Size:   r.Size,
		})
	}

	if f.Questions != nil {
		info.Questions = f.Questions.Count()
	}
	if f.Strings != nil {
		info.Strings = f.Strings.Count()
	}
	if f.Model != nil {
		info.KeyLength = f.Model.KeyLength
		info.Tables = tableInfos(f.Model)
	}

	return nil
}

func inspectContainer(data []byte, info *inspectJSON) error {
	f, err := table.Parse(data)
	if err != nil {
		return err
	}

	info.KeyLength = f.KeyLength
	info.Tables = tableInfos(f)

	return nil
}

func inspectSingle(data []byte, info *inspectJSON) error {
	sf, err := table.ParseSingle(data)
	if err != nil {
		return err
	}

	info.Tables = []tableJSON{tableInfo(sf.Table, sf.Setting)}

	return nil
}

func inspectStream(data []byte, info *inspectJSON) error {
	s, err := wave.ParseStream(data)
	if err != nil {
		return err
	}

	info.Frames = s.FrameCount()
	info.FrameBytes = s.BytesPerFrame()

	return nil
}

func inspectIndex(data []byte, info *inspectJSON) error {
	x, err := wave.ParseIndex(data)
	if err != nil {
		return err
	}

	info.TotalFrames = x.TotalFrames()
	for _, e := range x.Entries {
		info.Sentences = append(info.Sentences, sentenceJSON{
			ID:         e.ID,
			FirstFrame: e.FirstFrame,
			FrameCount: e.FrameCount,
		})
	}

	return nil
}

func tableInfos(f *table.File) []tableJSON {
	infos := make([]tableJSON, 0, len(f.Tables))
	for i, t := range f.Tables {
		infos = append(infos, tableInfo(t, f.Settings[i]))
	}

	return infos
}

func tableInfo(t *table.Table, s table.Setting) tableJSON {
	info := tableJSON{
		Key:       t.Key,
		Rows:      t.Rows,
		Cols:      t.Cols,
		RawFloats: s.RawFloats,
		RowMap:    s.RowMap,
		ColumnMap: s.ColumnMap,
	}
	if !s.RawFloats {
		info.Bits = s.Bits
		info.Scale = s.Scale
		info.Offset = s.Offset
	}

	return info
}

func printInfo(info *inspectJSON, sentLimit int) {
	h := info.Header
	fmt.Printf("File: %s\n", info.Path)
	fmt.Printf("%s v%d | build=%d | lang=%d | payload=%d bytes\n",
		h.Tag, h.Version, h.Build, h.LangID, h.PayloadSize)
	fmt.Printf("format=%s | audio=%d Hz / %d bit / %d samples per frame | states=%d\n",
		h.FormatGUID, h.SamplesPerSec, h.BitsPerSample, h.SamplesPerFrame, h.StateCount)

	if len(info.Sections) > 0 {
		fmt.Println("Sections:")
		for _, s := range info.Sections {
			fmt.Printf("  %d %-9s offset=%d size=%d\n", s.Slot, s.Name, s.Offset, s.Size)
		}
	}

	if info.Questions > 0 {
		fmt.Printf("Questions: %d\n", info.Questions)
	}
	if info.Strings > 0 {
		fmt.Printf("Strings: %d\n", info.Strings)
	}

	if len(info.Tables) > 0 {
		fmt.Printf("Tables (key length %d):\n", info.KeyLength)
		for _, t := range info.Tables {
			storage := "raw"
			if !t.RawFloats {
				storage = fmt.Sprintf("bits=%d scale=%g offset=%g", t.Bits, t.Scale, t.Offset)
			}
			fmt.Printf("  key=%v %dx%d %s rowmap=%t colmap=%t\n",
				t.Key, t.Rows, t.Cols, storage, t.RowMap, t.ColumnMap)
		}
	}

	if info.FrameBytes > 0 {
		fmt.Printf("Frames: %d (%d bytes each)\n", info.Frames, info.FrameBytes)
	}

	if info.Sentences != nil {
		fmt.Printf("Sentences: %d | total frames=%d\n", len(info.Sentences), info.TotalFrames)
		for i, s := range info.Sentences {
			if sentLimit > 0 && i == sentLimit {
				fmt.Printf("  ... %d more\n", len(info.Sentences)-i)

				break
			}
			fmt.Printf("  %-24s first=%d count=%d\n", s.ID, s.FirstFrame, s.FrameCount)
		}
	}
}
