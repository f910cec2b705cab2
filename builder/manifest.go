package builder

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/arloliu/voicefont/section"
)

// FontManifest holds the font identity written into every artifact header.
type FontManifest struct {
	// FormatGUID is the binary format revision, in canonical UUID form.
	FormatGUID string `toml:"format_guid"`
	Version    uint32 `toml:"version"`
	Build      uint32 `toml:"build"`
	LangID     uint16 `toml:"lang_id"`
	ShortPause uint16 `toml:"short_pause"`
	FixedPoint bool   `toml:"fixed_point"`
	StateCount uint32 `toml:"state_count"`
}

// AudioManifest holds the audio parameters of the voice recordings.
type AudioManifest struct {
	SamplesPerSec   uint32 `toml:"samples_per_sec"`
	BitsPerSample   uint32 `toml:"bits_per_sample"`
	SamplesPerFrame uint32 `toml:"samples_per_frame"`
}

// QuestionsManifest names the textual question schema file.
// An empty file name builds a font without a question section.
type QuestionsManifest struct {
	File string `toml:"file"`
}

// DataManifest describes one acoustic feature matrix to compile: the
// extractor output file, the data kind keying the table, and the storage
// setting. Bits zero stores raw float32 values; a non-zero width quantizes
// with the given scale and offset.
type DataManifest struct {
	Kind          string  `toml:"kind"`
	File          string  `toml:"file"`
	Bits          int     `toml:"bits"`
	Scale         float32 `toml:"scale"`
	Offset        float32 `toml:"offset"`
	RowMapFile    string  `toml:"row_map_file"`
	ColumnMapFile string  `toml:"column_map_file"`
}

// CostManifest describes one concatenation-cost matrix, keyed by the left
// and right unit group it scores.
type CostManifest struct {
	Left   int32   `toml:"left"`
	Right  int32   `toml:"right"`
	File   string  `toml:"file"`
	Bits   int     `toml:"bits"`
	Scale  float32 `toml:"scale"`
	Offset float32 `toml:"offset"`
}

// SegmentsManifest carries the sentence counts the post-process splitter
// cuts the waveform stream at. The builder itself does not consume it; the
// split command reads it from the same manifest.
type SegmentsManifest struct {
	SentenceCounts []int `toml:"sentence_counts"`
}

// OutputManifest names the artifacts a build writes. Cost may be empty when
// the manifest declares no cost tables.
type OutputManifest struct {
	Font string `toml:"font"`
	Cost string `toml:"cost"`
}

// Manifest is the root build manifest: font identity, audio parameters,
// input files and output artifact paths. Relative paths are resolved against
// the directory passed to New.
type Manifest struct {
	Font      FontManifest      `toml:"font"`
	Audio     AudioManifest     `toml:"audio"`
	Questions QuestionsManifest `toml:"questions"`
	Data      []DataManifest    `toml:"data"`
	Cost      []CostManifest    `toml:"cost"`
	Segments  SegmentsManifest  `toml:"segments"`
	Output    OutputManifest    `toml:"output"`
}

// ParseManifest decodes a TOML manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var man Manifest
	if err := toml.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return &man, nil
}

// LoadManifest reads and decodes a TOML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	man, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return man, nil
}

// Header builds the font header the manifest describes. The artifact tag,
// size field and section table stay under writer control.
func (m *Manifest) Header() (section.FontHeader, error) {
	h := section.FontHeader{
		Version:         m.Font.Version,
		Build:           m.Font.Build,
		LangID:          m.Font.LangID,
		ShortPause:      m.Font.ShortPause,
		StateCount:      m.Font.StateCount,
		SamplesPerSec:   m.Audio.SamplesPerSec,
		BitsPerSample:   m.Audio.BitsPerSample,
		SamplesPerFrame: m.Audio.SamplesPerFrame,
	}
	if h.Version == 0 {
		h.Version = section.FormatVersion
	}
	if m.Font.FixedPoint {
		h.FixedPoint = 1
	}

	if m.Font.FormatGUID != "" {
		id, err := uuid.Parse(m.Font.FormatGUID)
		if err != nil {
			return section.FontHeader{}, fmt.Errorf("font format_guid: %w", err)
		}
		h.FormatID = id
	}

	return h, nil
}
