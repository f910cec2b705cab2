package format

import (
	"fmt"
	"strings"
)

type (
	DataKind        uint8
	CompressionType uint8
)

const (
	KindLPCC        DataKind = 0x1 // KindLPCC represents LPCC spectral coefficient tables.
	KindF0          DataKind = 0x2 // KindF0 represents fundamental frequency tables.
	KindGain        DataKind = 0x3 // KindGain represents frame gain tables.
	KindPower       DataKind = 0x4 // KindPower represents frame power tables.
	KindPitchMarker DataKind = 0x5 // KindPitchMarker represents pitch marker position tables.
	KindNNWeights   DataKind = 0x6 // KindNNWeights represents neural model weight tables.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (k DataKind) String() string {
	switch k {
	case KindLPCC:
		return "LPCC"
	case KindF0:
		return "F0"
	case KindGain:
		return "Gain"
	case KindPower:
		return "Power"
	case KindPitchMarker:
		return "PitchMarker"
	case KindNNWeights:
		return "NNWeights"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseDataKind maps a data-kind name, as spelled by DataKind.String, to its
// enum value. Matching is case-insensitive.
func ParseDataKind(s string) (DataKind, error) {
	switch strings.ToLower(s) {
	case "lpcc":
		return KindLPCC, nil
	case "f0":
		return KindF0, nil
	case "gain":
		return KindGain, nil
	case "power":
		return KindPower, nil
	case "pitchmarker":
		return KindPitchMarker, nil
	case "nnweights":
		return KindNNWeights, nil
	default:
		return 0, fmt.Errorf("unknown data kind %q", s)
	}
}

// ParseCompressionType maps a codec name, as spelled by
// CompressionType.String, to its enum value. Matching is case-insensitive.
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(s) {
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression codec %q", s)
	}
}
