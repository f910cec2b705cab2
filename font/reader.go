package font

import (
	"fmt"
	"os"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/section"
	"github.com/arloliu/voicefont/table"
)

type readConfig struct {
	engine endian.EndianEngine
	strict bool
	decode bool
}

func newReadConfig() *readConfig {
	return &readConfig{engine: endian.GetLittleEndianEngine()}
}

// ReadOption represents a functional option for configuring a font read.
type ReadOption = options.Option[*readConfig]

// WithStrict requires the header size field to equal the actual payload
// length and forwards strict mode to the embedded model container parse.
func WithStrict() ReadOption {
	return options.NoError(func(c *readConfig) {
		c.strict = true
	})
}

// WithDecode materializes every model table's float32 matrix during the read.
func WithDecode() ReadOption {
	return options.NoError(func(c *readConfig) {
		c.decode = true
	})
}

// Font is a decoded voice-font artifact. Absent sections leave their field
// nil.
type Font struct {
	// Header is the artifact font header.
	Header section.FontHeader
	// Questions is the question/schema section.
	Questions *QuestionSet
	// Model is the model section's data-table container.
	Model *table.File
	// Strings is the string pool section.
	Strings *StringPool
}

// StringID returns the pool index of s in the font's string pool.
// The boolean reports whether the font has a pool containing s.
func (f *Font) StringID(s string) (uint32, bool) {
	if f.Strings == nil {
		return 0, false
	}

	return f.Strings.Lookup(s)
}

// Open reads a "VFNT" voice-font artifact from disk.
//
// The file is read in a single pass and the handle released before parsing.
//
// Parameters:
//   - path: Font artifact path
//   - opts: Optional read behavior (WithStrict, WithDecode)
//
// Returns:
//   - *Font: Decoded font
//   - error: I/O errors or malformed-data errors
func Open(path string, opts ...ReadOption) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse decodes a complete font artifact from memory.
func Parse(data []byte, opts ...ReadOption) (*Font, error) {
	cfg := newReadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	header, err := section.ParseFontHeader(data, cfg.engine)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(section.TagFont); err != nil {
		return nil, err
	}
	if err := header.ValidateSections(); err != nil {
		return nil, err
	}

	payload := data[section.HeaderSize:]
	if cfg.strict && len(payload) != int(header.Size) {
		return nil, fmt.Errorf("%w: header declares %d payload bytes, file has %d",
			errs.ErrSizeMismatch, header.Size, len(payload))
	}
	if len(payload) > int(header.Size) {
		payload = payload[:header.Size]
	}

	f := &Font{Header: header}

	for slot, r := range header.Sections {
		if r.Size == 0 {
			continue
		}

		// Ranges were validated against the declared size; a file shorter
		// than declared can still cut a section off.
		if uint64(r.End()) > uint64(len(payload)) {
			return nil, fmt.Errorf("%w: section %d spans %d-%d, payload has %d bytes",
				errs.ErrTruncatedData, slot, r.Offset, r.End(), len(payload))
		}

		body := payload[r.Offset:r.End()]

		switch slot {
		case section.SlotQuestions:
			f.Questions, err = ParseQuestionSet(body, cfg.engine)
			if err != nil {
				return nil, fmt.Errorf("question section: %w", err)
			}
		case section.SlotModel:
			f.Model, err = table.ParsePayload(body, cfg.modelOptions()...)
			if err != nil {
				return nil, fmt.Errorf("model section: %w", err)
			}
		case section.SlotStringPool:
			f.Strings, err = ParseStringPool(body, cfg.engine)
			if err != nil {
				return nil, fmt.Errorf("string pool section: %w", err)
			}
		default:
			// Codebook and reserved slots carry no structure this package
			// decodes; their ranges were bounds-checked above.
		}
	}

	return f, nil
}

// modelOptions translates the font read flags into table read options for the
// embedded model container.
func (c *readConfig) modelOptions() []table.ReadOption {
	var opts []table.ReadOption
	if c.strict {
		opts = append(opts, table.WithStrict())
	}
	if c.decode {
		opts = append(opts, table.WithDecode())
	}

	return opts
}
