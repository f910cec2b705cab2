package table

import (
	"fmt"
	"os"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/section"
)

// readConfig holds the reader behavior flags shared by container and
// single-table reads.
type readConfig struct {
	engine endian.EndianEngine
	strict bool
	decode bool
}

func newReadConfig() *readConfig {
	return &readConfig{engine: endian.GetLittleEndianEngine()}
}

// ReadOption represents a functional option for configuring a read.
type ReadOption = options.Option[*readConfig]

// WithStrict makes the reader report conditions the default mode tolerates
// for legacy compatibility: a header size field disagreeing with the file
// length, trailing bytes after a table body, and a truncated trailing table.
func WithStrict() ReadOption {
	return options.NoError(func(c *readConfig) {
		c.strict = true
	})
}

// WithDecode materializes every table's float32 matrix during the read.
// Without it tables stay in passthrough form: packed value bytes plus shape,
// which is sufficient for re-packing and structural edits.
func WithDecode() ReadOption {
	return options.NoError(func(c *readConfig) {
		c.decode = true
	})
}

// File is a decoded data-table container.
type File struct {
	// Header is the artifact font header. Zero when the container payload
	// was embedded in another artifact's section.
	Header section.FontHeader
	// KeyLength is the container's fixed key length.
	KeyLength int
	// Tables holds the decoded tables in index order.
	Tables []*Table
	// Settings holds each table's reconstructed setting, parallel to Tables.
	Settings []Setting

	byKey map[string]int
}

// Table looks up a table and its setting by key.
func (f *File) Table(key Key) (*Table, Setting, bool) {
	idx, ok := f.byKey[keyString(key)]
	if !ok {
		return nil, Setting{}, false
	}

	return f.Tables[idx], f.Settings[idx], true
}

// Keys returns the table keys in index order.
func (f *File) Keys() []Key {
	keys := make([]Key, len(f.Tables))
	for i, t := range f.Tables {
		keys[i] = t.Key
	}

	return keys
}

// ReadFile reads a "VFDT" container artifact from disk.
//
// The file is read in a single pass and the handle released before parsing;
// no partial re-reads occur afterwards.
//
// Parameters:
//   - path: Container artifact path
//   - opts: Optional read behavior (WithStrict, WithDecode)
//
// Returns:
//   - *File: Decoded container
//   - error: I/O errors, malformed-data errors, or in strict mode the
//     truncation and size-mismatch conditions the default mode tolerates
func ReadFile(path string, opts ...ReadOption) (*File, error) {
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

// Parse decodes a complete container artifact from memory.
func Parse(data []byte, opts ...ReadOption) (*File, error) {
	cfg := newReadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	header, err := section.ParseFontHeader(data, cfg.engine)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(section.TagDataTable); err != nil {
		return nil, err
	}

	payload, err := checkPayloadSize(data[section.HeaderSize:], header.Size, cfg)
	if err != nil {
		return nil, err
	}

	f, err := parsePayload(payload, cfg)
	if err != nil {
		return nil, err
	}
	f.Header = header

	return f, nil
}

// ParsePayload decodes a container payload that lacks the artifact font
// header, the form containers take when embedded in a font section.
func ParsePayload(data []byte, opts ...ReadOption) (*File, error) {
	cfg := newReadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return parsePayload(data, cfg)
}

// checkPayloadSize reconciles the header size field with the actual payload
// length. Strict mode demands equality. The default mode trims trailing
// bytes beyond the declared size (legacy padding) and passes a short payload
// through so that only the truncated trailing table is lost.
func checkPayloadSize(payload []byte, declared uint32, cfg *readConfig) ([]byte, error) {
	actual := len(payload)

	if cfg.strict && actual != int(declared) {
		return nil, fmt.Errorf("%w: header declares %d payload bytes, file has %d",
			errs.ErrSizeMismatch, declared, actual)
	}

	if actual > int(declared) {
		payload = payload[:declared]
	}

	return payload, nil
}

func parsePayload(data []byte, cfg *readConfig) (*File, error) {
	tableHeader, err := section.ParseTableHeader(data, cfg.engine)
	if err != nil {
		return nil, err
	}

	count := int(tableHeader.TableCount)
	keyLength := int(tableHeader.KeyLength)
	entrySize := section.IndexEntrySize(keyLength)

	indexEnd := uint64(section.TableHeaderSize) + uint64(count)*uint64(entrySize)
	if indexEnd > uint64(len(data)) {
		return nil, fmt.Errorf("%w: index of %d entries needs %d bytes, payload has %d",
			errs.ErrInvalidIndexEntry, count, indexEnd, len(data))
	}

	f := &File{
		KeyLength: keyLength,
		Tables:    make([]*Table, 0, count),
		Settings:  make([]Setting, 0, count),
		byKey:     make(map[string]int, count),
	}

	dataStart := int(indexEnd)
	pos := section.TableHeaderSize
	for i := range count {
		entry, err := section.ParseTableIndexEntry(data[pos:], keyLength, cfg.engine)
		if err != nil {
			return nil, err
		}
		pos += entrySize

		if entry.Offset < 0 || entry.Offset > entry.Offset+int64(entry.Size) {
			return nil, fmt.Errorf("%w: entry %d key %s offset %d size %d",
				errs.ErrInvalidIndexEntry, i, Key(entry.Key), entry.Offset, entry.Size)
		}

		start := int64(dataStart) + entry.Offset
		end := start + int64(entry.Size)
		if end > int64(len(data)) {
			if cfg.strict {
				return nil, fmt.Errorf("%w: entry %d key %s body spans %d-%d, payload has %d bytes",
					errs.ErrTruncatedData, i, Key(entry.Key), start, end, len(data))
			}
			// Tolerated: a truncated trailing table is dropped.
			continue
		}

		body := data[start:end]
		t, s, consumed, err := decodeBody(body, cfg.engine)
		if err != nil {
			return nil, fmt.Errorf("table %d key %s: %w", i, Key(entry.Key), err)
		}
		if cfg.strict && consumed != len(body) {
			return nil, fmt.Errorf("%w: table %d key %s has %d trailing bytes",
				errs.ErrInvalidTableBody, i, Key(entry.Key), len(body)-consumed)
		}

		t.Key = Key(entry.Key)

		if _, dup := f.byKey[keyString(t.Key)]; dup {
			return nil, fmt.Errorf("%w: index entry %d repeats key %s",
				errs.ErrInvalidIndexEntry, i, t.Key)
		}

		if cfg.decode {
			values, err := t.materialize(s, cfg.engine)
			if err != nil {
				return nil, fmt.Errorf("table %d key %s: %w", i, t.Key, err)
			}
			t.Values = values
		}

		f.byKey[keyString(t.Key)] = len(f.Tables)
		f.Tables = append(f.Tables, t)
		f.Settings = append(f.Settings, s)
	}

	return f, nil
}
