package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/voicefont/font"
	"github.com/arloliu/voicefont/format"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/section"
	"github.com/arloliu/voicefont/table"
)

// State is the shared state of one build run. Each field is one stage's
// typed output and a later stage's input.
type State struct {
	// Questions is the parsed question schema, nil when the manifest names
	// no question file.
	Questions *font.QuestionSet
	// Pool holds the interned schema strings, nil until the strings stage
	// runs over a non-empty schema.
	Pool *font.StringPool
	// ModelPath is the scratch acoustic container the assembly stage embeds.
	// The builder removes it when the run ends.
	ModelPath string
	// ModelTables is the number of acoustic tables compiled.
	ModelTables int
	// CostPath is the written concatenation-cost container, empty when the
	// manifest declares no cost tables.
	CostPath string
}

// Result reports what a build produced.
type Result struct {
	FontPath  string
	CostPath  string // empty when no cost tables were declared
	Tables    int    // acoustic tables in the model section
	Questions int
	Strings   int
}

// Builder runs the build pipeline described by a manifest.
//
// All stages are constructed before any runs, so a manifest error surfaces
// before the build writes a single file.
type Builder struct {
	man    *Manifest
	dir    string
	header section.FontHeader
	logger logrus.FieldLogger
	reg    *Registry
}

// BuildOption represents a functional option for configuring a Builder.
type BuildOption = options.Option[*Builder]

// WithLogger routes build progress to the given logger instead of the
// logrus standard logger.
func WithLogger(logger logrus.FieldLogger) BuildOption {
	return options.NoError(func(b *Builder) {
		b.logger = logger
	})
}

// WithRegistry runs the build through a custom stage registry.
func WithRegistry(reg *Registry) BuildOption {
	return options.NoError(func(b *Builder) {
		b.reg = reg
	})
}

// New creates a builder for the manifest. Relative manifest paths resolve
// against dir. The font identity (format GUID) is validated here.
func New(man *Manifest, dir string, opts ...BuildOption) (*Builder, error) {
	header, err := man.Header()
	if err != nil {
		return nil, err
	}

	b := &Builder{
		man:    man,
		dir:    dir,
		header: header,
		logger: logrus.StandardLogger(),
		reg:    DefaultRegistry(),
	}

	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

// Build constructs every registered stage, runs them in registration order
// and reports the artifacts written.
func (b *Builder) Build() (*Result, error) {
	stages := make([]Stage, 0, len(b.reg.order))
	for _, name := range b.reg.order {
		stage, err := b.reg.factories[name](b)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", name, err)
		}
		if stage == nil {
			b.logger.WithField("stage", name).Debug("stage has no inputs, skipped")
			continue
		}

		stages = append(stages, stage)
	}

	st := &State{}
	defer func() {
		if st.ModelPath != "" {
			_ = os.Remove(st.ModelPath)
		}
	}()

	for _, stage := range stages {
		if err := stage.Run(st); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	res := &Result{
		FontPath: b.resolve(b.man.Output.Font),
		CostPath: st.CostPath,
		Tables:   st.ModelTables,
	}
	if st.Questions != nil {
		res.Questions = st.Questions.Count()
	}
	if st.Pool != nil {
		res.Strings = st.Pool.Count()
	}

	b.logger.WithFields(logrus.Fields{
		"font":      res.FontPath,
		"tables":    res.Tables,
		"questions": res.Questions,
		"strings":   res.Strings,
	}).Info("voice font build complete")

	return res, nil
}

// resolve joins a manifest path with the builder's base directory.
func (b *Builder) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(b.dir, path)
}

// tableSetting validates a manifest quantization block and converts it into
// the table setting record. Bits zero means raw float32 storage.
func tableSetting(bits int, scale, offset float32, rowMap, colMap bool) (table.Setting, error) {
	if bits == 0 {
		return table.RawSetting(rowMap, colMap), nil
	}

	s := table.Setting{Bits: bits, Scale: scale, Offset: offset, RowMap: rowMap, ColumnMap: colMap}
	if err := s.Params().Validate(); err != nil {
		return table.Setting{}, err
	}

	return s, nil
}

// questionStage parses the textual question schema into the build state.
type questionStage struct {
	path   string
	logger logrus.FieldLogger
}

func newQuestionStage(b *Builder) (Stage, error) {
	if b.man.Questions.File == "" {
		return nil, nil
	}

	return &questionStage{path: b.resolve(b.man.Questions.File), logger: b.logger}, nil
}

func (s *questionStage) Name() string { return StageQuestions }

func (s *questionStage) Run(st *State) error {
	qs, err := ReadQuestionsFile(s.path)
	if err != nil {
		return err
	}

	st.Questions = qs
	s.logger.WithFields(logrus.Fields{
		"stage":     StageQuestions,
		"questions": qs.Count(),
	}).Info("parsed question schema")

	return nil
}

// acousticInput is one validated feature matrix entry.
type acousticInput struct {
	kind    format.DataKind
	file    string
	rowMap  string
	colMap  string
	setting table.Setting
}

// acousticStage compiles the feature matrices into a scratch data-table
// container keyed by data kind, consumed by the assembly stage.
type acousticStage struct {
	header section.FontHeader
	out    string
	inputs []acousticInput
	logger logrus.FieldLogger
}

func newAcousticStage(b *Builder) (Stage, error) {
	if len(b.man.Data) == 0 {
		return nil, nil
	}

	inputs := make([]acousticInput, 0, len(b.man.Data))
	for i, d := range b.man.Data {
		kind, err := format.ParseDataKind(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
		if d.File == "" {
			return nil, fmt.Errorf("data[%d] %s: feature file missing", i, kind)
		}

		setting, err := tableSetting(d.Bits, d.Scale, d.Offset, d.RowMapFile != "", d.ColumnMapFile != "")
		if err != nil {
			return nil, fmt.Errorf("data[%d] %s: %w", i, kind, err)
		}

		inputs = append(inputs, acousticInput{
			kind:    kind,
			file:    b.resolve(d.File),
			rowMap:  b.resolve(d.RowMapFile),
			colMap:  b.resolve(d.ColumnMapFile),
			setting: setting,
		})
	}

	return &acousticStage{
		header: b.header,
		out:    b.resolve(b.man.Output.Font) + ".model",
		inputs: inputs,
		logger: b.logger,
	}, nil
}

func (s *acousticStage) Name() string { return StageAcoustic }

func (s *acousticStage) Run(st *State) error {
	w, err := table.NewWriter(s.out, 1, table.WithHeader(s.header))
	if err != nil {
		return err
	}

	for _, in := range s.inputs {
		if err := s.compile(w, in); err != nil {
			_ = w.Close()
			_ = os.Remove(s.out)

			return fmt.Errorf("%s: %w", in.kind, err)
		}
	}

	if err := w.Close(); err != nil {
		_ = os.Remove(s.out)

		return err
	}

	st.ModelPath = s.out
	st.ModelTables = len(s.inputs)

	return nil
}

func (s *acousticStage) compile(w *table.Writer, in acousticInput) error {
	rows, err := ReadRowsFile(in.file)
	if err != nil {
		return err
	}

	t, err := TableFromRows(table.Key{int32(in.kind)}, rows)
	if err != nil {
		return fmt.Errorf("%s: %w", in.file, err)
	}

	if in.rowMap != "" {
		if t.RowMap, err = ReadIndexMapFile(in.rowMap); err != nil {
			return err
		}
	}
	if in.colMap != "" {
		if t.ColumnMap, err = ReadIndexMapFile(in.colMap); err != nil {
			return err
		}
	}

	if err := w.Add(t, in.setting); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"stage": StageAcoustic,
		"kind":  in.kind.String(),
		"rows":  t.Rows,
		"cols":  t.Cols,
	}).Info("compiled acoustic table")

	return nil
}

// costInput is one validated concatenation-cost entry.
type costInput struct {
	key     table.Key
	file    string
	setting table.Setting
}

// costStage compiles the concatenation-cost matrices into their own
// container, keyed by (left, right) unit group.
type costStage struct {
	header section.FontHeader
	out    string
	inputs []costInput
	logger logrus.FieldLogger
}

func newCostStage(b *Builder) (Stage, error) {
	if len(b.man.Cost) == 0 {
		return nil, nil
	}
	if b.man.Output.Cost == "" {
		return nil, fmt.Errorf("manifest declares cost tables but no output.cost path")
	}

	inputs := make([]costInput, 0, len(b.man.Cost))
	for i, c := range b.man.Cost {
		if c.File == "" {
			return nil, fmt.Errorf("cost[%d] (%d,%d): cost file missing", i, c.Left, c.Right)
		}

		setting, err := tableSetting(c.Bits, c.Scale, c.Offset, false, false)
		if err != nil {
			return nil, fmt.Errorf("cost[%d] (%d,%d): %w", i, c.Left, c.Right, err)
		}

		inputs = append(inputs, costInput{
			key:     table.Key{c.Left, c.Right},
			file:    b.resolve(c.File),
			setting: setting,
		})
	}

	return &costStage{
		header: b.header,
		out:    b.resolve(b.man.Output.Cost),
		inputs: inputs,
		logger: b.logger,
	}, nil
}

func (s *costStage) Name() string { return StageCost }

func (s *costStage) Run(st *State) error {
	w, err := table.NewWriter(s.out, 2, table.WithHeader(s.header))
	if err != nil {
		return err
	}

	for _, in := range s.inputs {
		if err := s.compile(w, in); err != nil {
			_ = w.Close()
			_ = os.Remove(s.out)

			return fmt.Errorf("cost %s: %w", in.key, err)
		}
	}

	if err := w.Close(); err != nil {
		_ = os.Remove(s.out)

		return err
	}

	st.CostPath = s.out
	s.logger.WithFields(logrus.Fields{
		"stage":  StageCost,
		"tables": len(s.inputs),
		"path":   s.out,
	}).Info("wrote concatenation cost container")

	return nil
}

func (s *costStage) compile(w *table.Writer, in costInput) error {
	rows, err := ReadRowsFile(in.file)
	if err != nil {
		return err
	}

	t, err := TableFromRows(in.key, rows)
	if err != nil {
		return fmt.Errorf("%s: %w", in.file, err)
	}

	return w.Add(t, in.setting)
}

// stringStage interns the schema strings: every question name and operand in
// schema order, so runtime lookups by name resolve to stable pool indices.
type stringStage struct {
	logger logrus.FieldLogger
}

func newStringStage(b *Builder) (Stage, error) {
	return &stringStage{logger: b.logger}, nil
}

func (s *stringStage) Name() string { return StageStrings }

func (s *stringStage) Run(st *State) error {
	if st.Questions == nil || st.Questions.Count() == 0 {
		return nil
	}

	pool := font.NewStringPool()
	for _, q := range st.Questions.Questions {
		if _, err := pool.Add(q.Name); err != nil {
			return fmt.Errorf("question %q: %w", q.Name, err)
		}
		for _, operand := range q.Operands {
			if _, err := pool.Add(operand); err != nil {
				return fmt.Errorf("question %q operand: %w", q.Name, err)
			}
		}
	}

	st.Pool = pool
	s.logger.WithFields(logrus.Fields{
		"stage":   StageStrings,
		"strings": pool.Count(),
	}).Info("interned schema strings")

	return nil
}

// assembleStage writes the final font artifact from the staged sections.
type assembleStage struct {
	header section.FontHeader
	out    string
	logger logrus.FieldLogger
}

func newAssembleStage(b *Builder) (Stage, error) {
	if b.man.Output.Font == "" {
		return nil, fmt.Errorf("manifest: output.font path missing")
	}

	return &assembleStage{header: b.header, out: b.resolve(b.man.Output.Font), logger: b.logger}, nil
}

func (s *assembleStage) Name() string { return StageAssemble }

func (s *assembleStage) Run(st *State) error {
	w, err := font.NewWriter(s.out, font.WithHeader(s.header))
	if err != nil {
		return err
	}

	if st.Questions != nil {
		if err := w.SetQuestions(st.Questions); err != nil {
			return err
		}
	}
	if st.ModelPath != "" {
		if err := w.SetModelFromContainer(st.ModelPath); err != nil {
			return err
		}
	}
	if st.Pool != nil && st.Pool.Count() > 0 {
		if err := w.SetStringPool(st.Pool); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"stage": StageAssemble,
		"path":  s.out,
	}).Info("assembled voice font")

	return nil
}
