package font

import (
	"fmt"
	"math"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/section"
)

// Question operators. The operator tells the runtime how a question's
// operands apply to the feature named by the question.
const (
	// OpEqual matches when the feature value equals the single operand.
	OpEqual uint16 = 0
	// OpIn matches when the feature value matches any operand pattern.
	OpIn uint16 = 1
	// OpLess matches when the numeric feature value is below the operand.
	OpLess uint16 = 2
	// OpGreater matches when the numeric feature value is above the operand.
	OpGreater uint16 = 3
)

// Question is one named feature question of the font's decision schema.
type Question struct {
	Name     string
	Operator uint16
	Operands []string
}

// QuestionSet is the question/schema section of a voice font: the ordered
// list of feature questions the voice's decision trees were trained against.
//
// On disk the section is
//
//	{count: u32}
//	count × {name: vstr16, operator: u16, operandCount: u16,
//	         operandCount × operand: vstr16}
//
// where vstr16 is a uint16-length-prefixed UTF-8 string.
type QuestionSet struct {
	Questions []Question
}

// NewQuestionSet creates an empty question set.
func NewQuestionSet() *QuestionSet {
	return &QuestionSet{}
}

// Add appends a question.
//
// Returns:
//   - error: errs.ErrStringTooLong if the name or an operand exceeds the
//     16-bit string length prefix, errs.ErrInvalidQuestionSet if the
//     operand count exceeds its 16-bit field
func (qs *QuestionSet) Add(name string, operator uint16, operands ...string) error {
	if err := section.CheckString16(name); err != nil {
		return fmt.Errorf("question %q: %w", name, err)
	}

	if len(operands) > math.MaxUint16 {
		return fmt.Errorf("%w: question %q has %d operands, limit %d",
			errs.ErrInvalidQuestionSet, name, len(operands), math.MaxUint16)
	}

	for _, operand := range operands {
		if err := section.CheckString16(operand); err != nil {
			return fmt.Errorf("question %q operand: %w", name, err)
		}
	}

	qs.Questions = append(qs.Questions, Question{
		Name:     name,
		Operator: operator,
		Operands: operands,
	})

	return nil
}

// Find returns the first question with the given name.
// The boolean reports whether such a question exists.
func (qs *QuestionSet) Find(name string) (Question, bool) {
	for _, q := range qs.Questions {
		if q.Name == name {
			return q, true
		}
	}

	return Question{}, false
}

// Count returns the number of questions.
func (qs *QuestionSet) Count() int {
	return len(qs.Questions)
}

// Size returns the encoded section size in bytes.
func (qs *QuestionSet) Size() int {
	size := 4
	for _, q := range qs.Questions {
		size += section.String16Size(q.Name) + 4
		for _, operand := range q.Operands {
			size += section.String16Size(operand)
		}
	}

	return size
}

// Bytes serializes the question set into its section form. Strings are
// validated by Add; questions appended directly to the Questions slice must
// respect the vstr16 limit themselves.
func (qs *QuestionSet) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 0, qs.Size())
	b = engine.AppendUint32(b, uint32(len(qs.Questions))) //nolint:gosec // question growth is u32-bounded

	for _, q := range qs.Questions {
		b = section.AppendString16(b, engine, q.Name)
		b = engine.AppendUint16(b, q.Operator)
		b = engine.AppendUint16(b, uint16(len(q.Operands))) //nolint:gosec // validated by Add
		for _, operand := range q.Operands {
			b = section.AppendString16(b, engine, operand)
		}
	}

	return b
}

// Parse decodes a question section, replacing the set's contents.
// The section must contain exactly the declared questions; the section range
// in the font header delimits it, so trailing bytes mean corruption.
func (qs *QuestionSet) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: need 4 count bytes, have %d", errs.ErrInvalidQuestionSet, len(data))
	}

	count := int(engine.Uint32(data))
	pos := 4

	questions := make([]Question, 0, min(count, 4096))
	for i := range count {
		name, n, err := section.String16(data[pos:], engine)
		if err != nil {
			return fmt.Errorf("question %d name: %w", i, err)
		}
		pos += n

		if len(data) < pos+4 {
			return fmt.Errorf("%w: question %d ends inside operator fields", errs.ErrTruncatedData, i)
		}
		operator := engine.Uint16(data[pos:])
		operandCount := int(engine.Uint16(data[pos+2:]))
		pos += 4

		operands := make([]string, 0, operandCount)
		for j := range operandCount {
			operand, n, err := section.String16(data[pos:], engine)
			if err != nil {
				return fmt.Errorf("question %d operand %d: %w", i, j, err)
			}
			pos += n
			operands = append(operands, operand)
		}

		questions = append(questions, Question{Name: name, Operator: operator, Operands: operands})
	}

	if pos != len(data) {
		return fmt.Errorf("%w: %d trailing bytes after %d questions",
			errs.ErrInvalidQuestionSet, len(data)-pos, count)
	}

	qs.Questions = questions

	return nil
}

// ParseQuestionSet decodes a question section.
func ParseQuestionSet(data []byte, engine endian.EndianEngine) (*QuestionSet, error) {
	qs := NewQuestionSet()
	if err := qs.Parse(data, engine); err != nil {
		return nil, err
	}

	return qs, nil
}
