package builder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/font"
)

// ReadQuestions parses the textual question schema:
//
//	name operator operand [operand ...]
//
// one question per line, operator one of equal, in, less or greater, same
// comment and blank-line rules as feature files.
//
// Returns:
//   - *font.QuestionSet: Questions in file order
//   - error: errs.ErrInvalidQuestionSet for a malformed line or unknown
//     operator
func ReadQuestions(r io.Reader) (*font.QuestionSet, error) {
	qs := font.NewQuestionSet()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFeatureLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: question line %d needs name, operator and at least one operand",
				errs.ErrInvalidQuestionSet, lineNo)
		}

		op, err := parseOperator(fields[1])
		if err != nil {
			return nil, fmt.Errorf("question line %d: %w", lineNo, err)
		}

		if err := qs.Add(fields[0], op, fields[2:]...); err != nil {
			return nil, fmt.Errorf("question line %d: %w", lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("question line %d: %w", lineNo+1, err)
	}

	return qs, nil
}

// ReadQuestionsFile parses a question schema file.
func ReadQuestionsFile(path string) (*font.QuestionSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	qs, err := ReadQuestions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return qs, nil
}

func parseOperator(s string) (uint16, error) {
	switch strings.ToLower(s) {
	case "equal":
		return font.OpEqual, nil
	case "in":
		return font.OpIn, nil
	case "less":
		return font.OpLess, nil
	case "greater":
		return font.OpGreater, nil
	default:
		return 0, fmt.Errorf("%w: unknown operator %q", errs.ErrInvalidQuestionSet, s)
	}
}
