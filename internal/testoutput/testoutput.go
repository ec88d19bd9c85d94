// Package testoutput parses the line-oriented "<name>:<PASS|FAIL>"
// grammar produced by a test command's stdout and aggregates the
// results into a final verdict map.
package testoutput

import (
	"strings"

	graderrors "github.com/kyledewey/gradr/internal/errors"
)

// Verdict is the per-test outcome reported on a single output line.
type Verdict int

const (
	Pass Verdict = iota
	Fail
)

func (v Verdict) String() string {
	if v == Pass {
		return "PASS"
	}
	return "FAIL"
}

// ParseLine splits a single line of test output into a test name and
// its verdict. The line must contain exactly one colon, and the text
// after it must be exactly "PASS" or "FAIL".
func ParseLine(line string) (name string, verdict Verdict, err error) {
	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return "", 0, &graderrors.MalformedTestLineError{Line: line}
	}

	name = parts[0]
	switch parts[1] {
	case "PASS":
		return name, Pass, nil
	case "FAIL":
		return name, Fail, nil
	default:
		return "", 0, &graderrors.MalformedTestLineError{Line: line}
	}
}

// Aggregate parses every line of a test run's stdout and folds the
// results into a single name-to-verdict map. A test name reported more
// than once keeps only its last-seen verdict. Blank lines are skipped.
// Aggregate stops and returns an error on the first malformed line.
func Aggregate(lines []string) (map[string]Verdict, error) {
	results := make(map[string]Verdict)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		name, verdict, err := ParseLine(trimmed)
		if err != nil {
			return nil, err
		}
		results[name] = verdict
	}
	return results, nil
}
