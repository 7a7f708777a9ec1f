package normalize

import "fmt"

// WarningKind classifies a recovered problem.
type WarningKind string

const (
	WarnColumnMismatch      WarningKind = "column_mismatch"
	WarnParseError          WarningKind = "parse_error"
	WarnUnmatchedSkill      WarningKind = "unmatched_skill"
	WarnUnknownLevel        WarningKind = "unknown_level"
	WarnDuplicateRespondent WarningKind = "duplicate_respondent"
	WarnUnmappedColumn      WarningKind = "unmapped_column"
	WarnBioFailed           WarningKind = "bio_failed"
	WarnWriteFailed         WarningKind = "write_failed"
)

// Warning is a problem that did not stop the run. Line is the CSV line it
// refers to; 1 is the header and 0 means the run as a whole.
type Warning struct {
	Line    int
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	if w.Line == 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Message)
}

// Warnf builds a Warning.
func Warnf(line int, kind WarningKind, format string, args ...any) Warning {
	return Warning{Line: line, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
