package diagnostics

import "strings"

type Severity int

const (
	SeverityOk Severity = iota
	SeverityWarning
	SeverityFail
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityFail:
		return "fail"
	default:
		return "ok"
	}
}

// Entry is one message in a Log.
type Entry struct {
	Severity Severity
	Message  string
}

// Log collects structured messages from host functions and the evaluator.
type Log struct {
	entries []Entry
}

func (l *Log) Add(sev Severity, msg string) {
	l.entries = append(l.entries, Entry{Severity: sev, Message: msg})
}

func (l *Log) Warn(msg string) { l.Add(SeverityWarning, msg) }

func (l *Log) Fail(msg string) { l.Add(SeverityFail, msg) }

func (l *Log) Entries() []Entry { return l.entries }

func (l *Log) Len() int { return len(l.entries) }

func (l *Log) Clear() { l.entries = nil }

// Worst returns the highest severity recorded.
func (l *Log) Worst() Severity {
	worst := SeverityOk
	for _, e := range l.entries {
		if e.Severity > worst {
			worst = e.Severity
		}
	}
	return worst
}

// Text joins the messages at or above sev, one per line.
func (l *Log) Text(sev Severity) string {
	var lines []string
	for _, e := range l.entries {
		if e.Severity >= sev {
			lines = append(lines, e.Message)
		}
	}
	return strings.Join(lines, "\n")
}
