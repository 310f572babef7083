package kkr

import (
	"fmt"
	"strings"
)

// Severity decides how an Issue is reported
type Severity int

const (
	// Critical issues are always errors
	Critical Severity = iota + 1
	// Reviewable issues are errors only when their ConsistencyCheck
	// holds for the parsed record, warnings otherwise
	Reviewable
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Reviewable:
		return "reviewable"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ConsistencyCheck is a named predicate over an already parsed Record.
// It must not look at anything but the record.
type ConsistencyCheck struct {
	Name  string
	Holds func(rec *Record) bool
}

// Issue is a single problem found while locating or parsing output
type Issue struct {
	Severity Severity
	Message  string
	Check    *ConsistencyCheck
}

func (i Issue) String() string {
	if i.Check != nil {
		return fmt.Sprintf("%s(%s): %s", i.Severity, i.Check.Name, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// Matters reports whether i counts as an error for rec
func (i Issue) Matters(rec *Record) bool {
	if i.Severity != Reviewable || i.Check == nil || i.Check.Holds == nil {
		return true
	}
	return i.Check.Holds(rec)
}

// Soften turns an error message into the matching warning. Every
// occurrence of "Error" is replaced, and a message without one is left
// as it is.
func Soften(msg string) string {
	return strings.ReplaceAll(msg, "Error", "Warning")
}

// Classify splits issues into error and warning messages, keeping
// their order. Each issue lands in exactly one of the two lists.
func Classify(rec *Record, issues []Issue) (errs, warns []string) {
	errs = make([]string, 0, len(issues))
	for _, iss := range issues {
		if iss.Matters(rec) {
			errs = append(errs, iss.Message)
		} else {
			warns = append(warns, Soften(iss.Message))
		}
	}
	return
}
