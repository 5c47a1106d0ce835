// Package nyxerr defines Nyx's error taxonomy: User, File, Rule, and Index
// errors, each carrying enough context to map to the right CLI exit code and
// log line without string-matching on error text.
package nyxerr

import (
	"errors"
	"fmt"
)

// UserError is an invalid configuration value, unknown flag, or missing
// path. The CLI surfaces it and exits 2.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

// NewUser wraps a message as a UserError.
func NewUser(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// FileError is a per-file failure (unreadable, non-UTF-8, oversize, parser
// refusal, timeout). It never aborts the pipeline; the worker logs it as a
// diagnostic and continues to the next file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// NewFile wraps err with the offending path.
func NewFile(path string, err error) error {
	return &FileError{Path: path, Err: err}
}

// RuleError is a malformed pattern/catalog bundle detected at load time. It
// surfaces at startup and the process exits 3.
type RuleError struct {
	Language string
	Msg      string
}

func (e *RuleError) Error() string { return fmt.Sprintf("rule load (%s): %s", e.Language, e.Msg) }

// NewRule constructs a RuleError.
func NewRule(language, format string, args ...any) error {
	return &RuleError{Language: language, Msg: fmt.Sprintf(format, args...)}
}

// IndexError is raised by the persistent store. Corrupt is set for
// unrecoverable corruption (fatal, exit 3 with a hint to run `clean`);
// unset for other store failures. Transient lock contention is waited out
// by the connection's busy timeout (see index.Open); contention that
// outlasts it surfaces as an unset IndexError, which callers do not retry.
type IndexError struct {
	Err     error
	Corrupt bool
}

func (e *IndexError) Error() string {
	if e.Corrupt {
		return fmt.Sprintf("index corrupt: %v (run `nyx clean` to reset)", e.Err)
	}
	return fmt.Sprintf("index: %v", e.Err)
}
func (e *IndexError) Unwrap() error { return e.Err }

// NewIndex wraps a store-layer error.
func NewIndex(err error, corrupt bool) error {
	return &IndexError{Err: err, Corrupt: corrupt}
}

// ExitCode maps an error (possibly nil, possibly wrapping one of the types
// above) to the process exit code defined in the CLI contract.
func ExitCode(err error, foundSeverityFindings bool) int {
	if err == nil {
		if foundSeverityFindings {
			return 1
		}
		return 0
	}
	var user *UserError
	if errors.As(err, &user) {
		return 2
	}
	return 3
}
