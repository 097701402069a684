package records

import (
	"errors"
	"fmt"
	"strings"
)

// ResolutionKind classifies why free text did not resolve to one entity.
type ResolutionKind int

// Resolution failure kinds.
const (
	EmptyInput ResolutionKind = iota
	NotFound
	Ambiguous
)

func (k ResolutionKind) String() string {
	switch k {
	case EmptyInput:
		return "empty_input"
	case NotFound:
		return "not_found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// ResolutionError reports input that did not identify exactly one entity.
type ResolutionError struct {
	Kind  ResolutionKind
	Input string
	// Count and Example are set for Ambiguous.
	Count   int
	Example string
	// Suggestions are close entity names, set for NotFound when available.
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	switch e.Kind {
	case EmptyInput:
		return "Input is empty"
	case NotFound:
		return fmt.Sprintf("Country %q not found.", e.Input)
	case Ambiguous:
		return fmt.Sprintf("Ambiguous search %q. Found %d matches (e.g., %s). Please be more specific.",
			e.Input, e.Count, e.Example)
	default:
		return "resolution failed"
	}
}

// Hint returns the error text followed by any suggestions.
func (e *ResolutionError) Hint() string {
	if len(e.Suggestions) == 0 {
		return e.Error()
	}
	return fmt.Sprintf("%s Did you mean %s?", e.Error(), strings.Join(e.Suggestions, ", "))
}

// CommitErrorKind classifies a failed value commit.
type CommitErrorKind int

// Commit failure kinds.
const (
	StoreUnavailable CommitErrorKind = iota
	RecordVanished
)

func (k CommitErrorKind) String() string {
	if k == RecordVanished {
		return "record_vanished"
	}
	return "store_unavailable"
}

// CommitError reports a value edit that was not persisted.
type CommitError struct {
	Kind CommitErrorKind
	ID   int64
	Err  error
}

func (e *CommitError) Error() string {
	if e.Kind == RecordVanished {
		return fmt.Sprintf("record %d no longer exists", e.ID)
	}
	return fmt.Sprintf("update of record %d failed: %v", e.ID, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// ResolutionMessage is the user-facing text of a Resolve failure.
func ResolutionMessage(err error) string {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Hint()
	}
	return "Error: " + err.Error()
}
