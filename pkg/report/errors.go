package report

import "fmt"

// MalformedDocumentError reports a structurally invalid input document,
// naming the offending file and field. It aborts the stage it occurs in:
// a corrupt input must never yield a partially processed output.
type MalformedDocumentError struct {
	Path   string
	Field  string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document %s: field %q: %s", e.Path, e.Field, e.Reason)
}

// DuplicateRawFamilyError reports a raw-sample family produced by more
// than one merge input. Two measurement phases should never sample the
// same family, so a collision is a configuration error, not data.
type DuplicateRawFamilyError struct {
	Family string
	Path   string
}

func (e *DuplicateRawFamilyError) Error() string {
	return fmt.Sprintf("duplicate raw sample family %q (second occurrence in %s)", e.Family, e.Path)
}
