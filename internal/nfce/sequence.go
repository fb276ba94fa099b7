package nfce

import (
	"fmt"
	"strconv"
)

// ContinuityPolicy selects how far item-number continuity reaches inside a
// document. Continuity never spans documents.
type ContinuityPolicy int

const (
	// ContinuityPerPage restarts the sequence on every page.
	ContinuityPerPage ContinuityPolicy = iota
	// ContinuityPerDocument carries the sequence across the pages of a document.
	ContinuityPerDocument
)

// ParseContinuityPolicy parses "page" or "document".
func ParseContinuityPolicy(s string) (ContinuityPolicy, error) {
	switch s {
	case "page", "":
		return ContinuityPerPage, nil
	case "document":
		return ContinuityPerDocument, nil
	}
	return 0, fmt.Errorf("unknown continuity policy %q (valid: page, document)", s)
}

func (p ContinuityPolicy) String() string {
	if p == ContinuityPerDocument {
		return "document"
	}
	return "page"
}

// SequenceValidator rejects rows whose three-digit item number does not
// follow the last accepted one. The zero value is ready to use.
type SequenceValidator struct {
	last    int
	hasLast bool
}

// Accept reports whether item continues the sequence and, if so, records it
// as the last accepted row. A rejected row leaves the state untouched.
func (v *SequenceValidator) Accept(item LineItem) bool {
	id, err := strconv.Atoi(item.ItemID)
	if item.Sequenced() && v.hasLast && id != v.last+1 {
		return false
	}
	// Item numbers too long for an int are kept but cannot anchor the sequence.
	if err == nil {
		v.last, v.hasLast = id, true
	}
	return true
}

// Last returns the last accepted item number.
func (v *SequenceValidator) Last() (int, bool) {
	return v.last, v.hasLast
}

// Reset forgets the last accepted item number.
func (v *SequenceValidator) Reset() {
	*v = SequenceValidator{}
}
