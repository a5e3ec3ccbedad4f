package concatdoc

import (
	"net/url"
	"strconv"
)

// Scheme tokens recognized by the engine. These are part of the wire
// contract with the host (the cell identifiers the transport layer hands
// us), not configuration — see SPEC_FULL.md's Configuration note.
const (
	SchemeInteractiveInput = "vscode-interactive-input"
	SchemeInteractive      = "vscode-interactive"
	SchemeUntitled         = "untitled"
	SchemeFile             = "file"
)

// CellID identifies a notebook cell by its URI-like value. It is compared
// and copied by value everywhere — never referenced by pointer into
// caller-owned data.
type CellID struct {
	URI string
}

// Equal compares two cell identifiers by their underlying URI.
func (c CellID) Equal(o CellID) bool {
	return c.URI == o.URI
}

func (c CellID) parsed() *url.URL {
	if u, err := url.Parse(c.URI); err == nil {
		return u
	}
	return &url.URL{Opaque: c.URI}
}

// Scheme returns the cell URI's scheme, e.g. "vscode-notebook-cell".
func (c CellID) Scheme() string { return c.parsed().Scheme }

// Fragment returns the cell URI's fragment component.
func (c CellID) Fragment() string { return c.parsed().Fragment }

// Path returns the cell URI's path component.
func (c CellID) Path() string { return c.parsed().Path }

// IsInteractiveInput reports whether this cell is the interactive input
// cell (the REPL-style prompt cell of an Interactive Window), which always
// sorts last and never receives the header prelude.
func (c CellID) IsInteractiveInput() bool {
	return c.Scheme() == SchemeInteractiveInput
}

// FragmentKey returns the integer ordering key for this cell: -1 for the
// interactive input cell, otherwise the trailing run of decimal digits in
// the fragment (e.g. a fragment of "W3" yields 3), or 0 when the fragment
// carries no digits at all.
func (c CellID) FragmentKey() int {
	if c.IsInteractiveInput() {
		return -1
	}
	f := c.Fragment()
	i := len(f)
	for i > 0 && f[i-1] >= '0' && f[i-1] <= '9' {
		i--
	}
	if i == len(f) {
		return 0
	}
	n, err := strconv.Atoi(f[i:])
	if err != nil {
		return 0
	}
	return n
}
