// Package reconcile matches extracted placeholder fields against raw document
// text and company-level data.
//
// Everything in this package is a pure function over values: callers load
// documents and companies, hand the fields in, and persist whatever comes back.
// The inputs passed to Merge, Aggregate, Prefill and Remove are never mutated.
package reconcile

import (
	"strings"
	"time"
)

// Scope tells whether a field belongs to the company or to a single document.
type Scope string

const (
	ScopeCompany  Scope = "company"
	ScopeDocument Scope = "document"
)

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	return s == ScopeCompany || s == ScopeDocument
}

// Field is one placeholder extracted from a document.
type Field struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Pattern     string `json:"pattern"`
	Value       string `json:"value"`
	Scope       Scope  `json:"scope"`
	Match       *Match `json:"match,omitempty"`
}

// Filled reports whether the field carries a non-blank value.
func (f Field) Filled() bool {
	return !isBlank(f.Value)
}

// Match is the position of a placeholder pattern inside raw text.
type Match struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Snippet string `json:"snippet"`
	Exact   bool   `json:"exact"`
}

// Entry is a company-level value and the document it came from.
type Entry struct {
	Value            string    `json:"value"`
	SourceDocumentID string    `json:"source_document_id"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Data is the company-level data keyed by canonical field key.
type Data map[string]Entry

// Clone returns a shallow copy of d. A nil Data clones to an empty map.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Source is one document's contribution to company data.
type Source struct {
	DocumentID string
	UpdatedAt  time.Time
	Fields     []Field
}

// Collision records two fields whose keys normalized to the same canonical key.
type Collision struct {
	Key     string `json:"key"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
