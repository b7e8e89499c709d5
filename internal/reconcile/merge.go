package reconcile

import (
	"sort"
	"strings"
)

// Canonicalize normalizes field keys, fills in missing scopes and labels, and
// collapses fields that share a canonical key. The first field in document
// order is kept; a later duplicate only donates its value when the kept field
// is blank. Fields whose key, label and pattern are all blank are dropped.
func Canonicalize(fields []Field) ([]Field, []Collision) {
	out := make([]Field, 0, len(fields))
	index := make(map[string]int, len(fields))
	var collisions []Collision

	for _, f := range fields {
		f.Key = NormalizeKey(firstNonBlank(f.Key, f.Label, f.Pattern))
		if f.Key == "" {
			continue
		}
		f.Value = strings.TrimSpace(f.Value)
		if strings.TrimSpace(f.Label) == "" {
			f.Label = Humanize(f.Key)
		}
		if !f.Scope.Valid() {
			f.Scope = Classify(f.Key, f.Label)
		}

		if i, ok := index[f.Key]; ok {
			kept := &out[i]
			if kept.Value == "" && f.Value != "" {
				kept.Value = f.Value
			}
			collisions = append(collisions, Collision{Key: f.Key, Kept: kept.Label, Dropped: f.Label})
			continue
		}
		index[f.Key] = len(out)
		out = append(out, f)
	}
	return out, collisions
}

// Merge folds the company-scope values of src into data and returns the
// result. For each key the candidate replaces the existing entry when it comes
// from a newer document; equal timestamps are broken by the greater document
// ID. A source always replaces its own earlier entries, so merging the same
// source twice is the same as merging it once. Blank values are skipped.
func Merge(data Data, src Source) Data {
	out := data.Clone()
	fields, _ := Canonicalize(src.Fields)
	for _, f := range fields {
		if f.Scope != ScopeCompany || f.Value == "" {
			continue
		}
		cand := Entry{
			Value:            f.Value,
			SourceDocumentID: src.DocumentID,
			UpdatedAt:        src.UpdatedAt,
		}
		if cur, ok := out[f.Key]; ok && !supersedes(cand, cur) {
			continue
		}
		out[f.Key] = cand
	}
	return out
}

func supersedes(cand, cur Entry) bool {
	if cand.SourceDocumentID == cur.SourceDocumentID {
		return !cand.UpdatedAt.Before(cur.UpdatedAt)
	}
	if !cand.UpdatedAt.Equal(cur.UpdatedAt) {
		return cand.UpdatedAt.After(cur.UpdatedAt)
	}
	return cand.SourceDocumentID > cur.SourceDocumentID
}

// Aggregate builds company data from scratch out of the given sources. The
// result does not depend on the order of sources. A document listed more than
// once contributes only its latest source.
func Aggregate(sources []Source) Data {
	sorted := latestPerDocument(sources)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].UpdatedAt.Equal(sorted[j].UpdatedAt) {
			return sorted[i].UpdatedAt.Before(sorted[j].UpdatedAt)
		}
		return sorted[i].DocumentID < sorted[j].DocumentID
	})

	data := Data{}
	for _, s := range sorted {
		data = Merge(data, s)
	}
	return data
}

// latestPerDocument keeps one source per document ID. Equal timestamps fall
// back to comparing field contents so the pick never depends on input order.
func latestPerDocument(sources []Source) []Source {
	byID := make(map[string]Source, len(sources))
	for _, s := range sources {
		cur, ok := byID[s.DocumentID]
		switch {
		case !ok, s.UpdatedAt.After(cur.UpdatedAt):
			byID[s.DocumentID] = s
		case s.UpdatedAt.Equal(cur.UpdatedAt) && fingerprint(s) > fingerprint(cur):
			byID[s.DocumentID] = s
		}
	}
	out := make([]Source, 0, len(byID))
	for _, s := range byID {
		out = append(out, s)
	}
	return out
}

func fingerprint(s Source) string {
	pairs := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		pairs = append(pairs, NormalizeKey(f.Key)+"\x00"+f.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x01")
}

// Remove drops every entry that was sourced from documentID.
func Remove(data Data, documentID string) Data {
	out := make(Data, len(data))
	for k, e := range data {
		if e.SourceDocumentID == documentID {
			continue
		}
		out[k] = e
	}
	return out
}

// Prefill copies company values into blank company-scope fields and reports
// how many were filled. Document-scope and already filled fields are left
// alone.
func Prefill(fields []Field, data Data) ([]Field, int) {
	out := make([]Field, len(fields))
	copy(out, fields)
	filled := 0
	for i := range out {
		f := &out[i]
		if f.Scope != ScopeCompany || f.Filled() {
			continue
		}
		if e, ok := data[NormalizeKey(f.Key)]; ok && !isBlank(e.Value) {
			f.Value = e.Value
			filled++
		}
	}
	return out, filled
}

// Progress returns the number of filled fields and the total.
func Progress(fields []Field) (filled, total int) {
	for _, f := range fields {
		if f.Filled() {
			filled++
		}
	}
	return filled, len(fields)
}

// Missing returns the fields that still need a value, in order.
func Missing(fields []Field) []Field {
	var out []Field
	for _, f := range fields {
		if !f.Filled() {
			out = append(out, f)
		}
	}
	return out
}

// Find returns the index of the field with the given key, normalizing it first.
func Find(fields []Field, key string) int {
	key = NormalizeKey(key)
	if key == "" {
		return -1
	}
	for i, f := range fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if !isBlank(v) {
			return v
		}
	}
	return ""
}
