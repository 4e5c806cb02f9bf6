// Package matching implements the cross-dataset record matching that
// reconciles GEOROC petrology samples with GVP eruption events despite
// inconsistent naming, missing dates and many-to-many relationships.
package matching

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Resolver maps a GEOROC sample volcano name to the canonical GVP event
// name through two chained alias tables: long name -> short form, then
// short form -> canonical event name.
type Resolver struct {
	rawToShort       map[string]string
	shortToCanonical map[string]string
	titler           cases.Caser
}

// NewResolver creates a resolver over the two alias tables. The maps are
// shared by reference and must not be mutated after construction.
func NewResolver(rawToShort, shortToCanonical map[string]string) *Resolver {
	return &Resolver{
		rawToShort:       rawToShort,
		shortToCanonical: shortToCanonical,
		titler:           cases.Title(language.Und),
	}
}

// Resolve returns the canonical event-dataset name for a raw sample name.
// Alias tables win only when they fully resolve; a partial resolution is
// discarded in favor of a title-cased transform of the ORIGINAL raw name.
// Resolve never fails: an unresolved name yields the fallback form, and
// matching against it legitimately finds zero records.
func (r *Resolver) Resolve(rawName string) string {
	name := rawName
	if short, ok := r.rawToShort[name]; ok {
		name = short
	}
	if canonical, ok := r.shortToCanonical[name]; ok {
		return canonical
	}
	return r.titler.String(rawName)
}

// Aliased reports whether the raw name appears in either alias table.
// Only aliased names can produce eruption matches; fallback-resolved names
// join to zero events by construction.
func (r *Resolver) Aliased(rawName string) bool {
	if _, ok := r.rawToShort[rawName]; ok {
		return true
	}
	_, ok := r.shortToCanonical[rawName]
	return ok
}
