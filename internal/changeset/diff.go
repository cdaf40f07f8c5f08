// Package changeset computes which incoming records differ from the stored
// state. The transactional half of the commit workflow lives in the services
// layer; this package is pure record-map arithmetic.
package changeset

import "github.com/grid-vault/gridvault/internal/tabular"

// Diff returns the subset of incoming records whose key is absent from the
// stored map or whose resolved value differs from the stored counterpart.
// Keys present only in stored are never included: a vanished key does not
// express a deletion through this path, removal stays an explicit archive
// operation.
func Diff(incoming, stored map[tabular.Key]*tabular.Record, valueType tabular.FieldType) map[tabular.Key]*tabular.Record {
	changed := make(map[tabular.Key]*tabular.Record)
	for key, rec := range incoming {
		if prev, ok := stored[key]; ok && rec.SameValue(prev, valueType) {
			continue
		}
		changed[key] = rec
	}
	return changed
}
