// Package rank implements the deterministic ordering rules applied to
// recommendation tables before truncation.
//
// Both orderings are stable: rows equal on every active key keep their
// original relative order, so identical inputs always produce identical
// output. A row missing the active key sorts after every row carrying it.
package rank

import (
	"sort"

	"github.com/okian/encore/internal/domain/model"
)

// Personal orders rows from the user-indexed tables: score descending,
// then rank ascending. When only one of the keys is present that key
// alone decides; when neither is present the input order is preserved.
// The input slice is not mutated.
func Personal(rows []model.Row) []model.Row {
	out := clone(rows)
	sort.SliceStable(out, func(i, j int) bool {
		if less, decided := byFloatDesc(out[i].Score, out[j].Score); decided {
			return less
		}
		if less, decided := byIntAsc(out[i].Rank, out[j].Rank); decided {
			return less
		}
		return false
	})
	return out
}

// Popularity orders the global top_popular table: listen_count
// descending, then rank ascending, with the same single-key and no-key
// fallbacks as Personal. The input slice is not mutated.
func Popularity(rows []model.Row) []model.Row {
	out := clone(rows)
	sort.SliceStable(out, func(i, j int) bool {
		if less, decided := byIntDesc(out[i].ListenCount, out[j].ListenCount); decided {
			return less
		}
		if less, decided := byIntAsc(out[i].Rank, out[j].Rank); decided {
			return less
		}
		return false
	})
	return out
}

func clone(rows []model.Row) []model.Row {
	out := make([]model.Row, len(rows))
	copy(out, rows)
	return out
}

// byFloatDesc compares an optional float key in descending order.
// The second return value is false when the comparison is a tie and the
// next key should decide.
func byFloatDesc(a, b *float64) (less, decided bool) {
	switch {
	case a != nil && b != nil:
		if *a != *b {
			return *a > *b, true
		}
		return false, false
	case a != nil:
		return true, true
	case b != nil:
		return false, true
	default:
		return false, false
	}
}

// byIntDesc compares an optional integer key in descending order.
func byIntDesc(a, b *int64) (less, decided bool) {
	switch {
	case a != nil && b != nil:
		if *a != *b {
			return *a > *b, true
		}
		return false, false
	case a != nil:
		return true, true
	case b != nil:
		return false, true
	default:
		return false, false
	}
}

// byIntAsc compares an optional integer key in ascending order.
func byIntAsc(a, b *int64) (less, decided bool) {
	switch {
	case a != nil && b != nil:
		if *a != *b {
			return *a < *b, true
		}
		return false, false
	case a != nil:
		return true, true
	case b != nil:
		return false, true
	default:
		return false, false
	}
}
