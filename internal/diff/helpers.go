package diff

import (
	"sort"

	"inframap/internal/core"
	"inframap/internal/equivalence"
)

// diffSet performs a straightforward ID-keyed set diff between two
// resource maps, using equal to decide whether a present-in-both entry
// counts as Updated. Results are sorted by ID for determinism (§5).
func diffSet[T any](before, after map[string]*T, equal func(a, b *T) bool) []*core.Change[T] {
	ids := unionKeys(before, after)
	var changes []*core.Change[T]

	for _, id := range ids {
		b, inBefore := before[id]
		a, inAfter := after[id]

		switch {
		case !inBefore && inAfter:
			changes = append(changes, &core.Change[T]{Kind: core.Added, ID: id, After: a})
		case inBefore && !inAfter:
			changes = append(changes, &core.Change[T]{Kind: core.Removed, ID: id, Before: b})
		case inBefore && inAfter:
			if !equal(b, a) {
				changes = append(changes, &core.Change[T]{Kind: core.Updated, ID: id, Before: b, After: a})
			}
		}
	}

	return changes
}

func unionKeys[T any](a, b map[string]*T) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldChangeSet(changes []*equivalence.FieldChange) map[string]bool {
	set := make(map[string]bool, len(changes))
	for _, c := range changes {
		set[c.Field] = true
	}
	return set
}
