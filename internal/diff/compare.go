package diff

import "sort"

// CompareOptions controls optional behavior of Compare.
type CompareOptions struct {
	// Detailed attaches a line-level diff of the old and new normalized
	// bodies to every modified entry.
	Detailed bool
}

// Compare aligns two revision-level definition sets and classifies every
// qualified name into exactly one of removed, added, modified, or matching.
//
// Aliases are resolved strictly before classification: when the old set
// contains an alias source and the new set contains its target, the pair is
// treated as a single entry under the target name, so a renamed definition
// is never double-counted as removed + added. Definitions are compared
// purely by fingerprint equality; there is no fuzzy similarity scoring.
func Compare(oldSet, newSet DefinitionSet, aliases []RenameAlias, opts CompareOptions) *ComparisonResult {
	// Work on a shallow copy of the old pool so alias resolution does not
	// mutate the caller's set.
	oldPool := make(map[string]Definition, len(oldSet))
	for name, def := range oldSet {
		oldPool[name] = def
	}

	renamedFrom := make(map[string]string)
	for _, alias := range aliases {
		src, okOld := oldPool[alias.From]
		_, okNew := newSet[alias.To]
		if !okOld || !okNew {
			continue
		}
		if _, taken := oldPool[alias.To]; taken {
			// The old revision already defines the target name itself.
			// Honoring the alias would overwrite that definition and drop
			// it from every category, so both names classify on their own.
			continue
		}
		delete(oldPool, alias.From)
		oldPool[alias.To] = src
		renamedFrom[alias.To] = alias.From
	}

	result := &ComparisonResult{}

	for _, name := range sortedKeys(oldPool) {
		oldDef := oldPool[name]
		newDef, present := newSet[name]
		switch {
		case !present:
			result.Removed = append(result.Removed, name)
		case oldDef.Fingerprint != newDef.Fingerprint:
			entry := ModifiedEntry{
				Name:           name,
				RenamedFrom:    renamedFrom[name],
				OldFingerprint: oldDef.Fingerprint,
				NewFingerprint: newDef.Fingerprint,
			}
			if opts.Detailed {
				entry.Diff = LineDiff(oldDef.NormalizedBody, newDef.NormalizedBody)
			}
			result.Modified = append(result.Modified, entry)
		default:
			result.Matching = append(result.Matching, MatchEntry{
				Name:        name,
				Fingerprint: newDef.Fingerprint,
				RenamedFrom: renamedFrom[name],
			})
		}
	}

	for _, name := range sortedKeys(newSet) {
		if _, present := oldPool[name]; !present {
			result.Added = append(result.Added, name)
		}
	}

	return result
}

func sortedKeys(set map[string]Definition) []string {
	keys := make([]string, 0, len(set))
	for name := range set {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}
