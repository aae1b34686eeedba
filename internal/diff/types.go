package diff

import "fmt"

// Kind classifies a top-level definition.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTypeAlias Kind = "type-alias"
	KindEnum      Kind = "enum"
	KindConstant  Kind = "constant"
)

// Definition is one named, top-level unit of code extracted from a file.
// Identity is the kind-prefixed qualified name; equality is the fingerprint
// of the normalized body. SourceSpan is for reporting only.
type Definition struct {
	QualifiedName  string // kind-prefixed, e.g. "function:foo"
	Name           string // bare name, e.g. "foo"
	Kind           Kind
	FilePath       string
	StartLine      int
	EndLine        int
	NormalizedBody string
	Fingerprint    string
}

// QualifiedName builds the kind-prefixed name used as map key.
func QualifiedName(kind Kind, name string) string {
	return string(kind) + ":" + name
}

// DefinitionSet maps qualified names to definitions for one revision.
// When the same qualified name is produced by two files in one revision the
// later write wins; callers detect and report that via the aggregator.
type DefinitionSet map[string]Definition

// Add inserts a definition, returning the previous occupant if the name was
// already taken (the collision case).
func (s DefinitionSet) Add(def Definition) (Definition, bool) {
	prev, collided := s[def.QualifiedName]
	s[def.QualifiedName] = def
	return prev, collided
}

// RenameAlias maps an old qualified name to its new qualified name. Aliases
// are static configuration, applied before classification and never mutated
// during a run.
type RenameAlias struct {
	From string `yaml:"from" mapstructure:"from"`
	To   string `yaml:"to" mapstructure:"to"`
}

// MatchEntry is a definition present in both revisions with equal
// fingerprints. RenamedFrom is set when the pairing was established through
// a rename alias.
type MatchEntry struct {
	Name        string
	Fingerprint string
	RenamedFrom string
}

// ModifiedEntry is a definition whose fingerprint changed between revisions.
// Diff is only populated when the caller asked for a line-level diff of the
// two normalized bodies.
type ModifiedEntry struct {
	Name           string
	RenamedFrom    string
	OldFingerprint string
	NewFingerprint string
	Diff           string
}

// ComparisonResult partitions every qualified name across both revisions
// (post-alias) into exactly one of four categories.
type ComparisonResult struct {
	Removed  []string
	Added    []string
	Modified []ModifiedEntry
	Matching []MatchEntry
}

// Identical reports whether the two revisions are behaviorally identical
// under this tool's policy: no removals, additions, or modifications.
// Renames and matches do not count against it.
func (r *ComparisonResult) Identical() bool {
	return len(r.Removed) == 0 && len(r.Added) == 0 && len(r.Modified) == 0
}

// Summary renders the category counts on one line.
func (r *ComparisonResult) Summary() string {
	return fmt.Sprintf("%d matching, %d modified, %d added, %d removed",
		len(r.Matching), len(r.Modified), len(r.Added), len(r.Removed))
}
