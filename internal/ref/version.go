package ref

import "strings"

// VersionKind is the closed set of version spec variants.
type VersionKind int

const (
	VersionBranch VersionKind = iota
	VersionExact
	VersionLatest
	VersionRange
	VersionCommit
)

// DefaultBranch is assumed when a reference carries no version at all.
const DefaultBranch = "main"

// VersionSpec is an abstract version requirement, parsed from the raw
// version string of a reference.
type VersionSpec struct {
	Kind  VersionKind
	Value string // tag, branch, commit hash, or range expression
}

// ParseVersionSpec classifies a raw version string by fixed-priority
// pattern matching. The empty string defaults to Branch(main).
func ParseVersionSpec(raw string) VersionSpec {
	s := strings.TrimSpace(raw)

	switch {
	case s == "":
		return VersionSpec{Kind: VersionBranch, Value: DefaultBranch}
	case s == "latest":
		return VersionSpec{Kind: VersionLatest}
	case strings.HasPrefix(s, "branch:"):
		return VersionSpec{Kind: VersionBranch, Value: strings.TrimPrefix(s, "branch:")}
	case strings.HasPrefix(s, "commit:"):
		return VersionSpec{Kind: VersionCommit, Value: strings.TrimPrefix(s, "commit:")}
	case strings.HasPrefix(s, "^"), strings.HasPrefix(s, "~"),
		strings.HasPrefix(s, ">"), strings.HasPrefix(s, "<"):
		return VersionSpec{Kind: VersionRange, Value: s}
	default:
		return VersionSpec{Kind: VersionExact, Value: s}
	}
}

func (v VersionSpec) String() string {
	switch v.Kind {
	case VersionLatest:
		return "latest"
	case VersionBranch:
		return "branch:" + v.Value
	case VersionCommit:
		return "commit:" + v.Value
	default:
		return v.Value
	}
}

// Spec returns the parsed version spec of the reference.
func (r *Reference) Spec() VersionSpec {
	return ParseVersionSpec(r.VersionSpec)
}
