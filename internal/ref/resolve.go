package ref

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Tag is one remote tag with the commit it points at (peeled for annotated
// tags). Commit may be empty when the remote listing omitted it.
type Tag struct {
	Name   string
	Commit string
}

// TagLister is the remote surface the resolver needs. ListTags may return
// tags in any order; callers sort client-side.
type TagLister interface {
	ListTags(ctx context.Context, repoURL string) ([]Tag, error)
	DefaultBranch(ctx context.Context, repoURL string) (string, error)
}

// Resolved is a concrete, fetchable git identifier. Commit is populated only
// when resolution happened to discover it; absence is not an error.
type Resolved struct {
	Ref    string
	Commit string
}

// ResolutionError reports a spec that matched nothing on the remote.
type ResolutionError struct {
	Repo string
	Spec VersionSpec
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s against %s: %v", e.Spec, e.Repo, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ResolveVersion applies a version spec against a remote repository.
// Exact, Branch and Commit specs resolve without touching the network.
// Latest picks the highest semver-parseable tag, falling back to the remote
// default branch when no tag parses as a version.
func ResolveVersion(ctx context.Context, lister TagLister, repoURL string, spec VersionSpec) (Resolved, error) {
	switch spec.Kind {
	case VersionExact:
		return Resolved{Ref: spec.Value}, nil
	case VersionBranch:
		return Resolved{Ref: spec.Value}, nil
	case VersionCommit:
		return Resolved{Ref: spec.Value, Commit: spec.Value}, nil
	case VersionLatest:
		return resolveLatest(ctx, lister, repoURL, spec)
	case VersionRange:
		return resolveRange(ctx, lister, repoURL, spec)
	default:
		return Resolved{}, &ResolutionError{Repo: repoURL, Spec: spec, Err: fmt.Errorf("unknown version kind")}
	}
}

func resolveLatest(ctx context.Context, lister TagLister, repoURL string, spec VersionSpec) (Resolved, error) {
	tags, err := lister.ListTags(ctx, repoURL)
	if err != nil {
		return Resolved{}, &ResolutionError{Repo: repoURL, Spec: spec, Err: err}
	}

	var best Tag
	var bestVersion *semver.Version
	for _, t := range tags {
		v, err := semver.NewVersion(strings.TrimPrefix(t.Name, "v"))
		if err != nil {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best, bestVersion = t, v
		}
	}
	if bestVersion != nil {
		return Resolved{Ref: best.Name, Commit: best.Commit}, nil
	}

	branch, err := lister.DefaultBranch(ctx, repoURL)
	if err != nil {
		return Resolved{}, &ResolutionError{Repo: repoURL, Spec: spec, Err: err}
	}
	return Resolved{Ref: branch}, nil
}

func resolveRange(ctx context.Context, lister TagLister, repoURL string, spec VersionSpec) (Resolved, error) {
	constraint, err := semver.NewConstraint(spec.Value)
	if err != nil {
		return Resolved{}, &ResolutionError{Repo: repoURL, Spec: spec, Err: fmt.Errorf("invalid range: %w", err)}
	}

	tags, err := lister.ListTags(ctx, repoURL)
	if err != nil {
		return Resolved{}, &ResolutionError{Repo: repoURL, Spec: spec, Err: err}
	}

	type match struct {
		tag     Tag
		version *semver.Version
	}
	var matches []match
	for _, t := range tags {
		v, err := semver.NewVersion(strings.TrimPrefix(t.Name, "v"))
		if err != nil {
			continue
		}
		if constraint.Check(v) {
			matches = append(matches, match{tag: t, version: v})
		}
	}
	if len(matches) == 0 {
		return Resolved{}, &ResolutionError{Repo: repoURL, Spec: spec,
			Err: fmt.Errorf("no tag satisfies range %q", spec.Value)}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].version.GreaterThan(matches[j].version)
	})
	best := matches[0]
	return Resolved{Ref: best.tag.Name, Commit: best.tag.Commit}, nil
}
