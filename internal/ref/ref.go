// Package ref parses skill source references and resolves version specs
// against a remote repository. Parsing is pure; resolution talks to the
// remote through an injected TagLister.
package ref

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// SourceKind classifies a reference once at parse time so callers dispatch
// on the kind instead of re-testing string shape.
type SourceKind int

const (
	// KindRepo is the short grammar [registry:]owner/repo[/subPath][@version]
	KindRepo SourceKind = iota
	// KindGitURL is a full SSH or HTTPS clone URL, or a web browse URL
	KindGitURL
	// KindArchive is a direct HTTP(S) archive download (.tar.gz, .tgz, .zip)
	KindArchive
	// KindRegistry is a named package resolved through the skills registry
	KindRegistry
)

// Sentinel registry sources used for non-git origins. They keep cache paths
// derivable for every kind of reference.
const (
	SourceHTTP     = "_http"
	SourceRegistry = "_registry"
)

// DefaultRegistry is assumed when a short reference carries no registry prefix.
const DefaultRegistry = "github"

// Reference is the parsed, immutable form of a raw source string.
type Reference struct {
	Raw            string
	Kind           SourceKind
	RegistrySource string
	Owner          string
	Repo           string
	SubPath        string
	VersionSpec    string // raw version string, empty if absent
	ExplicitURL    string // verbatim clone URL, set for KindGitURL/KindArchive
}

// ParseError reports malformed input together with the expected grammar.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid skill reference %q: %s\n  expected: [registry:]owner/repo[/subPath][@version], a git URL, or registry:<name>", e.Input, e.Reason)
}

var (
	registryPrefixRe = regexp.MustCompile(`^([a-zA-Z0-9.-]+):(.+)$`)
	scpURLRe         = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9._-]+:`)
	commitHashRe     = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
)

// Parse turns a raw string into a Reference. It is total except for
// malformed input and performs no I/O.
func Parse(raw string) (*Reference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, &ParseError{Input: raw, Reason: "empty reference"}
	}

	if isArchiveURL(s) {
		return parseArchiveURL(raw, s)
	}
	// Git URLs must be checked before the generic grammar: they contain
	// colons and @ that collide with the registry prefix and version split.
	if isGitURL(s) {
		return parseGitURL(raw, s)
	}

	registry := ""
	if m := registryPrefixRe.FindStringSubmatch(s); m != nil {
		registry = m[1]
		s = m[2]
	}

	if registry == "registry" || registry == SourceRegistry {
		return parseRegistryName(raw, s)
	}

	version := ""
	// Split on the last @, but never at position 0 so scoped names such as
	// @scope/name survive intact.
	if i := strings.LastIndex(s, "@"); i > 0 {
		version = s[i+1:]
		s = s[:i]
	}

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, &ParseError{Input: raw, Reason: "need at least owner/repo"}
	}

	r := &Reference{
		Raw:            raw,
		Kind:           KindRepo,
		RegistrySource: registry,
		Owner:          parts[0],
		Repo:           parts[1],
		VersionSpec:    version,
	}
	if len(parts) > 2 {
		r.SubPath = strings.Join(parts[2:], "/")
	}
	return r, nil
}

func parseRegistryName(raw, s string) (*Reference, error) {
	version := ""
	if i := strings.LastIndex(s, "@"); i > 0 {
		version = s[i+1:]
		s = s[:i]
	}
	if s == "" {
		return nil, &ParseError{Input: raw, Reason: "registry reference needs a package name"}
	}
	return &Reference{
		Raw:            raw,
		Kind:           KindRegistry,
		RegistrySource: SourceRegistry,
		Repo:           s,
		VersionSpec:    version,
	}, nil
}

func isArchiveURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	lower := strings.ToLower(s)
	return strings.HasSuffix(lower, ".tar.gz") ||
		strings.HasSuffix(lower, ".tgz") ||
		strings.HasSuffix(lower, ".zip")
}

func isGitURL(s string) bool {
	if scpURLRe.MatchString(s) {
		return true
	}
	if strings.Contains(s, "://") {
		if gitSuffixIndex(s) >= 0 {
			return true
		}
		return strings.Contains(s, "/tree/") ||
			strings.Contains(s, "/blob/") ||
			strings.Contains(s, "/raw/")
	}
	return false
}

// gitSuffixIndex finds where a ".git" repository suffix starts: it must end
// the string or be followed by a subpath or version. A ".git" in the middle
// of a repo name (owner.github.io) is not a suffix.
func gitSuffixIndex(s string) int {
	for i := 0; ; i++ {
		j := strings.Index(s[i:], ".git")
		if j < 0 {
			return -1
		}
		i += j
		end := i + len(".git")
		if end == len(s) || s[end] == '/' || s[end] == '@' {
			return i
		}
	}
}

func parseArchiveURL(raw, s string) (*Reference, error) {
	rest := strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return nil, &ParseError{Input: raw, Reason: "archive URL has no path"}
	}
	base := parts[len(parts)-1]
	for _, ext := range []string{".tar.gz", ".tgz", ".zip"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return &Reference{
		Raw:            raw,
		Kind:           KindArchive,
		RegistrySource: SourceHTTP,
		Owner:          parts[0],
		Repo:           base,
		ExplicitURL:    s,
	}, nil
}

// parseGitURL handles SSH clone URLs (user@host:path.git), scheme clone URLs
// ending in .git, and web browse URLs containing /tree/, /blob/ or /raw/.
func parseGitURL(raw, s string) (*Reference, error) {
	if strings.Contains(s, "/tree/") || strings.Contains(s, "/blob/") || strings.Contains(s, "/raw/") {
		return parseWebURL(raw, s)
	}

	idx := gitSuffixIndex(s)
	if idx < 0 {
		return nil, &ParseError{Input: raw, Reason: "git URL missing .git suffix"}
	}
	// The clone URL up to and including .git is kept verbatim: git URL
	// conventions vary too much to round-trip from parts.
	cloneURL := s[:idx+len(".git")]
	rest := s[idx+len(".git"):]

	version := ""
	if i := strings.LastIndex(rest, "@"); i > 0 || (i == 0 && rest != "") {
		if i > 0 {
			version = rest[i+1:]
			rest = rest[:i]
		} else {
			version = rest[1:]
			rest = ""
		}
	}
	subPath := strings.TrimPrefix(rest, "/")

	host, owner, repo, err := splitCloneURL(cloneURL)
	if err != nil {
		return nil, &ParseError{Input: raw, Reason: err.Error()}
	}

	return &Reference{
		Raw:            raw,
		Kind:           KindGitURL,
		RegistrySource: host,
		Owner:          owner,
		Repo:           repo,
		SubPath:        subPath,
		VersionSpec:    version,
		ExplicitURL:    cloneURL,
	}, nil
}

func parseWebURL(raw, s string) (*Reference, error) {
	rest := s
	scheme := "https"
	if i := strings.Index(rest, "://"); i >= 0 {
		scheme = rest[:i]
		rest = rest[i+len("://"):]
	}

	parts := strings.Split(rest, "/")
	if len(parts) < 5 {
		return nil, &ParseError{Input: raw, Reason: "browse URL needs host/owner/repo/tree|blob|raw/branch"}
	}
	host, owner, repo, marker := parts[0], parts[1], parts[2], parts[3]
	if marker != "tree" && marker != "blob" && marker != "raw" {
		return nil, &ParseError{Input: raw, Reason: "browse URL needs a /tree/, /blob/ or /raw/ segment"}
	}
	branch := parts[4]
	subPath := ""
	if len(parts) > 5 {
		subPath = strings.Join(parts[5:], "/")
	}

	return &Reference{
		Raw:            raw,
		Kind:           KindGitURL,
		RegistrySource: host,
		Owner:          owner,
		Repo:           repo,
		SubPath:        subPath,
		VersionSpec:    "branch:" + branch,
		ExplicitURL:    fmt.Sprintf("%s://%s/%s/%s.git", scheme, host, owner, repo),
	}, nil
}

// splitCloneURL derives host/owner/repo from a clone URL for cache keying.
func splitCloneURL(cloneURL string) (host, owner, repo string, err error) {
	s := strings.TrimSuffix(cloneURL, ".git")

	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+len("://"):]
		if j := strings.Index(s, "@"); j >= 0 {
			s = s[j+1:]
		}
		parts := strings.Split(s, "/")
		if len(parts) < 3 {
			return "", "", "", fmt.Errorf("clone URL needs host/owner/repo")
		}
		return parts[0], parts[len(parts)-2], parts[len(parts)-1], nil
	}

	// SCP style: user@host:owner/repo
	at := strings.Index(s, "@")
	colon := strings.Index(s, ":")
	if at < 0 || colon < at {
		return "", "", "", fmt.Errorf("unrecognized clone URL")
	}
	host = s[at+1 : colon]
	parts := strings.Split(s[colon+1:], "/")
	if len(parts) < 2 {
		return "", "", "", fmt.Errorf("clone URL needs owner/repo after host")
	}
	return host, parts[len(parts)-2], parts[len(parts)-1], nil
}

// wellKnownRegistries maps short registry names to base URLs.
var wellKnownRegistries = map[string]string{
	"github":    "https://github.com",
	"gitlab":    "https://gitlab.com",
	"bitbucket": "https://bitbucket.org",
	"codeberg":  "https://codeberg.org",
}

// Registry returns the registry source used for cache keying, defaulting to
// DefaultRegistry for short references without a prefix.
func (r *Reference) Registry() string {
	if r.RegistrySource == "" {
		return DefaultRegistry
	}
	return r.RegistrySource
}

// RepoURL builds the clone URL for this reference. overrides maps registry
// source names to base URLs and takes precedence over the well-known table;
// an unknown source name is treated as a domain.
func (r *Reference) RepoURL(overrides map[string]string) string {
	if r.ExplicitURL != "" {
		return r.ExplicitURL
	}

	source := r.Registry()
	base, ok := overrides[source]
	if !ok {
		base, ok = wellKnownRegistries[source]
	}
	if !ok {
		base = "https://" + source
	}
	return strings.TrimSuffix(base, "/") + "/" + r.Owner + "/" + r.Repo
}

// DefaultName returns the skill name implied by the reference: the last
// subPath segment for monorepo skills, else the repo name.
func (r *Reference) DefaultName() string {
	if r.SubPath != "" {
		return path.Base(r.SubPath)
	}
	return r.Repo
}

// IsCommitHash reports whether s looks like an abbreviated or full git SHA.
func IsCommitHash(s string) bool {
	return commitHashRe.MatchString(s)
}
