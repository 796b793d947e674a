// Package gitcmd shells out to the git binary for remote queries and
// shallow fetches. No git protocol is implemented here.
package gitcmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/quangdo/skm/internal/ref"
)

// Client runs git commands. The zero value is usable.
type Client struct{}

// New creates a git client.
func New() *Client {
	return &Client{}
}

// FetchError wraps a failed git invocation with its stderr output.
type FetchError struct {
	Op   string
	Repo string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Repo, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Clone makes a shallow clone of repoURL at refName into dest. A commit hash
// is fetched explicitly since clone --branch only accepts tags and branches.
func (c *Client) Clone(ctx context.Context, repoURL, refName, dest string) error {
	if ref.IsCommitHash(refName) {
		return c.cloneAtCommit(ctx, repoURL, refName, dest)
	}

	args := []string{"clone", "--depth", "1", "--quiet"}
	if refName != "" {
		args = append(args, "--branch", refName)
	}
	args = append(args, repoURL, dest)

	if out, err := c.run(ctx, "", args...); err != nil {
		return &FetchError{Op: "git clone", Repo: repoURL, Err: wrapOutput(err, out)}
	}
	return nil
}

func (c *Client) cloneAtCommit(ctx context.Context, repoURL, commit, dest string) error {
	if out, err := c.run(ctx, "", "clone", "--depth", "1", "--quiet", repoURL, dest); err != nil {
		return &FetchError{Op: "git clone", Repo: repoURL, Err: wrapOutput(err, out)}
	}
	if out, err := c.run(ctx, dest, "fetch", "--depth", "1", "--quiet", "origin", commit); err != nil {
		return &FetchError{Op: "git fetch", Repo: repoURL, Err: wrapOutput(err, out)}
	}
	if out, err := c.run(ctx, dest, "checkout", "--quiet", commit); err != nil {
		return &FetchError{Op: "git checkout", Repo: repoURL, Err: wrapOutput(err, out)}
	}
	return nil
}

// ListTags lists remote tags in listing order. Annotated tags are peeled to
// the commit they point at. No --sort flag: sorting ls-remote by creatordate
// needs the remote's objects locally, which a plain URL never has.
func (c *Client) ListTags(ctx context.Context, repoURL string) ([]ref.Tag, error) {
	out, err := c.run(ctx, "", "ls-remote", "--tags", repoURL)
	if err != nil {
		return nil, &FetchError{Op: "git ls-remote --tags", Repo: repoURL, Err: wrapOutput(err, out)}
	}

	var tags []ref.Tag
	index := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		commit, name := fields[0], strings.TrimPrefix(fields[1], "refs/tags/")

		// A ^{} entry carries the peeled commit of the preceding
		// annotated tag; it replaces the tag object hash.
		if peeled := strings.TrimSuffix(name, "^{}"); peeled != name {
			if i, ok := index[peeled]; ok {
				tags[i].Commit = commit
			}
			continue
		}
		index[name] = len(tags)
		tags = append(tags, ref.Tag{Name: name, Commit: commit})
	}
	return tags, nil
}

// DefaultBranch returns the branch HEAD points at on the remote.
func (c *Client) DefaultBranch(ctx context.Context, repoURL string) (string, error) {
	out, err := c.run(ctx, "", "ls-remote", "--symref", repoURL, "HEAD")
	if err != nil {
		return "", &FetchError{Op: "git ls-remote --symref", Repo: repoURL, Err: wrapOutput(err, out)}
	}

	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "ref:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			return strings.TrimPrefix(fields[1], "refs/heads/"), nil
		}
	}
	return "", &FetchError{Op: "git ls-remote --symref", Repo: repoURL,
		Err: fmt.Errorf("no symref in output")}
}

// RemoteCommit resolves a single ref on the remote without fetching content.
// A commit hash resolves to itself.
func (c *Client) RemoteCommit(ctx context.Context, repoURL, refName string) (string, error) {
	if ref.IsCommitHash(refName) {
		return refName, nil
	}

	out, err := c.run(ctx, "", "ls-remote", repoURL, refName, refName+"^{}")
	if err != nil {
		return "", &FetchError{Op: "git ls-remote", Repo: repoURL, Err: wrapOutput(err, out)}
	}

	commit := ""
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		// Prefer the peeled entry when present.
		if strings.HasSuffix(fields[1], "^{}") {
			return fields[0], nil
		}
		if commit == "" {
			commit = fields[0]
		}
	}
	if commit == "" {
		return "", &FetchError{Op: "git ls-remote", Repo: repoURL,
			Err: fmt.Errorf("ref %q not found on remote", refName)}
	}
	return commit, nil
}

// HeadCommit returns the checked-out commit of a local clone.
func (c *Client) HeadCommit(dir string) string {
	out, err := c.run(context.Background(), dir, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(stderr.String()), err
	}
	return stdout.String(), nil
}

func wrapOutput(err error, out string) error {
	if out == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, out)
}
