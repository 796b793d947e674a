package source

import (
	"context"
	"strings"

	"github.com/quangdo/skm/internal/gitcmd"
)

// GitProvider fetches content with shallow git clones
type GitProvider struct {
	git *gitcmd.Client
}

func init() {
	RegisterProvider(&GitProvider{git: gitcmd.New()})
}

func (p *GitProvider) Type() string {
	return "git"
}

func (p *GitProvider) CanHandle(url string) bool {
	patterns := []string{
		"github.com/",
		"gitlab.com/",
		"bitbucket.org/",
		".git",
		"git@",
		"git://",
	}
	for _, pattern := range patterns {
		if strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}

func (p *GitProvider) Fetch(ctx context.Context, url string, destPath string, opts FetchOptions) error {
	if err := p.git.Clone(ctx, url, opts.Ref, destPath); err != nil {
		return &SourceError{Op: "git clone", Source: url, Err: err}
	}
	return nil
}
