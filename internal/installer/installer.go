// Package installer fans installed skill content out to agent target
// directories, either as symlinks to one shared canonical copy or as
// independent copies per target.
package installer

import (
	"io"
	"os"
	"path/filepath"

	"github.com/quangdo/skm/internal/agent"
	"github.com/quangdo/skm/internal/symlink"
)

// Mode selects the installation strategy.
type Mode string

const (
	// ModeSymlink links every target to one shared canonical copy
	ModeSymlink Mode = "symlink"
	// ModeCopy gives every target its own independent copy
	ModeCopy Mode = "copy"
)

// Result is the outcome for a single target. Failures are local: one
// target's result never reflects another's.
type Result struct {
	Success       bool
	Path          string
	Mode          Mode
	CanonicalPath string
	SymlinkFailed bool
	Err           error
}

// Installer performs the per-target fanout.
type Installer struct {
	links *symlink.Manager

	// createLink is swapped out in tests to exercise the copy fallback.
	createLink func(source, target string) error
}

// New creates an installer.
func New() *Installer {
	links := symlink.New()
	return &Installer{links: links, createLink: links.Create}
}

// InstallToAgents installs a skill into every target under root. In symlink
// mode the canonical path is populated once from sourcePath and each target
// gets a link; a failed link falls back to a full copy for that target only.
// In copy mode the canonical step is skipped and every target gets its own
// copy of sourcePath. Every target is always attempted; nothing aborts early.
func (i *Installer) InstallToAgents(sourcePath, canonicalPath, skillName, root string, targets []agent.Target, mode Mode) map[string]Result {
	results := make(map[string]Result, len(targets))

	if mode == ModeSymlink && canonicalPath != sourcePath {
		if _, err := os.Stat(canonicalPath); os.IsNotExist(err) {
			if err := copyTree(sourcePath, canonicalPath); err != nil {
				for _, t := range targets {
					results[t.Name] = Result{Mode: mode, CanonicalPath: canonicalPath, Err: err}
				}
				return results
			}
		}
	}

	for _, t := range targets {
		targetPath := t.SkillPath(root, skillName)
		res := Result{Path: targetPath, Mode: mode}

		// Replace whatever occupies the target path.
		if err := i.links.Remove(targetPath); err != nil {
			res.Err = err
			results[t.Name] = res
			continue
		}

		switch mode {
		case ModeSymlink:
			res.CanonicalPath = canonicalPath
			if err := i.createLink(targetPath, canonicalPath); err != nil {
				res.SymlinkFailed = true
				if copyErr := copyTree(sourcePath, targetPath); copyErr != nil {
					res.Err = copyErr
					results[t.Name] = res
					continue
				}
			}
		default:
			if err := copyTree(sourcePath, targetPath); err != nil {
				res.Err = err
				results[t.Name] = res
				continue
			}
		}

		res.Success = true
		results[t.Name] = res
	}

	return results
}

// UninstallFromAgents removes the skill from every target independently.
// Absence at a target path counts as already uninstalled.
func (i *Installer) UninstallFromAgents(skillName, root string, targets []agent.Target) map[string]bool {
	results := make(map[string]bool, len(targets))
	for _, t := range targets {
		targetPath := t.SkillPath(root, skillName)
		results[t.Name] = i.links.Remove(targetPath) == nil
	}
	return results
}

func copyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
