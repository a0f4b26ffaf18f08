package release

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// ResolveRemoteHead performs a lightweight ls-remote against the
// package source and returns the commit sha the branch points at,
// without fetching the repository.
func ResolveRemoteHead(source, branch string) (string, error) {
	rem := git.NewRemote(nil, &gitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{source},
	})

	refs, err := rem.List(&git.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("ls-remote %s: %w", source, err)
	}

	branchRef := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == branchRef {
			return ref.Hash().String(), nil
		}
	}

	return "", fmt.Errorf("branch %s not found on %s", branch, source)
}

// PipURL builds the pip requirement string for a git source,
// optionally pinned to a ref. scp-like git@host:path sources are
// rewritten to the ssh:// form pip understands.
func PipURL(source, ref string) string {
	url := source
	if strings.HasPrefix(url, "git@") {
		url = "ssh://" + strings.Replace(url, ":", "/", 1)
	}
	if !strings.HasPrefix(url, "git+") {
		url = "git+" + url
	}
	if ref != "" {
		url += "@" + ref
	}
	return url
}
