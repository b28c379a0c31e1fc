// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

var (
	// ErrCloneFailed wraps every clone failure.
	ErrCloneFailed = errors.New("failed to clone repository")

	// ErrRevisionNotFound is returned when a ref names no tag, branch or commit.
	ErrRevisionNotFound = errors.New("revision not found")
)

type (
	// Cloner fetches a repository and moves its worktree to a revision.
	Cloner interface {
		Clone(ctx context.Context, url, dest string) error
		Checkout(ctx context.Context, repoDir, ref string) error
	}

	// GitCloner is the go-git backed Cloner.
	GitCloner struct {
		getenv  func(string) string
		homeDir string
		auth    transport.AuthMethod
	}

	// Option configures a GitCloner.
	Option func(*GitCloner)
)

// WithEnv replaces os.Getenv for token discovery.
func WithEnv(getenv func(string) string) Option {
	return func(c *GitCloner) { c.getenv = getenv }
}

// WithHomeDir sets where ~/.ssh keys are looked up.
func WithHomeDir(home string) Option {
	return func(c *GitCloner) { c.homeDir = home }
}

// WithAuth forces an auth method for every URL.
func WithAuth(auth transport.AuthMethod) Option {
	return func(c *GitCloner) { c.auth = auth }
}

// NewGitCloner creates a GitCloner. Credentials are discovered per URL:
// ssh URLs use the first readable key in ~/.ssh, http(s) URLs use
// GITHUB_TOKEN, GITLAB_TOKEN or GIT_TOKEN, and anything else is anonymous.
func NewGitCloner(opts ...Option) *GitCloner {
	c := &GitCloner{getenv: os.Getenv}
	for _, opt := range opts {
		opt(c)
	}
	if c.homeDir == "" {
		c.homeDir, _ = os.UserHomeDir() //nolint:errcheck // ssh auth is skipped without a home
	}
	return c
}

// Clone clones url into dest. dest must not exist or be empty.
func (c *GitCloner) Clone(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:  url,
		Auth: c.authFor(url),
		Tags: git.AllTags,
	})
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrCloneFailed, url, err)
	}
	return nil
}

// Checkout moves the worktree at repoDir to ref, which may name a tag, a
// branch or a commit. Tags win over branches of the same name.
func (c *GitCloner) Checkout(_ context.Context, repoDir, ref string) error {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return fmt.Errorf("failed to open repository %s: %w", repoDir, err)
	}

	hash, err := resolve(repo, ref)
	if err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", ref, err)
	}
	return nil
}

// resolve maps ref to a commit hash, peeling annotated tags.
func resolve(repo *git.Repository, ref string) (plumbing.Hash, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewTagReferenceName(ref),
		plumbing.NewRemoteReferenceName(git.DefaultRemoteName, ref),
		plumbing.NewBranchReferenceName(ref),
	}
	for _, name := range candidates {
		r, err := repo.Reference(name, true)
		if err != nil {
			continue
		}
		if tagObj, err := repo.TagObject(r.Hash()); err == nil {
			commit, err := tagObj.Commit()
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("tag %s does not point to a commit: %w", ref, err)
			}
			return commit.Hash, nil
		}
		return r.Hash(), nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrRevisionNotFound, ref)
	}
	return *hash, nil
}

func (c *GitCloner) authFor(url string) transport.AuthMethod {
	if c.auth != nil {
		return c.auth
	}
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil
	}
	switch ep.Protocol {
	case "ssh":
		return c.sshAuth()
	case "http", "https":
		return c.httpAuth()
	default:
		return nil
	}
}

func (c *GitCloner) sshAuth() transport.AuthMethod {
	if c.homeDir == "" {
		return nil
	}
	for _, key := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(c.homeDir, ".ssh", key)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func (c *GitCloner) httpAuth() transport.AuthMethod {
	tokens := []struct{ env, user string }{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	}
	for _, tok := range tokens {
		if v := strings.TrimSpace(c.getenv(tok.env)); v != "" {
			return &http.BasicAuth{Username: tok.user, Password: v}
		}
	}
	return nil
}
