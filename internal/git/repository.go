// Package git reads commits and commit messages from a Git repository.
//
// All Git operations are performed by invoking the git binary via os/exec
// rather than through a Go Git library. This keeps behavior identical to
// what the user sees in their terminal, including configured commit
// message encodings.
//
// Every failed git invocation is reported as a model.CLIError with
// ExitGitError so the CLI can map it to the right exit code.
package git

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// Commit is a single commit selected for checkin.
type Commit struct {
	// SHA is the full commit hash.
	SHA string `json:"sha"`

	// Message is the raw commit message, as stored in the commit object.
	Message string `json:"message"`
}

// ShortSHA returns the first seven characters of the commit hash.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Repository runs git commands against one working tree.
type Repository struct {
	path string
	log  zerolog.Logger
}

// Open returns a Repository for the working tree containing path.
// The path is resolved to the top-level directory, so any subdirectory of
// a repository is accepted.
func Open(path string, log zerolog.Logger) (*Repository, error) {
	r := &Repository{path: path, log: log}

	root, err := r.run("rev-parse", "--show-toplevel")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "not inside a Git repository", err)
	}
	r.path = strings.TrimSpace(root)

	return r, nil
}

// Root returns the absolute path of the working tree.
func (r *Repository) Root() string {
	return r.path
}

// ResolveCommit returns the full hash that rev points to.
func (r *Repository) ResolveCommit(rev string) (string, error) {
	if err := checkRev(rev); err != nil {
		return "", err
	}
	out, err := r.run("rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitMessage returns the raw message of the commit rev points to.
//
// The raw body (%B) is used rather than subject plus body so that
// directives on any line, including trailers, are preserved exactly. The
// message keeps the trailing newline git commit stores with it.
func (r *Repository) CommitMessage(rev string) (string, error) {
	if err := checkRev(rev); err != nil {
		return "", err
	}
	out, err := r.run("log", "-1", "--format=%B", rev)
	if err != nil {
		return "", err
	}
	// git log terminates the formatted message with a newline of its own.
	return strings.TrimSuffix(out, "\n"), nil
}

// Commit resolves rev and reads its message.
func (r *Repository) Commit(rev string) (Commit, error) {
	sha, err := r.ResolveCommit(rev)
	if err != nil {
		return Commit{}, err
	}
	msg, err := r.CommitMessage(sha)
	if err != nil {
		return Commit{}, err
	}
	return Commit{SHA: sha, Message: msg}, nil
}

// RevList returns the commits selected by rangeSpec, oldest first.
//
// rangeSpec accepts anything git rev-list does: a single revision selects
// just that commit, while "A..B" selects the commits reachable from B but
// not from A. The oldest-first order is the order in which they would be
// checked in.
func (r *Repository) RevList(rangeSpec string) ([]Commit, error) {
	if err := checkRev(rangeSpec); err != nil {
		return nil, err
	}

	args := []string{"rev-list", "--reverse"}
	if !strings.Contains(rangeSpec, "..") {
		// A bare revision would list its whole history.
		args = append(args, "--max-count=1")
	}
	args = append(args, rangeSpec)

	out, err := r.run(args...)
	if err != nil {
		return nil, err
	}

	var commits []Commit
	for _, sha := range strings.Fields(out) {
		msg, err := r.CommitMessage(sha)
		if err != nil {
			return nil, err
		}
		commits = append(commits, Commit{SHA: sha, Message: msg})
	}
	return commits, nil
}

// checkRev rejects revisions git would parse as options.
func checkRev(rev string) error {
	if rev == "" {
		return model.NewCLIError(model.ExitGitError, "empty revision")
	}
	if strings.HasPrefix(rev, "-") {
		return model.NewCLIError(model.ExitGitError, fmt.Sprintf("invalid revision %q", rev))
	}
	return nil
}

// run executes a git command with the given arguments in the repository.
//
// It captures both stdout and stderr. On success (exit code 0), it returns
// the stdout output. On failure, it returns a model.CLIError with
// ExitGitError code, including the stderr output in the error message.
//
// The repository path is passed via -C so the process working directory
// never changes.
func (r *Repository) run(args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.path}, args...)

	r.log.Debug().Strs("args", args).Str("repo", r.path).Msg("running git")

	// #nosec G204 -- the binary is fixed and revisions pass checkRev
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}
