// Package gitx queries the version-control state of a working directory by
// shelling out to git. User-supplied refs are validated against a restrictive
// allow-list before any process is spawned.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dotsetgreg/claimcheck/internal/logging"
	"github.com/dotsetgreg/claimcheck/internal/model"
)

var (
	// ErrToolUnavailable is returned when the git binary cannot be found
	ErrToolUnavailable = errors.New("git not found in PATH; install git to use diff-aware verification")

	// ErrNotRepository is returned when the working directory is not inside a git repository
	ErrNotRepository = errors.New("not a git repository")

	// ErrInvalidRef is returned when a commit/branch string fails validation
	ErrInvalidRef = errors.New("invalid git ref")
)

// refRe is the allow-list for user-supplied refs: alphanumerics plus / _ . - ^ ~ @ :
var refRe = regexp.MustCompile(`^[A-Za-z0-9/_.\-^~@:]+$`)

const maxRefLen = 256

// DiffSource selects which modified-file set to resolve
type DiffSource string

const (
	SourceStaged  DiffSource = "staged"  // Index vs HEAD
	SourceWorking DiffSource = "working" // Working tree vs index
	SourceAll     DiffSource = "all"     // Union of staged and working
	SourceCommit  DiffSource = "commit"  // Files touched by a single commit
)

// ValidateRef rejects anything outside the ref allow-list.
// Refs starting with "-" are rejected even though "-" is an allowed
// character, to keep them out of argument position.
func ValidateRef(ref string) error {
	if ref == "" || len(ref) > maxRefLen {
		return fmt.Errorf("ref %q: %w", truncateRef(ref), ErrInvalidRef)
	}
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("ref %q: %w", ref, ErrInvalidRef)
	}
	if !refRe.MatchString(ref) {
		return fmt.Errorf("ref %q: %w", ref, ErrInvalidRef)
	}
	return nil
}

func truncateRef(ref string) string {
	if len(ref) > 40 {
		return ref[:40] + "..."
	}
	return ref
}

// Client runs git queries in a fixed working directory
type Client struct {
	dir   string
	cache *gocache.Cache // Memoizes repo checks and commit messages
}

// NewClient creates a git client for the given directory
func NewClient(dir string) *Client {
	return &Client{
		dir:   dir,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// run executes one git command and maps failures onto the error taxonomy
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			diag := strings.TrimSpace(stderr.String())
			if strings.Contains(diag, "not a git repository") {
				return "", fmt.Errorf("%s: %w", c.dir, ErrNotRepository)
			}
			if diag == "" {
				diag = exitErr.String()
			}
			return "", fmt.Errorf("git %s: %s", args[0], diag)
		}
		// Only a missing binary reads as tool-unavailable; cancellation
		// and other launch failures keep their own identity.
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrToolUnavailable
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout.String(), nil
}

// IsRepository reports whether the client directory is inside a git work tree
func (c *Client) IsRepository(ctx context.Context) (bool, error) {
	const key = "is-repo"
	if v, ok := c.cache.Get(key); ok {
		return v.(bool), nil
	}

	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if errors.Is(err, ErrNotRepository) {
			c.cache.Set(key, false, gocache.DefaultExpiration)
			return false, nil
		}
		return false, err
	}

	inside := strings.TrimSpace(out) == "true"
	c.cache.Set(key, inside, gocache.DefaultExpiration)
	return inside, nil
}

// StagedFiles lists files staged in the index, with change status
func (c *Client) StagedFiles(ctx context.Context) ([]model.GitDiffFile, error) {
	out, err := c.run(ctx, "diff", "--name-status", "--cached")
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

// WorkingFiles lists unstaged changes in the working tree
func (c *Client) WorkingFiles(ctx context.Context) ([]model.GitDiffFile, error) {
	out, err := c.run(ctx, "diff", "--name-status")
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

// CommitFiles lists the files touched by a single commit
func (c *Client) CommitFiles(ctx context.Context, ref string) ([]model.GitDiffFile, error) {
	if err := ValidateRef(ref); err != nil {
		return nil, err
	}
	out, err := c.run(ctx, "diff-tree", "--no-commit-id", "--name-status", "-r", ref)
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

// CommitMessage returns the subject line of a commit, memoized because commit
// messages never change for a given ref hash.
func (c *Client) CommitMessage(ctx context.Context, ref string) (string, error) {
	if err := ValidateRef(ref); err != nil {
		return "", err
	}

	key := "msg:" + ref
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}

	out, err := c.run(ctx, "log", "-1", "--format=%s", ref)
	if err != nil {
		return "", err
	}

	msg := strings.TrimSpace(out)
	c.cache.Set(key, msg, gocache.NoExpiration)
	return msg, nil
}

// FilesForSource resolves the modified-file set for a diff source.
// SourceCommit requires a validated commit ref.
func (c *Client) FilesForSource(ctx context.Context, source DiffSource, commit string) ([]model.GitDiffFile, error) {
	switch source {
	case SourceStaged:
		return c.StagedFiles(ctx)
	case SourceWorking:
		return c.WorkingFiles(ctx)
	case SourceCommit:
		return c.CommitFiles(ctx, commit)
	case SourceAll:
		staged, err := c.StagedFiles(ctx)
		if err != nil {
			return nil, err
		}
		working, err := c.WorkingFiles(ctx)
		if err != nil {
			return nil, err
		}
		return mergeDiffFiles(staged, working), nil
	default:
		return nil, fmt.Errorf("unknown diff source %q", source)
	}
}

// parseNameStatus parses "git diff --name-status" output.
// Lines that do not fit the format are skipped.
func parseNameStatus(out string) []model.GitDiffFile {
	var files []model.GitDiffFile
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		status := fields[0]
		switch {
		case strings.HasPrefix(status, "R"), strings.HasPrefix(status, "C"):
			if len(fields) < 3 {
				continue
			}
			files = append(files, model.GitDiffFile{
				Path:    fields[2],
				Status:  model.StatusRenamed,
				OldPath: fields[1],
			})
		case status == "A":
			files = append(files, model.GitDiffFile{Path: fields[1], Status: model.StatusAdded})
		case status == "D":
			files = append(files, model.GitDiffFile{Path: fields[1], Status: model.StatusDeleted})
		case status == "M", status == "T":
			files = append(files, model.GitDiffFile{Path: fields[1], Status: model.StatusModified})
		default:
			logging.L("gitx").Debugw("skipping unknown diff status", "status", status, "line", line)
		}
	}
	return files
}

// mergeDiffFiles unions two diff lists by path, first occurrence wins
func mergeDiffFiles(a, b []model.GitDiffFile) []model.GitDiffFile {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]model.GitDiffFile, 0, len(a)+len(b))
	for _, f := range append(a, b...) {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		merged = append(merged, f)
	}
	return merged
}
