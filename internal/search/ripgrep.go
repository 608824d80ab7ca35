// Package search runs reference searches through ripgrep's machine-parseable
// JSON output. Ripgrep is consumed as a black-box external process; malformed
// output records are skipped rather than failing the whole search.
package search

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dotsetgreg/claimcheck/internal/logging"
	"github.com/dotsetgreg/claimcheck/internal/model"
)

// ErrToolUnavailable is returned when the ripgrep binary cannot be found
var ErrToolUnavailable = errors.New("ripgrep (rg) not found in PATH; install it from https://github.com/BurntSushi/ripgrep")

// defaultExcludes are always skipped unless the caller overrides them:
// dependency directories, build output, and version-control metadata.
var defaultExcludes = []string{
	"node_modules/**",
	".git/**",
	"vendor/**",
	"dist/**",
	"build/**",
	"target/**",
	"out/**",
	".next/**",
	"coverage/**",
	"*.min.js",
	"*.map",
	"*.lock",
	"package-lock.json",
}

// Options configure a single search invocation
type Options struct {
	CaseSensitive     bool
	ContextLines      int
	IncludeGlobs      []string
	ExcludeGlobs      []string // Merged with the default exclude list
	NoDefaultExcludes bool     // Skip the default exclude list entirely
	RespectGitignore  bool
}

// OptionsFromConfig maps the search section of the config onto Options
func OptionsFromConfig(cfg model.SearchConfig) Options {
	return Options{
		CaseSensitive:    cfg.CaseSensitive,
		ContextLines:     cfg.ContextLines,
		IncludeGlobs:     cfg.IncludeGlobs,
		ExcludeGlobs:     cfg.ExcludeGlobs,
		RespectGitignore: cfg.RespectGitignore,
	}
}

// Result holds the structured outcome of one search
type Result struct {
	References    []model.Reference
	FilesSearched int
}

// Client runs searches against a working directory
type Client struct {
	binary string
}

// NewClient creates a search client using the rg binary from PATH
func NewClient() *Client {
	return &Client{binary: "rg"}
}

// Search runs one literal-pattern search under dir.
// A "no matches" exit from the tool is success with an empty reference list;
// a missing binary or a genuine tool failure is an error.
func (c *Client) Search(ctx context.Context, pattern, dir string, opts Options) (*Result, error) {
	if _, err := exec.LookPath(c.binary); err != nil {
		return nil, ErrToolUnavailable
	}

	args := c.buildArgs(pattern, opts)
	logging.L("search").Debugw("running ripgrep", "pattern", pattern, "dir", dir)

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Exit code 1 means the search ran fine and found nothing
			if exitErr.ExitCode() == 1 {
				return &Result{References: []model.Reference{}}, nil
			}
			diag := strings.TrimSpace(stderr.String())
			if diag == "" {
				diag = exitErr.String()
			}
			return nil, fmt.Errorf("search tool failed: %s", diag)
		}
		return nil, fmt.Errorf("launch search tool: %w", err)
	}

	result := parseJSONOutput(stdout.Bytes(), pattern, opts.ContextLines)
	return result, nil
}

// buildArgs assembles the ripgrep argument list for one pattern
func (c *Client) buildArgs(pattern string, opts Options) []string {
	args := []string{"--json", "--fixed-strings"}

	if opts.CaseSensitive {
		args = append(args, "--case-sensitive")
	} else {
		args = append(args, "--ignore-case")
	}
	if opts.ContextLines > 0 {
		args = append(args, "--context", strconv.Itoa(opts.ContextLines))
	}
	if !opts.RespectGitignore {
		args = append(args, "--no-ignore")
	}

	for _, g := range opts.IncludeGlobs {
		args = append(args, "--glob", g)
	}
	if !opts.NoDefaultExcludes {
		for _, g := range defaultExcludes {
			args = append(args, "--glob", "!"+g)
		}
	}
	for _, g := range opts.ExcludeGlobs {
		args = append(args, "--glob", "!"+g)
	}

	args = append(args, "--", pattern, ".")
	return args
}

// rgEvent is one line of ripgrep --json output
type rgEvent struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		Lines struct {
			Text string `json:"text"`
		} `json:"lines"`
		LineNumber int `json:"line_number"`
		Submatches []struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"submatches"`
		Stats struct {
			Searches          int `json:"searches"`
			SearchesWithMatch int `json:"searches_with_match"`
		} `json:"stats"`
	} `json:"data"`
}

type contextLine struct {
	line int
	text string
}

// parseJSONOutput converts a stream of ripgrep JSON records into References.
// Records that fail to parse are skipped; context records are attached to the
// matches they surround after the full stream is read.
func parseJSONOutput(out []byte, variant string, contextLines int) *Result {
	var refs []model.Reference
	ctxByFile := make(map[string][]contextLine)
	filesSearched := 0

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		var ev rgEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue // Malformed record, skip
		}

		switch ev.Type {
		case "match":
			col := 1
			if len(ev.Data.Submatches) > 0 {
				col = ev.Data.Submatches[0].Start + 1
			}
			refs = append(refs, model.Reference{
				File:    normalizePath(ev.Data.Path.Text),
				Line:    ev.Data.LineNumber,
				Column:  col,
				Content: strings.TrimRight(ev.Data.Lines.Text, "\r\n"),
				Variant: variant,
			})
		case "context":
			file := normalizePath(ev.Data.Path.Text)
			ctxByFile[file] = append(ctxByFile[file], contextLine{
				line: ev.Data.LineNumber,
				text: strings.TrimRight(ev.Data.Lines.Text, "\r\n"),
			})
		case "summary":
			filesSearched = ev.Data.Stats.Searches
		}
	}

	attachContext(refs, ctxByFile, contextLines)
	return &Result{References: refs, FilesSearched: filesSearched}
}

// attachContext pairs context records with the matches within window lines.
// Context records only appear when a window was requested.
func attachContext(refs []model.Reference, ctxByFile map[string][]contextLine, window int) {
	if len(ctxByFile) == 0 || window <= 0 {
		return
	}
	for i := range refs {
		for _, cl := range ctxByFile[refs[i].File] {
			d := cl.line - refs[i].Line
			if d >= -window && d <= window && d != 0 {
				refs[i].ContextLines = append(refs[i].ContextLines, cl.text)
			}
		}
	}
}

// normalizePath strips the leading "./" ripgrep prints for relative paths
func normalizePath(p string) string {
	return strings.TrimPrefix(p, "./")
}
