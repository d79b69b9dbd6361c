package checkin

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mmr-tortoise/checkin-directives/internal/git"
	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// Result is what a checkin of one commit would have sent.
type Result struct {
	Commit  string               `json:"commit"`
	Options model.CheckinOptions `json:"options"`
}

// DryRun is a Checkinner that records the options instead of checking in.
// When constructed with a writer it also prints a text report per commit.
type DryRun struct {
	out     io.Writer
	results []Result
}

// NewDryRun creates a DryRun. out may be nil to only record results.
func NewDryRun(out io.Writer) *DryRun {
	return &DryRun{out: out}
}

// Checkin records a snapshot of opts for commit.
func (d *DryRun) Checkin(_ context.Context, commit git.Commit, opts *model.CheckinOptions) error {
	r := Result{Commit: commit.SHA, Options: Snapshot(opts)}
	d.results = append(d.results, r)

	if d.out != nil {
		if _, err := io.WriteString(d.out, FormatResult(commit.ShortSHA(), r.Options)); err != nil {
			return fmt.Errorf("failed to write dry-run report: %w", err)
		}
	}
	return nil
}

// Snapshot returns a deep copy of opts for reporting. Empty work item
// lists are non-nil so they encode as [] rather than null.
func Snapshot(opts *model.CheckinOptions) model.CheckinOptions {
	c := opts.Clone()
	if c.WorkItemsToAssociate == nil {
		c.WorkItemsToAssociate = make([]string, 0)
	}
	if c.WorkItemsToResolve == nil {
		c.WorkItemsToResolve = make([]string, 0)
	}
	return c
}

// Results returns the recorded results in checkin order.
func (d *DryRun) Results() []Result {
	return d.results
}

// FormatResult renders the options of one checkin as an indented text block:
//
//	Checkin 1a2b3c4 (dry run)
//	  comment:   Fix login timeout
//	  associate: 1234
//	  resolve:   -
//	  force:     no
func FormatResult(label string, opts model.CheckinOptions) string {
	return fmt.Sprintf("Checkin %s (dry run)\n", label) + FormatOptions(opts)
}

// FormatOptions renders the fields of opts, one indented line per field.
// Continuation lines of a multi-line comment are aligned with the values.
// A single trailing newline of the comment, as git stores it, is not shown.
func FormatOptions(opts model.CheckinOptions) string {
	var b strings.Builder

	comment := strings.TrimSuffix(opts.CheckinComment, "\n")
	fmt.Fprintf(&b, "  comment:   %s\n", indentContinuation(comment))
	fmt.Fprintf(&b, "  associate: %s\n", formatList(opts.WorkItemsToAssociate))
	fmt.Fprintf(&b, "  resolve:   %s\n", formatList(opts.WorkItemsToResolve))
	if opts.Force {
		fmt.Fprintf(&b, "  force:     yes (%s)\n", opts.OverrideReason)
	} else {
		b.WriteString("  force:     no\n")
	}

	return b.String()
}

// formatList joins work item identifiers, or returns "-" for none.
func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}

// indentContinuation aligns the lines after the first with the value column.
func indentContinuation(s string) string {
	return strings.ReplaceAll(s, "\n", "\n             ")
}
