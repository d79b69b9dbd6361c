// checkin.go implements the "checkin-directives checkin" command.
//
// The checkin command walks a range of commits oldest first and runs each
// one through the checkin driver: scan the message, check in, revert. The
// shipped checkin target is a dry run that reports the options each
// commit would be checked in with.

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/checkin-directives/internal/checkin"
	"github.com/mmr-tortoise/checkin-directives/internal/directive"
	"github.com/mmr-tortoise/checkin-directives/internal/git"
	"github.com/mmr-tortoise/checkin-directives/internal/logging"
	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// checkinFlags holds the flag values for the checkin command.
type checkinFlags struct {
	force          bool   // --force: force value every checkin starts from
	overrideReason string // --override-reason: override reason every checkin starts from
}

// NewCheckinCommand creates the "checkin" cobra command.
func NewCheckinCommand() *cobra.Command {
	flags := &checkinFlags{}

	cmd := &cobra.Command{
		Use:   "checkin [revision-range]",
		Short: "Dry-run the checkin of a range of commits",
		Long: `Check in every commit of a revision range, oldest first, without contacting
a server.

Each commit starts from the same options (set with --force and
--override-reason), has its message directives applied, is reported, and
then has its directives reverted before the next commit.

The range defaults to HEAD. A single revision selects just that commit;
"A..B" selects the commits reachable from B but not from A.

Examples:
  checkin-directives checkin
  checkin-directives checkin origin/main..HEAD
  checkin-directives checkin --json HEAD~5..HEAD`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			rangeSpec := "HEAD"
			if len(args) == 1 {
				rangeSpec = args[0]
			}
			return runCheckin(cmd, rangeSpec, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Force every checkin unless a commit says otherwise")
	cmd.Flags().StringVar(&flags.overrideReason, "override-reason", "", "Override reason used with --force")

	return cmd
}

// runCheckin is the main orchestration function for the checkin command.
func runCheckin(cmd *cobra.Command, rangeSpec string, flags *checkinFlags) error {
	dir, err := workDir()
	if err != nil {
		return err
	}

	// Step 1: Open the repository and select the commits.
	repo, err := git.Open(dir, logging.Named("git"))
	if err != nil {
		return err
	}
	VerboseLog("Repository: %s", repo.Root())

	commits, err := repo.RevList(rangeSpec)
	if err != nil {
		return err
	}
	VerboseLog("Selected %d commits from %s", len(commits), rangeSpec)

	// Step 2: Build the scanner. Notices go to stderr in JSON mode so
	// stdout stays valid JSON.
	grammar, err := loadGrammar(repo.Root())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	noticeSink := out
	if IsJSONOutput() {
		noticeSink = cmd.ErrOrStderr()
	}
	scanner, err := directive.NewScanner(grammar, noticeSink, directive.WithLogger(logging.Named("scanner")))
	if err != nil {
		return err
	}

	// Step 3: Run every commit through the driver.
	var report io.Writer
	if !IsJSONOutput() {
		report = out
	}
	target := checkin.NewDryRun(report)
	opts := &model.CheckinOptions{Force: flags.force, OverrideReason: flags.overrideReason}
	driver := checkin.NewDriver(scanner, target, opts, logging.Named("checkin"))

	n, runErr := driver.Run(cmd.Context(), commits)

	// Step 4: Output results, including partial ones on failure.
	if IsJSONOutput() {
		if err := printCheckinResultJSON(out, target.Results()); err != nil {
			return err
		}
	} else {
		printCheckinSummary(out, n, len(commits))
	}
	return runErr
}

// printCheckinResultJSON writes the recorded checkins as indented JSON.
func printCheckinResultJSON(out io.Writer, results []checkin.Result) error {
	type resultJSON struct {
		Checkins []checkin.Result `json:"checkins"`
	}

	payload := resultJSON{Checkins: make([]checkin.Result, 0, len(results))}
	payload.Checkins = append(payload.Checkins, results...)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkin results: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// printCheckinSummary writes a one-line summary after the per-commit reports.
func printCheckinSummary(out io.Writer, done, total int) {
	switch {
	case total == 0:
		fmt.Fprintln(out, "No commits to check in.")
	case done == total:
		fmt.Fprintf(out, "%d of %d commits checked in (dry run).\n", done, total)
	default:
		fmt.Fprintf(out, "Stopped after %d of %d commits.\n", done, total)
	}
}
