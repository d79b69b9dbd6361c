// scan.go implements the "checkin-directives scan" command.
//
// The scan command reads one commit message, applies its directives to a
// fresh set of checkin options, and shows the result. The message comes
// from a commit (default HEAD), from --message, or from --file.

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/checkin-directives/internal/checkin"
	"github.com/mmr-tortoise/checkin-directives/internal/directive"
	"github.com/mmr-tortoise/checkin-directives/internal/git"
	"github.com/mmr-tortoise/checkin-directives/internal/logging"
	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// scanFlags holds the flag values for the scan command.
type scanFlags struct {
	message        string // --message: literal commit message
	file           string // --file: read the message from a file, "-" for stdin
	force          bool   // --force: pre-scan force value
	overrideReason string // --override-reason: pre-scan override reason
}

// NewScanCommand creates the "scan" cobra command.
func NewScanCommand() *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan [revision]",
		Short: "Apply the directives of one commit message",
		Long: `Scan a commit message for directives and show the resulting checkin options.

Progress lines are printed for every directive acted upon, followed by the
checkin comment (with directives removed), the work items to associate and
resolve, and the force setting.

Examples:
  checkin-directives scan
  checkin-directives scan HEAD~2
  checkin-directives scan -m "$(cat message.txt)"
  git log -1 --format=%B | checkin-directives scan --file -`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "Commit message to scan instead of a commit")
	cmd.Flags().StringVarP(&flags.file, "file", "F", "", "Read the commit message from a file (\"-\" for stdin)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Force value before the scan")
	cmd.Flags().StringVar(&flags.overrideReason, "override-reason", "", "Override reason before the scan")
	cmd.MarkFlagsMutuallyExclusive("message", "file")

	return cmd
}

// scanResultJSON is the JSON output of the scan command.
type scanResultJSON struct {
	Source  string               `json:"source"`
	Notices []string             `json:"notices"`
	Options model.CheckinOptions `json:"options"`
}

// runScan is the main logic function for the scan command.
func runScan(cmd *cobra.Command, args []string, flags *scanFlags) error {
	// Step 1: Validate the message source.
	literal := cmd.Flags().Changed("message") || flags.file != ""
	if literal && len(args) > 0 {
		return model.NewCLIError(model.ExitGeneralError, "a revision cannot be combined with --message or --file")
	}

	dir, err := workDir()
	if err != nil {
		return err
	}

	// Step 2: Read the message.
	source, message, err := readMessage(cmd, dir, args, flags)
	if err != nil {
		return err
	}
	VerboseLog("Scanning %s (%d bytes)", source, len(message))

	// Step 3: Build the scanner. In JSON mode notices are collected and
	// embedded in the output instead of being printed as they happen.
	grammar, err := loadGrammar(dir)
	if err != nil {
		return err
	}

	var notices bytes.Buffer
	var sink io.Writer = cmd.OutOrStdout()
	if IsJSONOutput() {
		sink = &notices
	}
	scanner, err := directive.NewScanner(grammar, sink, directive.WithLogger(logging.Named("scanner")))
	if err != nil {
		return err
	}

	// Step 4: Scan into options seeded from the flags. The handle restores
	// the seed values once the result has been printed.
	opts := &model.CheckinOptions{Force: flags.force, OverrideReason: flags.overrideReason}
	handle, err := scanner.Scan(opts, message)
	if err != nil {
		return err
	}
	defer handle.Revert()

	// Step 5: Output the result.
	if IsJSONOutput() {
		return printScanResultJSON(cmd.OutOrStdout(), source, notices.String(), opts)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scanned %s\n%s", source, checkin.FormatOptions(*opts))
	return nil
}

// readMessage returns a label for the message source and the message.
func readMessage(cmd *cobra.Command, dir string, args []string, flags *scanFlags) (string, string, error) {
	switch {
	case cmd.Flags().Changed("message"):
		return "message", flags.message, nil

	case flags.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", model.WrapCLIError(model.ExitGeneralError, "failed to read message from stdin", err)
		}
		return "stdin", string(data), nil

	case flags.file != "":
		data, err := os.ReadFile(flags.file) // #nosec G304 -- user-selected input file
		if err != nil {
			return "", "", model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to read message file %s", flags.file), err)
		}
		return flags.file, string(data), nil
	}

	rev := "HEAD"
	if len(args) == 1 {
		rev = args[0]
	}

	repo, err := git.Open(dir, logging.Named("git"))
	if err != nil {
		return "", "", err
	}
	commit, err := repo.Commit(rev)
	if err != nil {
		return "", "", err
	}
	return "commit " + commit.ShortSHA(), commit.Message, nil
}

// printScanResultJSON writes the scan result as indented JSON.
func printScanResultJSON(out io.Writer, source, notices string, opts *model.CheckinOptions) error {
	result := scanResultJSON{
		Source: source,
		// An empty slice renders as [] rather than null.
		Notices: make([]string, 0),
		Options: checkin.Snapshot(opts),
	}
	for _, line := range strings.Split(strings.TrimSuffix(notices, "\n"), "\n") {
		if line != "" {
			result.Notices = append(result.Notices, line)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize scan result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
