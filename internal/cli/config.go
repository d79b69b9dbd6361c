// config.go implements the "checkin-directives config" command
// and the configuration loading shared by the other commands.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/checkin-directives/internal/config"
	"github.com/mmr-tortoise/checkin-directives/internal/directive"
	"github.com/mmr-tortoise/checkin-directives/internal/git"
	"github.com/mmr-tortoise/checkin-directives/internal/logging"
)

// NewConfigCommand creates the "config" cobra command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective directive configuration",
		Long: `Show the directive grammar in effect: the patterns and keywords used to
recognize work item and force directives.

The configuration is read from --config, or from the first of
.checkin-directives.yaml, .yml, .json, .toml in the repository root.
Without a file the built-in defaults are shown.

Examples:
  checkin-directives config
  checkin-directives config --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd)
		},
	}
}

// runConfig prints the effective configuration.
func runConfig(cmd *cobra.Command) error {
	dir, err := workDir()
	if err != nil {
		return err
	}

	cfg, path, err := config.Resolve(configPath, configSearchDir(dir))
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg, IsJSONOutput())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !IsJSONOutput() {
		source := path
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Fprintf(out, "# source: %s\n", source)
	}
	_, err = out.Write(data)
	return err
}

// loadGrammar resolves the configuration for dir and compiles it.
func loadGrammar(dir string) (*directive.Grammar, error) {
	cfg, path, err := config.Resolve(configPath, configSearchDir(dir))
	if err != nil {
		return nil, err
	}
	if path != "" {
		VerboseLog("Using directive configuration %s", path)
	} else {
		VerboseLog("Using built-in directive grammar")
	}
	return cfg.Grammar()
}

// configSearchDir returns the directory searched for a configuration file:
// the repository root when dir is inside a repository, dir otherwise.
func configSearchDir(dir string) string {
	repo, err := git.Open(dir, logging.Named("git"))
	if err != nil {
		return dir
	}
	return repo.Root()
}
