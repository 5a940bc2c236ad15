package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// redacted replaces a configured token in printed config.
const redacted = "********"

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, the
HOOKWATCH_TOKEN environment variable and flag overrides are applied.
The gateway token is redacted.

Examples:
  hookwatch config
  hookwatch --config hookwatch.yaml config --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(rootOpts, cmd)
		},
	}
	return cmd
}

func runConfig(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if cfg.Gateway.Token != "" {
		cfg.Gateway.Token = redacted
	}

	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if f.IsJSON() {
		// Round-trip through YAML so JSON keys match the file format.
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to convert config: %w", err)
		}
		return f.Success(doc)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
