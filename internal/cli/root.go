// Package cli implements the yadis command line tool.
package cli

import (
	"github.com/spf13/cobra"
)

// version is set at build time
var version = "dev"

type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the yadis command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "yadis",
		Short: "Yadis and XRI service discovery",
		Long: `Yadis and XRI service discovery.

yadis locates the XRDS document of a URL or XRI identifier, following
X-XRDS-Location headers and HTML meta hints, and lists the services it
advertises in priority order.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides config)")

	cmd.AddCommand(
		newDiscoverCommand(opts),
		newTranslateCommand(opts),
		newCanonicalCommand(opts),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
