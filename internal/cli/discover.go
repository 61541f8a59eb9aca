package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type discoverOptions struct {
	types   []string
	output  string
	timeout time.Duration
}

func newDiscoverCommand(root *rootOptions) *cobra.Command {
	opts := &discoverOptions{}

	cmd := &cobra.Command{
		Use:   "discover <identifier>...",
		Short: "Discover the services of URLs or XRIs",
		Long: `Discover the services of URLs or XRIs.

Each identifier is resolved (XRIs through the configured proxy), its XRDS
document is located and the advertised services are printed in priority
order. With --type only services of the given types are shown.`,
		Example: `  yadis discover https://example.com/alice
  yadis discover =example --type http://specs.openid.net/auth/2.0/signon -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.types, "type", "t", nil, "only show services of this type (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatText, "output format: text, json or yaml")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall timeout per identifier")

	return cmd
}

func runDiscover(cmd *cobra.Command, root *rootOptions, opts *discoverOptions, args []string) error {
	switch opts.output {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	a, err := newApp(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.Background()) }()

	d, err := a.discoverer()
	if err != nil {
		return err
	}

	for _, id := range args {
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
		result, err := d.Discover(ctx, id)
		cancel()
		if err != nil {
			return fmt.Errorf("discovering %s: %w", id, err)
		}

		services := result.Services
		if len(opts.types) > 0 {
			services = services.ByType(opts.types...)
		}
		if err := writeResult(cmd.OutOrStdout(), opts.output, newResultView(result, services)); err != nil {
			return err
		}
	}
	return nil
}
