package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTranslateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <identifier>...",
		Short: "Print the URL an identifier resolves to",
		Long: `Print the URL an identifier resolves to.

URLs are printed unchanged. XRIs are translated into a URL on the
configured proxy resolver. No network requests are made.`,
		Example: `  yadis translate =example xri://@example*foo`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r, err := a.resolver()
			if err != nil {
				return err
			}
			for _, id := range args {
				resolved, err := r.Resolve(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resolved)
			}
			return nil
		},
	}
}

func newCanonicalCommand(root *rootOptions) *cobra.Command {
	var (
		serviceType string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "canonical <xri>",
		Short: "Look up the canonical ID of an XRI",
		Long: `Look up the canonical ID of an XRI.

The XRDS document of the XRI is requested from the proxy resolver and its
last CanonicalID is printed. An XRI without a canonical ID is not an error.`,
		Example: `  yadis canonical =example
  yadis canonical =example --type http://specs.openid.net/auth/2.0/signon`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.Background()) }()

			r, err := a.resolver()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			id, ok, err := r.CanonicalID(ctx, args[0], serviceType)
			if err != nil {
				return fmt.Errorf("looking up canonical ID of %s: %w", args[0], err)
			}
			if !ok {
				a.logger.Info("no canonical ID", "xri", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&serviceType, "type", "t", "", "ask the proxy for services of this type")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "request timeout")

	return cmd
}
