package cli

import (
	"github.com/spf13/cobra"
)

type ClearOptions struct {
	*RootOptions
	Identity identityFlags
}

func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "clear <feature>",
		Short:         "Forget today's completions for a feature",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, err := parseFeatureArg(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := bootstrap(ctx, opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.Close()

			userID, _, err := a.resolveIdentity(opts.Identity)
			if err != nil {
				return err
			}

			if err := a.svc.Clear(ctx, feature, userID); err != nil {
				return WrapExitError(ExitCommandError, "clear failed", err)
			}
			return printResult(cmd.OutOrStdout(), opts.Format,
				map[string]any{"feature": feature, "cleared": true},
				"cleared "+feature.String())
		},
	}

	addIdentityFlags(cmd, &opts.Identity)
	return cmd
}
