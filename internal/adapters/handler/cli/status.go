package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type StatusOptions struct {
	*RootOptions
	Identity identityFlags
}

func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status <feature> [item-id]",
		Short: "Show today's completions for a feature, or for one item",
		Example: `  ecoquest status tips --user u-1
  ecoquest status quizzes quiz-42 --token "$TOKEN"`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts, args)
		},
	}

	addIdentityFlags(cmd, &opts.Identity)
	return cmd
}

func addIdentityFlags(cmd *cobra.Command, f *identityFlags) {
	cmd.Flags().StringVar(&f.User, "user", "", "user id to act for (empty means guest)")
	cmd.Flags().StringVar(&f.Token, "token", "", "bearer token; its subject becomes the user id")
}

func runStatus(cmd *cobra.Command, opts *StatusOptions, args []string) error {
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

	if len(args) == 2 {
		itemID := args[1]
		completed, err := a.svc.Status(ctx, feature, itemID, userID)
		if err != nil {
			return WrapExitError(ExitCommandError, "status failed", err)
		}

		text := itemID + ": not completed today"
		if completed {
			text = itemID + ": completed today"
		}
		return printResult(cmd.OutOrStdout(), opts.Format, map[string]any{
			"feature":   feature,
			"itemId":    itemID,
			"completed": completed,
		}, text)
	}

	summary, err := a.svc.Summary(ctx, feature, userID)
	if err != nil {
		return WrapExitError(ExitCommandError, "status failed", err)
	}

	who := summary.UserID
	if summary.Guest {
		who = "guest"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s on %s for %s: %d completed", summary.Feature, summary.Date, who, len(summary.CompletedIDs))
	for _, id := range summary.CompletedIDs {
		fmt.Fprintf(&b, "\n  - %s", id)
	}
	return printResult(cmd.OutOrStdout(), opts.Format, summary, b.String())
}
