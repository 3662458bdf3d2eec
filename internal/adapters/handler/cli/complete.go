package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
	"github.com/ecoquest/ecoquest-engine/internal/core/services"
)

type CompleteOptions struct {
	*RootOptions
	Identity identityFlags
}

func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "complete <feature> <item-id>",
		Short: "Claim the reward for an item, at most once per day",
		Long: `Claim the reward for an item on the reward API and record it for today.

Exits with status 1 when the item was already credited today or the reward
API refused the claim.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, opts, args[0], args[1])
		},
	}

	addIdentityFlags(cmd, &opts.Identity)
	return cmd
}

func runComplete(cmd *cobra.Command, opts *CompleteOptions, rawFeature, itemID string) error {
	feature, err := parseFeatureArg(rawFeature)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := bootstrap(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	userID, token, err := a.resolveIdentity(opts.Identity)
	if err != nil {
		return err
	}

	reward, err := a.svc.Complete(ctx, services.CompleteInput{
		Feature: feature,
		ItemID:  itemID,
		UserID:  userID,
		Token:   token,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return WrapExitError(ExitFailure, itemID+" was already completed today", err)
	case errors.Is(err, domain.ErrInvalidItemID):
		return WrapExitError(ExitCommandError, "invalid item id", err)
	default:
		return WrapExitError(ExitFailure, "reward claim failed", err)
	}

	return printResult(cmd.OutOrStdout(), opts.Format, reward,
		fmt.Sprintf("%s: +%d points", itemID, reward.PointsAwarded))
}
