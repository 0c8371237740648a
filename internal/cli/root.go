package cli

import (
	"github.com/spf13/cobra"

	"framecheck/internal/services"
)

const Name string = "framecheck"

// NewCommand builds the root command with every subcommand wired to the
// host hardware detector
func NewCommand() *cobra.Command {
	return newCommand(services.NewHostDetector())
}

func newCommand(source services.HardwareSource) *cobra.Command {
	root := &cobra.Command{
		Use:          Name,
		Short:        "FPS estimation and hardware compatibility scoring for game listings",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	root.AddCommand(NewServeCommand())
	root.AddCommand(NewEstimateCommand(source))
	root.AddCommand(NewScoreCommand(source))
	root.AddCommand(NewDetectCommand(source))
	root.AddCommand(NewTokenCommand())
	return root
}
