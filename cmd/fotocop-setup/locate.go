package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/prompt"
	"github.com/Elmeric/fotocop/internal/volume"
)

var locateCmd = &cobra.Command{
	Use:   "locate [label]",
	Short: "Resolve a volume label to its device designator",
	Long:  "Looks the label up in the mounted-volume inventory and prints the matching device designator on stdout. Without an argument the configured device label is used. When the volume is not connected you are asked whether to look again, so the card can be plugged in mid-run.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	label := cfg.Device.Label
	if len(args) == 1 {
		label = args[0]
	}

	enum := volume.FilterKinds(volume.NewSystemEnumerator(), cfg.DeviceKinds()...)
	resolver := volume.NewResolver(enum)

	// --yes turns the retry gate off so scripted runs fail fast instead of
	// waiting on a prompt.
	var retry volume.RetryFunc
	if !assumeYes {
		confirm := prompt.Stdin()
		retry = func() (bool, error) {
			return confirm(fmt.Sprintf("Device %q not found. Check the connection and try again?", label))
		}
	}

	vol, err := volume.Locate(cmd.Context(), resolver, label, retry)
	if err != nil {
		return err
	}

	log.Info().Str("label", vol.Label).Str("device", vol.DeviceID).Str("kind", vol.Kind.String()).Msg("device resolved")
	fmt.Fprintln(cmd.OutOrStdout(), vol.DeviceID)
	return nil
}
