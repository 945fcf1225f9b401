package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/volume"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for volume arrivals and removals",
	Long:  "Polls the volume inventory and prints one line per change until interrupted. With --label the command ends successfully as soon as a volume with that label arrives, so scripts can block until the card is plugged in.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("label", "", "exit as soon as a volume with this label arrives")
	watchCmd.Flags().Duration("interval", 0, "poll interval (default: the configured poll_interval)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	awaited, _ := cmd.Flags().GetString("label")
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = cfg.GetPollInterval()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	enum := volume.FilterKinds(volume.NewSystemEnumerator(), cfg.DeviceKinds()...)
	out := cmd.OutOrStdout()

	// The watcher reports changes only, so a volume mounted before the
	// command started never produces an event.
	if v, ok := awaitedAlreadyPresent(ctx, enum, awaited); ok {
		fmt.Fprintf(out, "%s  present  %s  %q (%s, %s)\n",
			time.Now().Format("15:04:05"), v.DeviceID, v.Label, v.Kind, v.Filesystem)
		log.Info().Str("label", v.Label).Str("device", v.DeviceID).Msg("awaited volume already present")
		return nil
	}

	watcher := volume.NewWatcher(enum, interval)

	log.Info().Dur("interval", interval).Msg("watching volumes, Ctrl+C to stop")

	for event := range watcher.Watch(ctx) {
		stamp := time.Now().Format("15:04:05")
		switch event.Type {
		case volume.Added:
			mark := ""
			if volume.EqualLabels(event.Volume.Label, cfg.Device.Label) {
				mark = "  <- configured device"
			}
			fmt.Fprintf(out, "%s  added    %s  %q (%s, %s)%s\n",
				stamp, event.Volume.DeviceID, event.Volume.Label, event.Volume.Kind, event.Volume.Filesystem, mark)

			if awaited != "" && volume.EqualLabels(event.Volume.Label, awaited) {
				log.Info().Str("label", event.Volume.Label).Str("device", event.Volume.DeviceID).Msg("awaited volume arrived")
				return nil
			}
		case volume.Removed:
			fmt.Fprintf(out, "%s  removed  %s  %q\n",
				stamp, event.Volume.DeviceID, event.Volume.Label)
		}
	}

	return nil
}

// awaitedAlreadyPresent resolves label against the current inventory. An
// empty label, an absent volume or a failed query all report false and leave
// the decision to the event loop.
func awaitedAlreadyPresent(ctx context.Context, enum volume.Enumerator, label string) (volume.Volume, bool) {
	if label == "" {
		return volume.Volume{}, false
	}
	v, err := volume.NewResolver(enum).Resolve(ctx, label)
	if err != nil {
		return volume.Volume{}, false
	}
	return v, true
}
