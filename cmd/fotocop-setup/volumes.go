package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/volume"
)

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List the mounted volumes visible to the resolver",
	RunE:  runVolumes,
}

func init() {
	volumesCmd.Flags().Bool("all", false, "include volumes outside the configured device kinds")
	rootCmd.AddCommand(volumesCmd)
}

func runVolumes(cmd *cobra.Command, args []string) error {
	enum := volume.NewSystemEnumerator()
	if all, _ := cmd.Flags().GetBool("all"); !all {
		enum = volume.FilterKinds(enum, cfg.DeviceKinds()...)
	}

	vols, err := enum.Enumerate(cmd.Context())
	if err != nil {
		return err
	}

	if len(vols) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No volumes found.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Device", "Label", "Kind", "Filesystem", "Total", "Free"})
	for _, v := range vols {
		tw.AppendRow(table.Row{v.DeviceID, v.Label, v.Kind, v.Filesystem, formatBytes(v.TotalBytes), formatBytes(v.FreeBytes)})
	}
	tw.Render()

	return nil
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n > 0:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return "-"
	}
}
