package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List saved session reports, newest first",
	RunE:  runReports,
}

func init() {
	reportsCmd.Flags().String("dir", "", "report directory (default: the configured reporting dir)")
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Reporting.Dir
	}

	paths, err := report.List(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No reports found in %s.\n", dir)
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"File", "Command", "When", "Exit", "OK", "Failed"})
	for _, path := range paths {
		session, err := report.Load(path)
		if err != nil {
			tw.AppendRow(table.Row{filepath.Base(path), "-", "-", "-", "-", "unreadable"})
			continue
		}
		tw.AppendRow(table.Row{
			filepath.Base(path),
			session.Command,
			session.Timestamp.Format("2006-01-02 15:04:05"),
			session.ExitCode,
			session.Summary.OK,
			session.Summary.Failed,
		})
	}
	tw.Render()

	return nil
}
