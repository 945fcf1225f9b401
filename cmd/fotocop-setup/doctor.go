package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/setup"
	"github.com/Elmeric/fotocop/internal/volume"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment the setup tool depends on",
	Long:  "Probes the volume inventory, the configured device, the install root and the registered metadata, and reports what a real run would find.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	name   string
	status string
	detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var checks []doctorCheck
	add := func(name, status, detail string) {
		checks = append(checks, doctorCheck{name: name, status: status, detail: detail})
	}

	enum := volume.NewSystemEnumerator()
	vols, enumErr := enum.Enumerate(ctx)
	if enumErr != nil {
		add("volume inventory", "fail", enumErr.Error())
	} else {
		add("volume inventory", "ok", fmt.Sprintf("%d volumes visible", len(vols)))

		resolver := volume.NewResolver(volume.FilterKinds(enum, cfg.DeviceKinds()...))
		vol, err := resolver.Resolve(ctx, cfg.Device.Label)
		switch {
		case err == nil:
			add("configured device", "ok", fmt.Sprintf("%q is %s", cfg.Device.Label, vol.DeviceID))
		case errors.Is(err, volume.ErrNotFound):
			add("configured device", "warn", fmt.Sprintf("%q is not connected", cfg.Device.Label))
		default:
			add("configured device", "fail", err.Error())
		}
	}

	root := defaultInstallRoot()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		add("install root", "ok", fmt.Sprintf("%s not present", root))
	} else if err != nil {
		add("install root", "warn", err.Error())
	} else {
		entries, err := setup.ReadManifest(root, cfg.Install.ManifestName)
		switch {
		case err == nil:
			add("install manifest", "ok", fmt.Sprintf("%d entries recorded in %s", len(entries), root))
		case errors.Is(err, setup.ErrRecordMissing):
			add("install manifest", "warn", fmt.Sprintf("%s exists but carries no manifest, uninstall would abort", root))
		default:
			add("install manifest", "fail", err.Error())
		}
	}

	if info, err := setup.NewMetadataStore(cfg.Install.AppName).Probe(); err == nil {
		add("install metadata", "ok", fmt.Sprintf("registered version %s", info.Version))
	} else {
		add("install metadata", "ok", "not registered")
	}

	switch {
	case setup.IsElevated():
		add("privileges", "ok", "elevated")
	case cfg.Install.RegisterUninstall:
		add("privileges", "warn", "not elevated, machine-wide registration may fail")
	default:
		add("privileges", "ok", "not elevated")
	}

	if cfg.Reporting.Enabled {
		if err := checkWritable(cfg.Reporting.Dir); err != nil {
			add("report directory", "fail", err.Error())
		} else {
			add("report directory", "ok", cfg.Reporting.Dir)
		}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Check", "Status", "Detail"})
	for _, check := range checks {
		tw.AppendRow(table.Row{check.name, check.status, check.detail})
	}
	tw.Render()

	// A dead inventory backend is the one finding a run cannot work around.
	if enumErr != nil {
		return fmt.Errorf("volume inventory unavailable: %w", enumErr)
	}
	return nil
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
