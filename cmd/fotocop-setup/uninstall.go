package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/prompt"
	"github.com/Elmeric/fotocop/internal/report"
	"github.com/Elmeric/fotocop/internal/setup"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove an installation using its install manifest",
	Long:  "Reads the install manifest from the install root and removes the recorded entries in reverse order, then the manifest, the empty root, the registered metadata and the shortcuts. Without a manifest nothing is touched.",
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().String("root", "", "install root to remove (default: the platform application directory)")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = defaultInstallRoot()
	}

	if !assumeYes && !dryRun {
		confirm := prompt.Stdin()
		ok, err := confirm(fmt.Sprintf("Remove %s from %s?", cfg.Install.AppName, root))
		if err != nil {
			return err
		}
		if !ok {
			log.Info().Msg("uninstall cancelled by user")
			return nil
		}
	}

	session := report.NewSession("uninstall", Version)
	session.DryRun = dryRun
	session.Target = root

	// Metadata and shortcuts are always cleaned here, whatever the current
	// configuration says: removal of an absent record is harmless and this
	// catches state left by an install under earlier settings.
	u := &setup.Uninstaller{
		Root:      root,
		Manifest:  cfg.Install.ManifestName,
		Meta:      setup.NewMetadataStore(cfg.Install.AppName),
		Shortcuts: setup.NewShortcutManager(cfg.Install.AppName, cfg.Install.DesktopShortcut),
		DryRun:    dryRun,
		Log:       log.Logger,
	}

	result, runErr := u.Run(cmd.Context())

	printSteps(result)
	saveSession(session, result, runErr)

	return runErr
}
