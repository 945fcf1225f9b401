package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/prompt"
	"github.com/Elmeric/fotocop/internal/report"
	"github.com/Elmeric/fotocop/internal/setup"
)

var installCmd = &cobra.Command{
	Use:   "install <staging-dir>",
	Short: "Install the staged payload into the install root",
	Long:  "Records the top-level entries of the staging directory in the install manifest, copies them into the install root, and registers the installation so it can be removed later.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().String("root", "", "install root (default: the platform application directory)")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	staging := args[0]
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = defaultInstallRoot()
	}

	if !assumeYes && !dryRun {
		confirm := prompt.Stdin()
		ok, err := confirm(fmt.Sprintf("Install %s %s to %s?", cfg.Install.AppName, cfg.Install.Version, root))
		if err != nil {
			return err
		}
		if !ok {
			log.Info().Msg("install cancelled by user")
			return nil
		}
	}

	session := report.NewSession("install", Version)
	session.DryRun = dryRun
	session.Target = root

	ins := &setup.Installer{
		Staging:  staging,
		Root:     root,
		Manifest: cfg.Install.ManifestName,
		Info:     installInfo(root),
		DryRun:   dryRun,
		Log:      log.Logger,
	}
	if cfg.Install.RegisterUninstall {
		ins.Meta = setup.NewMetadataStore(cfg.Install.AppName)
	}
	if cfg.Install.CreateShortcuts {
		ins.Shortcuts = setup.NewShortcutManager(cfg.Install.AppName, cfg.Install.DesktopShortcut)
	}

	result, runErr := ins.Run(cmd.Context())

	printSteps(result)
	saveSession(session, result, runErr)

	return runErr
}

// installInfo assembles the metadata record for the new installation.
func installInfo(root string) setup.InstallInfo {
	info := setup.InstallInfo{
		DisplayName: cfg.Install.AppName,
		Version:     cfg.Install.Version,
		Publisher:   cfg.Install.Publisher,
	}

	if exe, err := os.Executable(); err == nil {
		info.UninstallString = fmt.Sprintf(`"%s" uninstall --root "%s"`, exe, root)
	}
	if runtime.GOOS == "windows" {
		info.DisplayIcon = filepath.Join(root, "fotocop.exe")
	}

	return info
}

// defaultInstallRoot is where the application lands when --root is not given.
func defaultInstallRoot() string {
	switch runtime.GOOS {
	case "windows":
		programFiles := os.Getenv("ProgramFiles")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		return filepath.Join(programFiles, cfg.Install.AppName)
	case "darwin":
		return filepath.Join("/Applications", cfg.Install.AppName)
	default:
		return filepath.Join("/opt", "fotocop")
	}
}
