package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repoSlug = "s0up4200/agroapi"

var (
	appVersion = "dev"
	appBuilt   = "unknown"
)

// SetVersion records the build information injected at link time
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuilt = buildTime
	rootCmd.Version = version
}

// noConfig skips config loading for commands that never talk to the Agro API
func noConfig(cmd *cobra.Command, args []string) error { return nil }

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:                "version",
	Short:              "Print version information",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  noConfig,
	PersistentPostRunE: noConfig,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agroapi %s\n", appVersion)
		fmt.Printf("  Built:      %s\n", appBuilt)
		fmt.Printf("  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:                "update",
	Short:              "Update agroapi to the latest release",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  noConfig,
	PersistentPostRunE: noConfig,
	RunE:               runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd, updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := semver.ParseTolerant(appVersion)
	if err != nil {
		return fmt.Errorf("cannot update a development build (version %q)", appVersion)
	}

	return selfUpdate(cmd.Context(), current)
}

func selfUpdate(ctx context.Context, current semver.Version) error {
	fmt.Println("Checking for updates...")

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Printf("✓ Already up to date (%s)\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("✓ Updated from %s to %s\n", current, latest.Version())
	return nil
}
