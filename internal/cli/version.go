package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interop-labs/modreg/internal/artifact"
	"github.com/interop-labs/modreg/internal/branding"
	"github.com/interop-labs/modreg/internal/config"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	rootCmd.AddCommand(versionCmd)
}

// versionInfo is the build identity plus the defaults a registry is
// generated with when no settings override them.
type versionInfo struct {
	Version          string   `json:"version"`
	Commit           string   `json:"commit"`
	Date             string   `json:"date"`
	GoVersion        string   `json:"go_version"`
	Formats          []string `json:"formats"`
	DefaultFormat    string   `json:"default_format"`
	Namespace        string   `json:"namespace"`
	FactoryKey       string   `json:"factory_key"`
	InstallerPackage string   `json:"installer_package"`
}

func currentVersionInfo() versionInfo {
	return versionInfo{
		Version:          buildVersion,
		Commit:           buildCommit,
		Date:             buildDate,
		GoVersion:        runtime.Version(),
		Formats:          artifact.Formats(),
		DefaultFormat:    config.Default(config.KeyFormat),
		Namespace:        config.Default(config.KeyNamespace),
		FactoryKey:       config.Default(config.KeyFactoryKey),
		InstallerPackage: config.Default(config.KeyInstallerPackage),
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		info := currentVersionInfo()

		switch {
		case versionShort:
			fmt.Fprintln(out, info.Version)
		case versionJSON:
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
		default:
			printVersion(out, info)
		}
		return nil
	},
}

func printVersion(w io.Writer, info versionInfo) {
	fmt.Fprintf(w, "%s %s (commit: %s, built: %s, %s)\n", branding.CLIName(), info.Version, info.Commit, info.Date, info.GoVersion)
	fmt.Fprintf(w, "  formats:    %s (default %s)\n", strings.Join(info.Formats, ", "), info.DefaultFormat)
	fmt.Fprintf(w, "  factories:  extra.%s.%s\n", info.Namespace, info.FactoryKey)
	fmt.Fprintf(w, "  installer:  %s\n", info.InstallerPackage)
}
