package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/interop-labs/modreg/internal/branding"
	"github.com/interop-labs/modreg/internal/config"
	"github.com/interop-labs/modreg/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	projectDir string
	logLevel   string
	logFormat  string
)

// appFs is the filesystem every command reads and writes through.
var appFs afero.Fs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` reads the installed packages of a project, orders them so that every
package follows its dependencies, collects the module factories they declare
and writes them, sorted by priority, into a registry the application loads
at startup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// flagKeys maps string flags to the settings they override.
var flagKeys = map[string]string{
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
	"output":     config.KeyOutput,
	"format":     config.KeyFormat,
}

// setup resolves settings for the command and returns a context carrying a
// logger tagged with a fresh run id.
func setup(cmd *cobra.Command) (*config.Config, context.Context, error) {
	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving project directory: %w", err)
	}

	overrides := make(map[string]any)
	flags := cmd.Flags()
	for flag, key := range flagKeys {
		if flags.Lookup(flag) == nil || !flags.Changed(flag) {
			continue
		}
		val, err := flags.GetString(flag)
		if err != nil {
			return nil, nil, err
		}
		overrides[key] = val
	}
	if flags.Lookup("no-dev") != nil && flags.Changed("no-dev") {
		noDev, err := flags.GetBool("no-dev")
		if err != nil {
			return nil, nil, err
		}
		overrides[config.KeyIncludeDev] = !noDev
	}

	cfg, err := config.Load(dir, overrides)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()).
		With("run_id", uuid.NewString())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return cfg, logging.WithLogger(ctx, logger), nil
}
