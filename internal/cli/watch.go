package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/interop-labs/modreg/internal/generator"
	"github.com/interop-labs/modreg/internal/logging"
	"github.com/interop-labs/modreg/internal/watch"
)

var (
	watchOutput string
	watchFormat string
	watchNoDev  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the registry whenever the lock file or manifest changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Registry file path (default from settings)")
	watchCmd.Flags().StringVar(&watchFormat, "format", "", "Registry format (php, hcl)")
	watchCmd.Flags().BoolVar(&watchNoDev, "no-dev", false, "Skip development packages")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := generator.New(appFs, cfg, buildVersion)
	out := cmd.OutOrStdout()

	regenerate := func(ctx context.Context) error {
		fmt.Fprintln(out, okStyle.Render("Compiling modules list"))
		_, err := gen.Run(ctx, nil)
		return err
	}
	if err := regenerate(ctx); err != nil {
		logging.FromContext(ctx).Error("initial generation failed", "error", err)
	}

	c := gen.Catalog()
	fmt.Fprintf(out, "Watching %s and %s (Ctrl+C to stop)\n", c.LockPath(), c.ManifestPath())
	return watch.New([]string{c.LockPath(), c.ManifestPath()}, cfg.WatchDebounce, regenerate).Run(ctx)
}
