package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interop-labs/modreg/internal/catalog"
	"github.com/interop-labs/modreg/internal/generator"
)

// ErrStale is returned by check when the registry is missing or out of date.
var ErrStale = errors.New("module registry is out of date")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the registry is up to date",
	Long: `Compare the registry file with the lock file and root manifest. The command
fails when the registry is missing or older than either input. A project whose
packages declare no module factories needs no registry and always passes.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := setup(cmd)
	if err != nil {
		return err
	}

	gen := generator.New(appFs, cfg, buildVersion)
	out := cmd.OutOrStdout()

	// generate writes nothing for an empty record list, so there is no
	// registry to compare.
	plan, err := gen.Plan(ctx)
	if err != nil {
		return err
	}
	if len(plan.Records) == 0 {
		fmt.Fprintf(out, "%s no module factories declared, no registry required\n", okStyle.Render("current"))
		return nil
	}

	c := gen.Catalog()
	state, err := c.Freshness(cfg.OutputPath())
	if err != nil {
		return err
	}

	switch state {
	case catalog.FreshnessCurrent:
		fmt.Fprintf(out, "%s %s\n", okStyle.Render("current"), cfg.OutputPath())
		return nil
	case catalog.FreshnessStale:
		fmt.Fprintf(out, "%s %s is older than %s or %s\n", warnStyle.Render("stale"), cfg.OutputPath(), c.LockPath(), c.ManifestPath())
	default:
		fmt.Fprintf(out, "%s %s does not exist\n", errStyle.Render("missing"), cfg.OutputPath())
	}
	return fmt.Errorf("%w: run '%s generate'", ErrStale, rootCmd.Name())
}
