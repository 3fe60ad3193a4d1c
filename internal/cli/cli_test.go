package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockJSON = `{
    "packages": [
        {
            "name": "acme/http",
            "version": "2.1.0",
            "require": {"acme/log": "^1.0"},
            "extra": {"framework-interop": {"module-factory": "new HttpModule()"}}
        },
        {
            "name": "acme/log",
            "version": "1.0.0",
            "extra": {"framework-interop": {"module-factory": {"name": "log", "module": "new LogModule()", "priority": -5}}}
        }
    ],
    "packages-dev": [
        {
            "name": "acme/debug",
            "extra": {"framework-interop": {"module-factory": "new DebugModule()"}}
        }
    ]
}`

const manifestJSON = `{
    "name": "my/app",
    "require": {"acme/http": "^2.0"}
}`

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.lock"), []byte(lockJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte(manifestJSON), 0o644))
	return dir
}

// resetFlags restores every flag to its default so commands can run more than
// once in the same process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, "generate", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Compiling modules list")
	assert.Contains(t, out, "Wrote 3 module factories")

	data, err := os.ReadFile(filepath.Join(dir, "modules.php"))
	require.NoError(t, err)
	php := string(data)
	assert.True(t, strings.HasPrefix(php, "<?php\nreturn [\n"))

	// Dependency order is debug, log, http; the negative priority moves log first.
	logIdx := strings.Index(php, "new LogModule()")
	debugIdx := strings.Index(php, "new DebugModule()")
	httpIdx := strings.Index(php, "new HttpModule()")
	assert.True(t, logIdx < debugIdx && debugIdx < httpIdx, "unexpected order:\n%s", php)
}

func TestGenerateNoDev(t *testing.T) {
	dir := newProject(t)

	_, err := execute(t, "generate", "--dir", dir, "--no-dev", "--log-level", "error")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "modules.php"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "DebugModule")
}

func TestGenerateDryRun(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, "generate", "--dir", dir, "--dry-run", "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?php\n"), "dry run should print only the artifact:\n%s", out)

	_, err = os.Stat(filepath.Join(dir, "modules.php"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateHCL(t *testing.T) {
	dir := newProject(t)

	_, err := execute(t, "generate", "--dir", dir, "--format", "hcl", "-o", "build/modules.hcl", "--log-level", "error")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "build", "modules.hcl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "factory {")
}

func TestGenerateUsesSettingsFile(t *testing.T) {
	dir := newProject(t)

	_, err := execute(t, "config", "set", "output", "var/registry.php", "--dir", dir)
	require.NoError(t, err)

	_, err = execute(t, "generate", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "var", "registry.php"))
	assert.NoError(t, err)
}

func TestListJSON(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, "list", "--dir", dir, "--json", "--log-level", "error")
	require.NoError(t, err)

	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "log", entries[0].Name)
	assert.Equal(t, -5, entries[0].Priority)
	assert.Equal(t, "acme/debug_0", entries[1].Name)
	assert.Equal(t, "acme/http_0", entries[2].Name)
	assert.Equal(t, "Module for package acme/http", entries[2].Description)
}

func TestListTree(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, "list", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "acme/debug (dev)")
	assert.Contains(t, out, "my/app (root)")

	_, err = os.Stat(filepath.Join(dir, "modules.php"))
	assert.True(t, os.IsNotExist(err), "list must not write the registry")
}

func TestCheck(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, "check", "--dir", dir)
	require.ErrorIs(t, err, ErrStale)
	assert.Contains(t, out, "missing")

	_, err = execute(t, "generate", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)

	out, err = execute(t, "check", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "current")
}

func TestValidate(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, "validate", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "ok "))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.lock"), []byte(`{"packages": [{"version": "1"}]}`), 0o644))
	out, err = execute(t, "validate", "--dir", dir)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out, "invalid")
}

func TestConfigGetSet(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "get", "format", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "php\n", out)

	out, err = execute(t, "config", "set", "format", "hcl", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Set format = hcl")

	out, err = execute(t, "config", "get", "format", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "hcl\n", out)

	_, err = execute(t, "config", "set", "colour", "blue", "--dir", dir)
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	buildVersion = "1.2.3"
	t.Cleanup(func() { buildVersion = "" })

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "modreg 1.2.3")
	assert.Contains(t, out, "extra.framework-interop.module-factory")
}

func TestVersionJSON(t *testing.T) {
	buildVersion = "1.2.3"
	t.Cleanup(func() { buildVersion = "" })

	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, []string{"php", "hcl"}, info.Formats)
	assert.Equal(t, "php", info.DefaultFormat)
	assert.Equal(t, "framework-interop", info.Namespace)
	assert.Equal(t, "module-factory", info.FactoryKey)
	assert.Equal(t, "interop/module-installer", info.InstallerPackage)
}

func TestCheckWithoutFactories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.lock"),
		[]byte(`{"packages": [{"name": "acme/log", "extra": {"framework-interop": {}}}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte(manifestJSON), 0o644))

	_, err := execute(t, "generate", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)

	out, err := execute(t, "check", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "no registry required")
}

func TestCheckAfterFactoriesRemoved(t *testing.T) {
	dir := newProject(t)
	_, err := execute(t, "generate", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)

	// Every factory is dropped; the old registry stays on disk untouched.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.lock"), []byte(`{"packages": []}`), 0o644))
	_, err = execute(t, "generate", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)

	out, err := execute(t, "check", "--dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "no registry required")
}
