// Package cli defines the Cobra command tree for the modreg CLI. Each file
// in this package registers one top-level command (generate, list, check,
// etc.) with the root command. Command implementations delegate to internal
// packages for the pipeline and only handle flag parsing, settings and output.
package cli
