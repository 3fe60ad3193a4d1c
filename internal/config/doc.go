// Package config manages project-level settings stored in .modreg.yaml next
// to the project manifest. Every key can be overridden with a MODREG_
// environment variable, and command-line flags take precedence over both.
package config
