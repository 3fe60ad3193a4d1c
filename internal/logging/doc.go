// Package logging builds the slog.Logger used by the CLI and carries it
// through context.Context so that library packages can log without taking a
// logger parameter.
package logging
