// Package logging provides structured logging using Go's standard library
// log/slog. Watch loops and loaders report through a logger built here;
// Nop gives tests and library embedders a silent default.
package logging
