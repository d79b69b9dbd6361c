// Package model defines the domain types and value objects for the
// checkin-directives CLI.
//
// This package contains pure data structures with no external dependencies.
// CheckinOptions is the mutable record the directive scanner operates on;
// WorkItemAction is the classified kind of a work item directive.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
