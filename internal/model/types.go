// Package model defines the domain types for the checkin-directives CLI.
//
// The central type is CheckinOptions, the mutable record a checkin reads
// its parameters from. The directive scanner mutates it in place and hands
// back an undo handle that restores it, so a single CheckinOptions value
// can be reused across many commits in one process.
package model

import "fmt"

// CheckinOptions holds the parameters of a single checkin attempt.
//
// The value is owned by the caller and is long-lived: the same instance is
// typically scanned, checked in, and reverted once per commit. It is not
// safe for concurrent use; each concurrent checkin needs its own instance.
type CheckinOptions struct {
	// CheckinComment is the message that will be attached to the checkin.
	// After a scan it holds the commit message with all recognized
	// directives removed.
	CheckinComment string `json:"checkinComment"`

	// WorkItemsToAssociate lists work item identifiers to link to the
	// checkin, in the order they were found. Duplicates are kept.
	WorkItemsToAssociate []string `json:"workItemsToAssociate"`

	// WorkItemsToResolve lists work item identifiers the checkin resolves.
	WorkItemsToResolve []string `json:"workItemsToResolve"`

	// Force requests that checkin policies be overridden.
	Force bool `json:"force"`

	// OverrideReason explains the policy override. Only meaningful when
	// Force is true.
	OverrideReason string `json:"overrideReason,omitempty"`
}

// Clone returns a deep copy of the options. The slices are copied so the
// clone can be kept as a snapshot while the original keeps being mutated.
func (o *CheckinOptions) Clone() CheckinOptions {
	c := *o
	if o.WorkItemsToAssociate != nil {
		c.WorkItemsToAssociate = append([]string(nil), o.WorkItemsToAssociate...)
	}
	if o.WorkItemsToResolve != nil {
		c.WorkItemsToResolve = append([]string(nil), o.WorkItemsToResolve...)
	}
	return c
}

// WorkItemAction is the kind of a work item directive after its action
// keyword has been classified.
type WorkItemAction string

const (
	// ActionAssociate links the work item to the checkin.
	ActionAssociate WorkItemAction = "associate"

	// ActionResolve marks the work item as resolved by the checkin.
	ActionResolve WorkItemAction = "resolve"

	// ActionUnrecognized is any keyword that is neither of the above.
	// Such directives are stripped from the comment but otherwise ignored.
	ActionUnrecognized WorkItemAction = "unrecognized"
)

// String returns the string representation of WorkItemAction.
func (a WorkItemAction) String() string {
	return string(a)
}

// ExitCode defines the process exit codes of the CLI.
// Scripts and git hooks use them to tell failure classes apart.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigNotFound indicates an explicitly requested configuration
	// file does not exist.
	ExitConfigNotFound ExitCode = 2

	// ExitInvalidConfig indicates the configuration file could not be
	// parsed or failed validation (bad pattern, missing capture group).
	ExitInvalidConfig ExitCode = 3

	// ExitGitError indicates a Git operation failed.
	ExitGitError ExitCode = 5

	// ExitCheckinFailed indicates the checkin of a commit failed.
	ExitCheckinFailed ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
