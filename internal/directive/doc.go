// Package directive extracts machine-readable directives from commit
// messages and applies them to a model.CheckinOptions.
//
// Two directive kinds are recognized by the default grammar:
//
//	git-tfs-work-item: 1234 associate
//	git-tfs-work-item: 5678 resolve
//	git-tfs-force: reason for overriding checkin policies
//
// A Scanner runs three ordered passes over a message (install the comment,
// apply work item directives, apply the force directive). Each pass mutates
// the options and returns an undo.Handle; Scan composes the three into one
// handle that restores the options to their pre-scan state.
//
// Malformed or absent directives are never errors. They are treated as
// "no directive present".
package directive
