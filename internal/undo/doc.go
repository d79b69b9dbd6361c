// Package undo provides a scoped undo handle: a value that bundles one or
// more restore operations behind a single Revert call.
//
// A component that temporarily mutates shared state returns a Handle
// describing how to put the state back. Handles compose, so a caller that
// runs several mutating steps receives one Handle and defers one Revert.
package undo
