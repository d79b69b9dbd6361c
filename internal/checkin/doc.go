// Package checkin drives the checkin of one or more commits.
//
// For each commit the Driver scans the commit message into a shared
// model.CheckinOptions, hands the options to a Checkinner, and reverts the
// scan before moving on, so the next commit starts from the same options.
// The network checkin itself is behind the Checkinner interface; DryRun is
// the implementation shipped with the CLI.
package checkin
