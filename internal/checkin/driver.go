package checkin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/checkin-directives/internal/directive"
	"github.com/mmr-tortoise/checkin-directives/internal/git"
	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// Checkinner performs the checkin of a single commit with the given options.
//
// Implementations must not retain opts after returning: the Driver reverts
// it as soon as Checkin returns.
type Checkinner interface {
	Checkin(ctx context.Context, commit git.Commit, opts *model.CheckinOptions) error
}

// Driver checks in commits one at a time against a single CheckinOptions.
type Driver struct {
	scanner *directive.Scanner
	target  Checkinner
	opts    *model.CheckinOptions
	log     zerolog.Logger
}

// NewDriver creates a Driver. opts holds the values every checkin starts
// from (for example a force flag given on the command line); it is mutated
// during each checkin and restored afterwards.
func NewDriver(scanner *directive.Scanner, target Checkinner, opts *model.CheckinOptions, log zerolog.Logger) *Driver {
	return &Driver{
		scanner: scanner,
		target:  target,
		opts:    opts,
		log:     log,
	}
}

// Run checks in commits in order and returns how many succeeded.
// It stops at the first failure or when ctx is cancelled.
func (d *Driver) Run(ctx context.Context, commits []git.Commit) (int, error) {
	for i, c := range commits {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := d.checkinOne(ctx, c); err != nil {
			return i, err
		}
	}
	return len(commits), nil
}

// checkinOne scans c into the shared options, checks it in, and reverts
// the scan on every exit path.
func (d *Driver) checkinOne(ctx context.Context, c git.Commit) error {
	log := d.log.With().Str("commit", c.ShortSHA()).Logger()

	handle, err := d.scanner.Scan(d.opts, c.Message)
	if err != nil {
		return fmt.Errorf("failed to scan commit %s: %w", c.ShortSHA(), err)
	}
	defer handle.Revert()

	log.Debug().
		Strs("associate", d.opts.WorkItemsToAssociate).
		Strs("resolve", d.opts.WorkItemsToResolve).
		Bool("force", d.opts.Force).
		Msg("checking in")

	if err := d.target.Checkin(ctx, c, d.opts); err != nil {
		return model.WrapCLIError(
			model.ExitCheckinFailed,
			fmt.Sprintf("checkin of commit %s failed", c.ShortSHA()),
			err,
		)
	}
	return nil
}
