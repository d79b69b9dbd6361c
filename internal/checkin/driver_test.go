package checkin

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/checkin-directives/internal/directive"
	"github.com/mmr-tortoise/checkin-directives/internal/git"
	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// failingCheckinner records what it receives and fails on a chosen commit.
type failingCheckinner struct {
	failOn string
	seen   []model.CheckinOptions
}

func (f *failingCheckinner) Checkin(_ context.Context, c git.Commit, opts *model.CheckinOptions) error {
	f.seen = append(f.seen, opts.Clone())
	if c.SHA == f.failOn {
		return errors.New("server rejected changeset")
	}
	return nil
}

// newTestDriver wires a driver on the default grammar and returns it with
// its notice buffer.
func newTestDriver(t *testing.T, target Checkinner, opts *model.CheckinOptions) (*Driver, *bytes.Buffer) {
	t.Helper()

	var notices bytes.Buffer
	scanner, err := directive.NewScanner(nil, &notices)
	require.NoError(t, err)
	return NewDriver(scanner, target, opts, zerolog.Nop()), &notices
}

var testCommits = []git.Commit{
	{SHA: "1111111111", Message: "First\ngit-tfs-work-item: 1 associate"},
	{SHA: "2222222222", Message: "Second\ngit-tfs-work-item: 2 resolve\ngit-tfs-force: freeze"},
	{SHA: "3333333333", Message: "Third"},
}

// TestDriver_Run verifies that each commit sees only its own directives
// and that the options are restored afterwards.
func TestDriver_Run(t *testing.T) {
	opts := &model.CheckinOptions{CheckinComment: "seed"}
	dry := NewDryRun(nil)
	d, notices := newTestDriver(t, dry, opts)

	n, err := d.Run(context.Background(), testCommits)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results := dry.Results()
	require.Len(t, results, 3)

	assert.Equal(t, "1111111111", results[0].Commit)
	assert.Equal(t, model.CheckinOptions{
		CheckinComment:       "First",
		WorkItemsToAssociate: []string{"1"},
		WorkItemsToResolve:   []string{},
	}, results[0].Options)

	assert.Equal(t, model.CheckinOptions{
		CheckinComment:       "Second",
		WorkItemsToAssociate: []string{},
		WorkItemsToResolve:   []string{"2"},
		Force:                true,
		OverrideReason:       "freeze",
	}, results[1].Options)

	assert.Equal(t, model.CheckinOptions{
		CheckinComment:       "Third",
		WorkItemsToAssociate: []string{},
		WorkItemsToResolve:   []string{},
	}, results[2].Options)

	assert.Equal(t,
		"Associating with work item 1\nResolving work item 2\nForcing the checkin: freeze\n",
		notices.String())

	// The shared options are back to their seed values.
	assert.Equal(t, model.CheckinOptions{CheckinComment: "seed"}, *opts)
}

// TestDriver_RunFailure verifies that a failing checkin stops the run,
// carries ExitCheckinFailed, and still reverts the options.
func TestDriver_RunFailure(t *testing.T) {
	opts := &model.CheckinOptions{Force: true, OverrideReason: "from flags"}
	target := &failingCheckinner{failOn: "2222222222"}
	d, _ := newTestDriver(t, target, opts)

	n, err := d.Run(context.Background(), testCommits)
	require.Error(t, err)
	assert.Equal(t, 1, n)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitCheckinFailed, cliErr.Code)
	assert.Contains(t, err.Error(), "2222222")
	assert.Contains(t, err.Error(), "server rejected changeset")

	// The third commit was never attempted.
	assert.Len(t, target.seen, 2)

	assert.Equal(t, model.CheckinOptions{Force: true, OverrideReason: "from flags"}, *opts)
}

// TestDriver_RunCancelled verifies that a cancelled context stops the run
// before any checkin.
func TestDriver_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dry := NewDryRun(nil)
	d, _ := newTestDriver(t, dry, &model.CheckinOptions{})

	n, err := d.Run(ctx, testCommits)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
	assert.Empty(t, dry.Results())
}

// TestDriver_RunNilOptions verifies that a driver built without options
// reports the scanner precondition failure.
func TestDriver_RunNilOptions(t *testing.T) {
	d, _ := newTestDriver(t, NewDryRun(nil), nil)

	_, err := d.Run(context.Background(), testCommits)
	assert.ErrorIs(t, err, directive.ErrNilOptions)
}
