package directive

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/checkin-directives/internal/model"
	"github.com/mmr-tortoise/checkin-directives/internal/undo"
)

// Precondition errors. They signal a programming mistake in the caller,
// never a problem with the message being scanned.
var (
	ErrNilOptions = errors.New("directive: checkin options must not be nil")
	ErrNilSink    = errors.New("directive: output sink must not be nil")
)

// trimSet is what gets trimmed from both ends of the comment after a
// directive has been removed. Tabs are deliberately not part of it.
const trimSet = " \r\n"

// Notice templates written to the output sink.
const (
	noticeAssociate = "Associating with work item %s"
	noticeResolve   = "Resolving work item %s"
	noticeForce     = "Forcing the checkin: %s"
)

// Scanner applies the directives of a commit message to a CheckinOptions.
//
// A Scanner holds no per-scan state and may be reused for any number of
// messages. It is not safe to scan the same CheckinOptions from several
// goroutines at once.
type Scanner struct {
	grammar *Grammar
	out     io.Writer
	log     zerolog.Logger
}

// ScannerOption configures optional Scanner behavior.
type ScannerOption func(*Scanner)

// WithLogger sets the logger used for pass-level debug events.
// The default logger discards everything.
func WithLogger(log zerolog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.log = log
	}
}

// NewScanner creates a Scanner that writes progress notices to out.
// A nil grammar selects DefaultGrammar.
func NewScanner(grammar *Grammar, out io.Writer, opts ...ScannerOption) (*Scanner, error) {
	if out == nil {
		return nil, ErrNilSink
	}
	if grammar == nil {
		grammar = DefaultGrammar()
	}

	s := &Scanner{
		grammar: grammar,
		out:     out,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan installs message as the checkin comment of opts, applies its work
// item and force directives, and strips them from the comment.
//
// The returned handle restores the comment and the force settings to their
// pre-scan values and clears both work item lists. Callers should defer
// its Revert right after a successful Scan:
//
//	h, err := scanner.Scan(opts, msg)
//	if err != nil {
//		return err
//	}
//	defer h.Revert()
//
// The only error is ErrNilOptions.
func (s *Scanner) Scan(opts *model.CheckinOptions, message string) (*undo.Handle, error) {
	if opts == nil {
		return nil, ErrNilOptions
	}

	// Each pass sees the mutations of the previous one.
	installed := s.installComment(opts, message)
	workItems := s.processWorkItems(opts)
	force := s.processForce(opts)

	return undo.Compose(installed, workItems, force), nil
}

// installComment replaces the checkin comment with message.
func (s *Scanner) installComment(opts *model.CheckinOptions, message string) *undo.Handle {
	previous := opts.CheckinComment
	opts.CheckinComment = message

	s.log.Debug().Int("length", len(message)).Msg("installed commit message as checkin comment")

	return undo.New(func() {
		opts.CheckinComment = previous
	})
}

// processWorkItems appends the identifiers of every work item directive to
// the matching list and removes the directives from the comment.
func (s *Scanner) processWorkItems(opts *model.CheckinOptions) *undo.Handle {
	directives := s.grammar.WorkItems(opts.CheckinComment)

	for _, d := range directives {
		switch d.Action {
		case model.ActionAssociate:
			opts.WorkItemsToAssociate = append(opts.WorkItemsToAssociate, d.ID)
			s.notice(noticeAssociate, d.ID)
		case model.ActionResolve:
			opts.WorkItemsToResolve = append(opts.WorkItemsToResolve, d.ID)
			s.notice(noticeResolve, d.ID)
		default:
			s.log.Debug().Str("keyword", d.Keyword).Str("id", d.ID).Str("directive", d.Text).Msg("ignoring work item directive with unknown action")
		}
	}

	if len(directives) > 0 {
		opts.CheckinComment = strings.Trim(s.grammar.StripWorkItems(opts.CheckinComment), trimSet)
	}

	s.log.Debug().Int("matches", len(directives)).Msg("processed work item directives")

	// The lists are cleared, not trimmed back to their previous length.
	return undo.New(func() {
		opts.WorkItemsToAssociate = nil
		opts.WorkItemsToResolve = nil
	})
}

// processForce applies a force directive when the comment holds exactly
// one. Zero or several matches leave the options and the comment alone.
func (s *Scanner) processForce(opts *model.CheckinOptions) *undo.Handle {
	previousForce := opts.Force
	previousReason := opts.OverrideReason
	handle := undo.New(func() {
		opts.Force = previousForce
		opts.OverrideReason = previousReason
	})

	directives := s.grammar.Forces(opts.CheckinComment)
	if len(directives) != 1 {
		s.log.Debug().Int("matches", len(directives)).Msg("force directive not applied")
		return handle
	}

	d := directives[0]
	if reason := strings.TrimSpace(d.Reason); reason != "" {
		opts.Force = true
		opts.OverrideReason = reason
		s.notice(noticeForce, reason)
	} else {
		s.log.Debug().Msg("force directive has an empty reason")
	}

	comment := opts.CheckinComment
	opts.CheckinComment = strings.Trim(comment[:d.Start]+comment[d.End:], trimSet)

	return handle
}

// notice writes one progress line to the output sink. Write errors are
// ignored: notices are informational and the sink is usually a terminal.
func (s *Scanner) notice(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format+"\n", args...)
}
