package directive

import (
	"fmt"
	"regexp"

	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// Default grammar. The patterns are multi-line so a directive must sit on
// its own line of the commit message.
const (
	DefaultWorkItemPattern  = `(?m)^[ \t]*git-tfs-work-item:[ \t]*(?P<item_id>\d+)[ \t]+(?P<action>\w+)[ \t\r]*$`
	DefaultForcePattern     = `(?m)^[ \t]*git-tfs-force:(?P<reason>.*)$`
	DefaultAssociateKeyword = "associate"
	DefaultResolveKeyword   = "resolve"
)

// Capture group names every grammar must expose.
const (
	GroupItemID = "item_id"
	GroupAction = "action"
	GroupReason = "reason"
)

// GrammarSpec is the uncompiled form of a Grammar, as read from a
// configuration file.
type GrammarSpec struct {
	WorkItemPattern  string
	ForcePattern     string
	AssociateKeyword string
	ResolveKeyword   string
}

// DefaultGrammarSpec returns the built-in grammar.
func DefaultGrammarSpec() GrammarSpec {
	return GrammarSpec{
		WorkItemPattern:  DefaultWorkItemPattern,
		ForcePattern:     DefaultForcePattern,
		AssociateKeyword: DefaultAssociateKeyword,
		ResolveKeyword:   DefaultResolveKeyword,
	}
}

// Grammar is the compiled set of directive patterns.
//
// The capture group indexes are resolved once at compile time so matching
// never looks groups up by name.
type Grammar struct {
	workItem    *regexp.Regexp
	force       *regexp.Regexp
	idIndex     int
	actionIndex int
	reasonIndex int
	associate   string
	resolve     string
}

var defaultGrammar = mustCompileGrammar(DefaultGrammarSpec())

// DefaultGrammar returns the compiled built-in grammar. The returned value
// is shared and must be treated as read-only, which every Grammar method
// already does.
func DefaultGrammar() *Grammar {
	return defaultGrammar
}

func mustCompileGrammar(spec GrammarSpec) *Grammar {
	g, err := CompileGrammar(spec)
	if err != nil {
		panic(err)
	}
	return g
}

// CompileGrammar compiles the patterns of spec and checks that they expose
// the capture groups the scanner reads: item_id and action for work items,
// reason for the force directive.
func CompileGrammar(spec GrammarSpec) (*Grammar, error) {
	if spec.AssociateKeyword == "" || spec.ResolveKeyword == "" {
		return nil, fmt.Errorf("work item keywords must not be empty")
	}
	if spec.AssociateKeyword == spec.ResolveKeyword {
		return nil, fmt.Errorf("associate and resolve keywords must differ, both are %q", spec.AssociateKeyword)
	}

	workItem, err := regexp.Compile(spec.WorkItemPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid work item pattern: %w", err)
	}
	force, err := regexp.Compile(spec.ForcePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid force pattern: %w", err)
	}

	g := &Grammar{
		workItem:    workItem,
		force:       force,
		idIndex:     workItem.SubexpIndex(GroupItemID),
		actionIndex: workItem.SubexpIndex(GroupAction),
		reasonIndex: force.SubexpIndex(GroupReason),
		associate:   spec.AssociateKeyword,
		resolve:     spec.ResolveKeyword,
	}

	// SubexpIndex returns -1 for a missing group.
	if g.idIndex < 0 {
		return nil, fmt.Errorf("work item pattern has no (?P<%s>...) group", GroupItemID)
	}
	if g.actionIndex < 0 {
		return nil, fmt.Errorf("work item pattern has no (?P<%s>...) group", GroupAction)
	}
	if g.reasonIndex < 0 {
		return nil, fmt.Errorf("force pattern has no (?P<%s>...) group", GroupReason)
	}

	return g, nil
}

// Classify maps an action keyword to its WorkItemAction. Keywords are
// compared exactly.
func (g *Grammar) Classify(keyword string) model.WorkItemAction {
	switch keyword {
	case g.associate:
		return model.ActionAssociate
	case g.resolve:
		return model.ActionResolve
	default:
		return model.ActionUnrecognized
	}
}

// WorkItemDirective is one work item directive found in a message.
type WorkItemDirective struct {
	// Action is the classified action keyword.
	Action model.WorkItemAction

	// Keyword is the action keyword as written in the message.
	Keyword string

	// ID is the work item identifier.
	ID string

	// Text is the full matched directive text.
	Text string
}

// WorkItems returns every work item directive in text, in match order.
func (g *Grammar) WorkItems(text string) []WorkItemDirective {
	matches := g.workItem.FindAllStringSubmatch(text, -1)
	directives := make([]WorkItemDirective, 0, len(matches))
	for _, m := range matches {
		keyword := m[g.actionIndex]
		directives = append(directives, WorkItemDirective{
			Action:  g.Classify(keyword),
			Keyword: keyword,
			ID:      m[g.idIndex],
			Text:    m[0],
		})
	}
	return directives
}

// StripWorkItems removes every work item directive from text.
func (g *Grammar) StripWorkItems(text string) string {
	return g.workItem.ReplaceAllLiteralString(text, "")
}

// ForceDirective is one force directive found in a message.
type ForceDirective struct {
	// Reason is the captured reason text, untrimmed.
	Reason string

	// Start and End are the byte offsets of the match in the scanned text.
	Start, End int
}

// Forces returns every force directive in text, in match order.
func (g *Grammar) Forces(text string) []ForceDirective {
	matches := g.force.FindAllStringSubmatchIndex(text, -1)
	directives := make([]ForceDirective, 0, len(matches))
	for _, m := range matches {
		var reason string
		// An optional group that did not participate reports -1.
		if start, end := m[2*g.reasonIndex], m[2*g.reasonIndex+1]; start >= 0 {
			reason = text[start:end]
		}
		directives = append(directives, ForceDirective{
			Reason: reason,
			Start:  m[0],
			End:    m[1],
		})
	}
	return directives
}
