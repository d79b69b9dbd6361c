package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// TestCompileGrammar_Errors verifies that grammars the scanner cannot use
// are rejected at compile time.
func TestCompileGrammar_Errors(t *testing.T) {
	valid := DefaultGrammarSpec()

	tests := []struct {
		name    string
		mutate  func(*GrammarSpec)
		wantErr string
	}{
		{
			name:    "invalid work item regexp",
			mutate:  func(s *GrammarSpec) { s.WorkItemPattern = `(?P<item_id>\d+` },
			wantErr: "invalid work item pattern",
		},
		{
			name:    "invalid force regexp",
			mutate:  func(s *GrammarSpec) { s.ForcePattern = `[` },
			wantErr: "invalid force pattern",
		},
		{
			name:    "missing item_id group",
			mutate:  func(s *GrammarSpec) { s.WorkItemPattern = `wi:(\d+) (?P<action>\w+)` },
			wantErr: "item_id",
		},
		{
			name:    "missing action group",
			mutate:  func(s *GrammarSpec) { s.WorkItemPattern = `wi:(?P<item_id>\d+)` },
			wantErr: "action",
		},
		{
			name:    "missing reason group",
			mutate:  func(s *GrammarSpec) { s.ForcePattern = `force:(.*)` },
			wantErr: "reason",
		},
		{
			name:    "empty keyword",
			mutate:  func(s *GrammarSpec) { s.ResolveKeyword = "" },
			wantErr: "must not be empty",
		},
		{
			name:    "identical keywords",
			mutate:  func(s *GrammarSpec) { s.ResolveKeyword = s.AssociateKeyword },
			wantErr: "must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)

			g, err := CompileGrammar(spec)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestGrammar_Classify verifies keyword classification.
func TestGrammar_Classify(t *testing.T) {
	g := DefaultGrammar()

	assert.Equal(t, model.ActionAssociate, g.Classify("associate"))
	assert.Equal(t, model.ActionResolve, g.Classify("resolve"))
	assert.Equal(t, model.ActionUnrecognized, g.Classify("Resolve"))
	assert.Equal(t, model.ActionUnrecognized, g.Classify(""))
}

// TestGrammar_WorkItems verifies the tagged matches returned for a message.
func TestGrammar_WorkItems(t *testing.T) {
	g := DefaultGrammar()

	got := g.WorkItems("Title\n  git-tfs-work-item:12 associate\ngit-tfs-work-item: 34 close  \ngit-tfs-work-item: 56 resolve")

	require.Len(t, got, 3)
	assert.Equal(t, WorkItemDirective{
		Action:  model.ActionAssociate,
		Keyword: "associate",
		ID:      "12",
		Text:    "  git-tfs-work-item:12 associate",
	}, got[0])
	assert.Equal(t, model.ActionUnrecognized, got[1].Action)
	assert.Equal(t, "close", got[1].Keyword)
	assert.Equal(t, "34", got[1].ID)
	assert.Equal(t, model.ActionResolve, got[2].Action)
	assert.Equal(t, "56", got[2].ID)
}

// TestGrammar_WorkItems_None verifies that a message without directives
// yields an empty, non-nil result.
func TestGrammar_WorkItems_None(t *testing.T) {
	got := DefaultGrammar().WorkItems("nothing to see")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// TestGrammar_StripWorkItems verifies that every directive is removed and
// the remaining text is left as is.
func TestGrammar_StripWorkItems(t *testing.T) {
	g := DefaultGrammar()

	got := g.StripWorkItems("a\ngit-tfs-work-item: 1 associate\nb\ngit-tfs-work-item: 2 resolve")
	assert.Equal(t, "a\n\nb\n", got)
}

// TestGrammar_Forces verifies reason capture and match offsets.
func TestGrammar_Forces(t *testing.T) {
	g := DefaultGrammar()
	text := "Title\ngit-tfs-force: because\nbody"

	got := g.Forces(text)

	require.Len(t, got, 1)
	assert.Equal(t, " because", got[0].Reason)
	assert.Equal(t, "git-tfs-force: because", text[got[0].Start:got[0].End])
}

// TestGrammar_Forces_OptionalGroup verifies that a reason group that does
// not take part in the match is reported as an empty reason.
func TestGrammar_Forces_OptionalGroup(t *testing.T) {
	g, err := CompileGrammar(GrammarSpec{
		WorkItemPattern:  DefaultWorkItemPattern,
		ForcePattern:     `(?m)^FORCE(?::(?P<reason>.*))?$`,
		AssociateKeyword: DefaultAssociateKeyword,
		ResolveKeyword:   DefaultResolveKeyword,
	})
	require.NoError(t, err)

	got := g.Forces("msg\nFORCE")
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Reason)
}
