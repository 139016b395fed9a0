package synth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/htmldoc"
	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/llm"
	"github.com/verustcode/docsynth/internal/llm/mock"
	"github.com/verustcode/docsynth/internal/prompt"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/internal/tool"
	"github.com/verustcode/docsynth/pkg/errors"
)

var testTool = &tool.Tool{Name: "Ledgerly", Purpose: "bookkeeping for freelancers"}

// sampleTOC builds intro(scope) data(collection) contact
func sampleTOC() *toc.TOC {
	return &toc.TOC{
		ID:    "privacy_policy",
		Title: "Privacy Policy",
		Sections: []toc.Section{
			{ID: "intro", Title: "Introduction", Subsections: []toc.Section{
				{ID: "scope", Title: "Scope"},
			}},
			{ID: "data", Title: "Data", Subsections: []toc.Section{
				{ID: "collection", Title: "Collection"},
			}},
			{ID: "contact", Title: "Contact"},
		},
	}
}

func singleTOC() *toc.TOC {
	return &toc.TOC{ID: "doc", Title: "Doc", Sections: []toc.Section{{ID: "only", Title: "Only"}}}
}

func newSynthesizer(t *testing.T, client llm.Client, opts Options) *Synthesizer {
	t.Helper()
	loader, err := prompt.NewLoader("", 0)
	require.NoError(t, err)
	settings := config.Default().Stage(config.StageSection)
	return New(client, loader, issues.NewSeededPlanner(42), settings, opts)
}

// sectionReply answers every section request with fixed content, adding an
// issue when withIssue returns true for the request
func sectionReply(withIssue func(req *llm.Request) bool) mock.Handler {
	return func(_ context.Context, req *llm.Request) (string, error) {
		out := `{"content": "<h2>` + req.GetMetadata(llm.MetaSectionTitle) + `</h2><p>Body</p>"`
		if withIssue(req) {
			out += `, "issue": {"description": "typo in body", "severity": "low"}`
		}
		return out + "}", nil
	}
}

func always(*llm.Request) bool { return true }

func never(*llm.Request) bool { return false }

type recorder struct {
	titles  []string
	parents []string
	issues  int
}

func (r *recorder) SectionSynthesized(sec *htmldoc.Section, parentTitle string, issue *issues.InjectedIssue) {
	r.titles = append(r.titles, sec.Title)
	r.parents = append(r.parents, parentTitle)
	if issue != nil {
		r.issues++
	}
}

func TestSynthesize_PreOrderAndParents(t *testing.T) {
	rec := &recorder{}
	client := mock.New(nil)
	s := newSynthesizer(t, client, Options{MinIssues: 2, MaxIssues: 2, InjectionRetries: 3, Observer: rec})

	res, err := s.Synthesize(context.Background(), testTool, sampleTOC(), "Privacy Policy")
	require.NoError(t, err)

	require.Len(t, res.Sections, 5)
	var ids []string
	for _, sec := range res.Sections {
		ids = append(ids, sec.ID)
	}
	assert.Equal(t, toc.CollectIDs(sampleTOC()), ids)

	assert.Equal(t, htmldoc.Section{ID: "intro", Title: "Introduction", Level: 1}, withoutContent(res.Sections[0]))
	assert.Equal(t, htmldoc.Section{ID: "scope", Title: "Scope", Level: 2, ParentID: "intro"}, withoutContent(res.Sections[1]))
	assert.Equal(t, "data", res.Sections[3].ParentID)
	assert.Empty(t, res.Sections[4].ParentID)

	assert.Equal(t, []string{"None", "Introduction", "None", "Data", "None"}, rec.parents)
	assert.Equal(t, 2, rec.issues)
	assert.Equal(t, 5, client.CallCount())
}

func withoutContent(s htmldoc.Section) htmldoc.Section {
	s.ContentHTML = ""
	return s
}

func TestSynthesize_IssuesMatchPlan(t *testing.T) {
	s := newSynthesizer(t, mock.New(nil), Options{MinIssues: 2, MaxIssues: 3, InjectionRetries: 3})

	res, err := s.Synthesize(context.Background(), testTool, sampleTOC(), "Privacy Policy")
	require.NoError(t, err)

	got := issues.SectionIDs(res.Issues)
	assert.ElementsMatch(t, res.Plan.IDs(), got)
	assert.GreaterOrEqual(t, len(got), 2)
	assert.LessOrEqual(t, len(got), 3)

	titles := map[string]string{}
	for _, sec := range res.Sections {
		titles[sec.ID] = sec.Title
	}
	for _, is := range res.Issues {
		assert.Equal(t, titles[is.SectionID], is.SectionTitle)
		assert.NotEmpty(t, is.Description)
	}
}

func TestSynthesize_PromptContext(t *testing.T) {
	client := mock.New(nil)
	s := newSynthesizer(t, client, Options{MinIssues: 0, MaxIssues: 0, Language: "English"})

	_, err := s.Synthesize(context.Background(), testTool, sampleTOC(), "Privacy Policy")
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 5)

	assert.Contains(t, calls[0].Prompt, "Parent section: None")
	assert.Contains(t, calls[0].Prompt, "Previously written sections:\nNone")
	assert.Contains(t, calls[1].Prompt, "Parent section: Introduction")
	assert.Contains(t, calls[3].Prompt, "- Introduction\n- Scope\n- Data")
	// window keeps only the last three titles
	assert.Contains(t, calls[4].Prompt, "Previously written sections:\n- Scope\n- Data\n- Collection")
	assert.Contains(t, calls[4].Prompt, "Write in English.")

	for _, c := range calls {
		assert.Contains(t, c.Prompt, NoIssueDirective)
		assert.Equal(t, "false", c.GetMetadata(llm.MetaIssuePlanned))
		assert.Equal(t, config.StageSection, c.GetMetadata(llm.MetaStage))
		assert.NotNil(t, c.ResponseSchema)
	}
}

func TestSynthesize_PlannedDirective(t *testing.T) {
	client := mock.New(nil).SetHandler(sectionReply(always))
	s := newSynthesizer(t, client, Options{MinIssues: 1, MaxIssues: 1, InjectionRetries: 3})

	res, err := s.Synthesize(context.Background(), testTool, singleTOC(), "Doc")
	require.NoError(t, err)

	call := client.Calls()[0]
	assert.Contains(t, call.Prompt, IssueDirective)
	assert.Equal(t, "true", call.GetMetadata(llm.MetaIssuePlanned))
	assert.Equal(t, []issues.InjectedIssue{{
		SectionID:    "only",
		SectionTitle: "Only",
		Description:  "typo in body",
		Severity:     "low",
	}}, res.Issues)
}

func TestSynthesize_RetryUntilIssue(t *testing.T) {
	calls := 0
	client := mock.New(nil).SetHandler(sectionReply(func(*llm.Request) bool {
		calls++
		return calls == 3
	}))
	s := newSynthesizer(t, client, Options{MinIssues: 1, MaxIssues: 1, InjectionRetries: 3})

	res, err := s.Synthesize(context.Background(), testTool, singleTOC(), "Doc")
	require.NoError(t, err)
	assert.Len(t, res.Issues, 1)
	assert.Equal(t, 3, client.CallCount())

	// retries re-issue the identical request
	reqs := client.Calls()
	assert.Equal(t, reqs[0].Prompt, reqs[2].Prompt)
}

func TestSynthesize_RetryCap(t *testing.T) {
	tests := []struct {
		name    string
		retries int
	}{
		{"default", 3},
		{"single", 1},
		{"none", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mock.New(nil).SetHandler(sectionReply(never))
			s := newSynthesizer(t, client, Options{MinIssues: 1, MaxIssues: 1, InjectionRetries: tt.retries})

			_, err := s.Synthesize(context.Background(), testTool, singleTOC(), "Doc")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeIssueInjection))
			assert.Equal(t, tt.retries+1, client.CallCount())
		})
	}
}

func TestSynthesize_DiscardsUnrequestedIssues(t *testing.T) {
	client := mock.New(nil).SetHandler(sectionReply(always))
	s := newSynthesizer(t, client, Options{MinIssues: 0, MaxIssues: 0})

	res, err := s.Synthesize(context.Background(), testTool, sampleTOC(), "Privacy Policy")
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Len(t, res.Sections, 5)
	assert.Equal(t, 5, client.CallCount(), "discarding never triggers a retry")
}

func TestSynthesize_SanitizesContent(t *testing.T) {
	client := mock.New(nil).Enqueue(`{"content": "<h2>Only</h2><p>Open <b>bold<script>alert(1)</script>"}`)
	s := newSynthesizer(t, client, Options{})

	res, err := s.Synthesize(context.Background(), testTool, singleTOC(), "Doc")
	require.NoError(t, err)
	assert.Equal(t, "<h2>Only</h2><p>Open <b>bold</b></p>", res.Sections[0].ContentHTML)
}

func TestSynthesize_GenerationErrorIsFatal(t *testing.T) {
	tests := []struct {
		name   string
		client *mock.Client
	}{
		{"unparseable", mock.New(nil).Enqueue("<h2>plain html, no JSON</h2>")},
		{"client error", mock.New(nil).EnqueueError(llm.ErrTimeout)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSynthesizer(t, tt.client, Options{})
			_, err := s.Synthesize(context.Background(), testTool, sampleTOC(), "Privacy Policy")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeGeneration))
			assert.Equal(t, 1, tt.client.CallCount(), "walk stops at the first failure")
		})
	}
}

func TestSynthesize_PlanningError(t *testing.T) {
	client := mock.New(nil)
	s := newSynthesizer(t, client, Options{MinIssues: 3, MaxIssues: 3})

	_, err := s.Synthesize(context.Background(), testTool, singleTOC(), "Doc")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlanning))
	assert.Zero(t, client.CallCount())
}

func TestSynthesize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSynthesizer(t, mock.New(nil), Options{}).Synthesize(ctx, testTool, sampleTOC(), "Privacy Policy")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummaryAndWindow(t *testing.T) {
	assert.Equal(t, "None", Summary(nil))
	assert.Equal(t, "- A\n- B", Summary([]string{"A", "B"}))

	var w []string
	for _, title := range []string{"A", "B", "C", "D"} {
		w = pushWindow(w, title)
	}
	assert.Equal(t, []string{"B", "C", "D"}, w)

	base := []string{"A", "B", "C"}
	_ = pushWindow(base, "D")
	assert.Equal(t, []string{"A", "B", "C"}, base, "input window is not modified")
}

func TestDirective(t *testing.T) {
	assert.True(t, strings.HasPrefix(Directive(true), "Include exactly ONE"))
	assert.Equal(t, NoIssueDirective, Directive(false))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 2, opts.MinIssues)
	assert.Equal(t, 3, opts.MaxIssues)
	assert.Equal(t, 3, opts.InjectionRetries)
	assert.Equal(t, "English", opts.Language)
}
