package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semdiff/internal/core/config"
	"semdiff/internal/core/errors"
	"semdiff/internal/layers"
	"semdiff/internal/semantic"
)

type stubProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Query(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testLLMConfig() config.LLM {
	return config.LLM{
		Enabled:             true,
		ComplexityThreshold: 5,
		MaxSnippetBytes:     4000,
		RequestsPerSecond:   1000,
		Burst:               1000,
	}
}

func TestRegistryFirstSuccessWins(t *testing.T) {
	failing := &stubProvider{name: "first", err: errors.New(errors.CodeUnavailable, "down")}
	working := &stubProvider{name: "second", response: "[]"}
	untouched := &stubProvider{name: "third", response: "[]"}

	r := &Registry{}
	r.Register(failing, time.Second)
	r.Register(working, time.Second)
	r.Register(untouched, time.Second)

	got := r.Query(context.Background(), "prompt")
	assert.Equal(t, "[]", got)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, working.calls)
	assert.Equal(t, 0, untouched.calls, "later providers must not be queried after a success")
}

func TestRegistryAllFailingYieldsEmptyArray(t *testing.T) {
	r := &Registry{}
	r.Register(&stubProvider{name: "a", err: errors.New(errors.CodeUnavailable, "down")}, time.Second)
	r.Register(&stubProvider{name: "b", err: errors.New(errors.CodeUnavailable, "down")}, time.Second)

	assert.Equal(t, "[]", r.Query(context.Background(), "prompt"))
}

func complexEnough(marker string) string {
	return `import os
class Pipeline:
    def run(self, items):
        try:
            for item in items:
                self.handle(item, ` + marker + `)
        except ValueError:
            return None
`
}

func TestCostGateTrivialSize(t *testing.T) {
	a := NewAdvisor(testLLMConfig(), &Registry{})
	if reason := a.gateReject("x = 1", "x = 2"); reason == "" {
		t.Error("five-line diffs must be rejected")
	}
}

func TestCostGateCosmeticChange(t *testing.T) {
	a := NewAdvisor(testLLMConfig(), &Registry{})
	before := complexEnough("1")
	after := before + "\n\n# just a comment\n"
	if reason := a.gateReject(before, after); reason != "cosmetic change" {
		t.Errorf("whitespace and comment edits must be rejected, got %q", reason)
	}
}

func TestCostGateSimpleLiteralEdit(t *testing.T) {
	a := NewAdvisor(testLLMConfig(), &Registry{})
	before := complexEnough("1") + "TIMEOUT = 30\n"
	after := complexEnough("1") + "TIMEOUT = 60\n"
	if reason := a.gateReject(before, after); reason != "simple literal edits" {
		t.Errorf("pure literal edits must be rejected, got %q", reason)
	}
}

func TestCostGatePassesSubstantiveChange(t *testing.T) {
	a := NewAdvisor(testLLMConfig(), &Registry{})
	before := complexEnough("1")
	after := complexEnough("2") + `
def retry(op, attempts):
    for i in range(attempts):
        try:
            return op()
        except Exception:
            continue
`
	if reason := a.gateReject(before, after); reason != "" {
		t.Errorf("substantive change should pass the gate, rejected with %q", reason)
	}
}

func TestCostGateAlgorithmicRewriteOverride(t *testing.T) {
	cfg := testLLMConfig()
	cfg.ComplexityThreshold = 1000
	a := NewAdvisor(cfg, &Registry{})

	before := `def search(xs, t):
    for i in range(len(xs)):
        if xs[i] == t:
            return i
    return -1
def helper():
    return 0
`
	// A loop disappears and a function disappears together: the rewrite
	// heuristic overrides the absurdly high threshold.
	after := `def search(xs, t):
    return bisect.bisect_left(xs, t)
`
	if reason := a.gateReject(before, after); reason != "" {
		t.Errorf("algorithmic rewrite should override the threshold, rejected with %q", reason)
	}
}

func TestAdvisorDisabledEmitsNothing(t *testing.T) {
	cfg := testLLMConfig()
	cfg.Enabled = false
	a := NewAdvisor(cfg, &Registry{})

	events := a.Diff(context.Background(), layers.DiffContext{
		Path: "m.py", BeforeText: complexEnough("1"), AfterText: complexEnough("2"),
	})
	assert.Empty(t, events)
}

func TestAdvisorParsesCandidatesAndFilters(t *testing.T) {
	response := `Here is my analysis:
[
  {"change_type": "refactoring", "description": "extracted a helper", "confidence": 0.9, "reasoning": "moved code", "impact": "maintainability", "node_id": "func:process"},
  {"change_type": "optimization", "description": "maybe faster", "confidence": 0.5, "reasoning": "guess", "impact": "performance", "node_id": "func:process"},
  {"change_type": "something_else", "description": "misc", "confidence": 0.8, "reasoning": "", "impact": "", "node_id": ""}
]`
	stub := &stubProvider{name: "stub", response: response}
	r := &Registry{}
	r.Register(stub, time.Second)
	a := NewAdvisor(testLLMConfig(), r)

	events := a.Diff(context.Background(), layers.DiffContext{
		Path:       "m.py",
		BeforeText: complexEnough("1"),
		AfterText:  complexEnough("2") + "\ndef added():\n    return 1\n",
	})

	require.Len(t, events, 2, "the 0.5-confidence candidate must be dropped")

	refactor := events[0]
	assert.Equal(t, semantic.EventAIDetectedRefactoring, refactor.Type)
	assert.Equal(t, semantic.NodeID("func:process"), refactor.NodeID)
	assert.Equal(t, semantic.LayerAdvisory, refactor.Layer)
	assert.Equal(t, 0.9, refactor.Confidence)

	assert.Equal(t, semantic.EventAIAdvisory, events[1].Type, "unknown change types map to the generic advisory event")
}

func TestAdvisorPhraseFallback(t *testing.T) {
	stub := &stubProvider{name: "stub", response: "I think this is an algorithm optimization but I cannot produce JSON."}
	r := &Registry{}
	r.Register(stub, time.Second)
	a := NewAdvisor(testLLMConfig(), r)

	events := a.Diff(context.Background(), layers.DiffContext{
		Path:       "m.py",
		BeforeText: complexEnough("1"),
		AfterText:  complexEnough("2") + "\ndef added():\n    return 1\n",
	})

	require.Len(t, events, 1)
	assert.Equal(t, semantic.EventAIDetectedAlgorithmShift, events[0].Type)
	assert.Greater(t, events[0].Confidence, advisoryKeepThreshold,
		"salvaged events must clear the same confidence floor as decoded candidates")
}

func TestAdvisorUnusableResponseEmitsNothing(t *testing.T) {
	stub := &stubProvider{name: "stub", response: "no recognizable content here"}
	r := &Registry{}
	r.Register(stub, time.Second)
	a := NewAdvisor(testLLMConfig(), r)

	events := a.Diff(context.Background(), layers.DiffContext{
		Path:       "m.py",
		BeforeText: complexEnough("1"),
		AfterText:  complexEnough("2") + "\ndef added():\n    return 1\n",
	})
	assert.Empty(t, events)
}

func TestDecodeCandidatesExtractsEmbeddedArray(t *testing.T) {
	candidates, ok := decodeCandidates("```json\n[{\"change_type\":\"security\",\"confidence\":0.8}]\n```")
	require.True(t, ok)
	require.Len(t, candidates, 1)
	assert.Equal(t, "security", candidates[0].ChangeType)
}

func TestBuildPromptTruncatesSnippets(t *testing.T) {
	cfg := testLLMConfig()
	cfg.MaxSnippetBytes = 50
	a := NewAdvisor(cfg, &Registry{})

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	prompt := a.buildPrompt(layers.DiffContext{Path: "m.py", BeforeText: string(long), AfterText: string(long)})
	assert.Less(t, len(prompt), 700, "prompt must stay bounded")
}
