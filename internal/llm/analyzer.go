package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"semdiff/internal/core/config"
	"semdiff/internal/layers"
	"semdiff/internal/semantic"
	"semdiff/internal/shared/observability"
	"semdiff/internal/shared/util"
)

const systemInstruction = "You are a source code change analyst. " +
	"Respond only with a JSON array, no prose outside it."

const advisoryKeepThreshold = 0.7

// Advisor is the advisory classifier stage. Unlike the deterministic layers it
// takes a context because it may perform network calls.
type Advisor struct {
	cfg      config.LLM
	registry *Registry
	limiter  *util.Limiter
}

func NewAdvisor(cfg config.LLM, registry *Registry) *Advisor {
	return &Advisor{
		cfg:      cfg,
		registry: registry,
		limiter:  util.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

func (a *Advisor) Name() string { return "advisory" }

// Diff runs the cost gate, then the provider chain, then response parsing.
// It never returns an error: an unusable or absent response means no events.
func (a *Advisor) Diff(ctx context.Context, dc layers.DiffContext) []semantic.Event {
	if !a.cfg.Enabled || a.registry.Len() == 0 {
		return nil
	}
	if reason := a.gateReject(dc.BeforeText, dc.AfterText); reason != "" {
		observability.CostGateRejections.Inc()
		slog.Debug("llm cost gate rejected diff", "path", dc.Path, "reason", reason)
		return nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		slog.Debug("llm rate limiter wait aborted", "path", dc.Path, "error", err)
		return nil
	}

	prompt := a.buildPrompt(dc)
	response := a.registry.Query(ctx, prompt)
	return a.parseResponse(response, dc.Path)
}

// --- cost gate ---

var (
	simpleLiteralLineRe = regexp.MustCompile(`^\s*[\w.\[\]'"]+\s*[:=]\s*["'\d\[{(tfTFn-].*[,;]?\s*$`)
	commentLineRe       = regexp.MustCompile(`^\s*(#|//|/\*|\*|--)`)
)

// complexitySignals weights the declaration and flow vocabulary that makes a
// diff worth a model's attention.
var complexitySignals = map[string]int{
	"class": 2, "def": 2, "func": 2, "function": 2, "fn": 2,
	"import": 1, "from": 1, "require": 1, "use": 1,
	"try": 2, "except": 2, "catch": 2, "finally": 1,
	"for": 1, "while": 1, "async": 2, "await": 1,
	"lambda": 2, "yield": 2, "@": 1,
}

// gateReject returns a non-empty reason when the diff should not reach any
// provider. The algorithmic-rewrite heuristic can override the signal check.
func (a *Advisor) gateReject(before, after string) string {
	if lineTotal(before) <= 5 && lineTotal(after) <= 5 {
		return "trivial size"
	}
	if normalizeText(before) == normalizeText(after) {
		return "cosmetic change"
	}
	if changed := changedLines(before, after); len(changed) > 0 && allSimpleLiteralEdits(changed) {
		return "simple literal edits"
	}
	if signalScore(after) < a.cfg.ComplexityThreshold && !looksLikeAlgorithmicRewrite(before, after) {
		return "below complexity threshold"
	}
	return ""
}

func lineTotal(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

// normalizeText strips blank lines, comment lines and all inline whitespace.
func normalizeText(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || commentLineRe.MatchString(trimmed) {
			continue
		}
		sb.WriteString(strings.Join(strings.Fields(trimmed), ""))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// changedLines is a symmetric line-set difference, order-insensitive.
func changedLines(before, after string) []string {
	beforeSet := make(map[string]int)
	for _, line := range strings.Split(before, "\n") {
		beforeSet[strings.TrimSpace(line)]++
	}
	afterSet := make(map[string]int)
	for _, line := range strings.Split(after, "\n") {
		afterSet[strings.TrimSpace(line)]++
	}

	var changed []string
	for line, n := range afterSet {
		if line != "" && beforeSet[line] != n {
			changed = append(changed, line)
		}
	}
	for line, n := range beforeSet {
		if line != "" && afterSet[line] != n {
			changed = append(changed, line)
		}
	}
	return changed
}

func allSimpleLiteralEdits(lines []string) bool {
	for _, line := range lines {
		if !simpleLiteralLineRe.MatchString(line) {
			return false
		}
	}
	return true
}

func signalScore(text string) int {
	score := 0
	for signal, weight := range complexitySignals {
		if signal == "@" {
			score += strings.Count(text, "\n@") * weight
			continue
		}
		score += countWord(text, signal) * weight
	}
	return score
}

func countWord(text, word string) int {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return len(re.FindAllString(text, -1))
}

var (
	gateLoopRe = regexp.MustCompile(`\b(for|while)\b`)
	gateFuncRe = regexp.MustCompile(`(?m)^\s*(def |func |fn |function\b)`)
)

// looksLikeAlgorithmicRewrite fires when loop structure and function structure
// moved together, which low signal scores alone would hide.
func looksLikeAlgorithmicRewrite(before, after string) bool {
	loopDelta := len(gateLoopRe.FindAllString(after, -1)) != len(gateLoopRe.FindAllString(before, -1))
	funcDelta := len(gateFuncRe.FindAllString(after, -1)) != len(gateFuncRe.FindAllString(before, -1))
	return loopDelta && funcDelta
}

// --- prompt ---

func (a *Advisor) buildPrompt(dc layers.DiffContext) string {
	limit := a.cfg.MaxSnippetBytes
	var sb strings.Builder
	sb.WriteString("Compare the two versions of ")
	sb.WriteString(dc.Path)
	sb.WriteString(" and report semantically meaningful changes.\n\n")
	sb.WriteString("BEFORE:\n```\n")
	sb.WriteString(util.Truncate(dc.BeforeText, limit))
	sb.WriteString("\n```\n\nAFTER:\n```\n")
	sb.WriteString(util.Truncate(dc.AfterText, limit))
	sb.WriteString("\n```\n\n")
	sb.WriteString("Reply with a JSON array of objects, each with the fields " +
		`"change_type", "description", "confidence" (0.0-1.0), "reasoning", ` +
		`"impact" and "node_id". Report only changes that alter behavior, ` +
		"performance, security or design. An empty array is a valid answer.")
	return sb.String()
}

// --- response parsing ---

type advisoryCandidate struct {
	ChangeType  string  `json:"change_type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
	Impact      string  `json:"impact"`
	NodeID      string  `json:"node_id"`
}

var advisoryTypes = map[string]semantic.EventType{
	"refactoring":      semantic.EventAIDetectedRefactoring,
	"optimization":     semantic.EventAIDetectedOptimization,
	"performance":      semantic.EventAIDetectedOptimization,
	"security":         semantic.EventAIDetectedSecurityChange,
	"behavior":         semantic.EventAIDetectedBehaviorChange,
	"behavior_change":  semantic.EventAIDetectedBehaviorChange,
	"algorithm":        semantic.EventAIDetectedAlgorithmShift,
	"algorithm_change": semantic.EventAIDetectedAlgorithmShift,
}

func (a *Advisor) parseResponse(response, path string) []semantic.Event {
	candidates, ok := decodeCandidates(response)
	if !ok {
		return phraseFallback(response, path)
	}

	var events []semantic.Event
	for _, c := range candidates {
		if c.Confidence <= advisoryKeepThreshold {
			continue
		}
		eventType, known := advisoryTypes[strings.ToLower(c.ChangeType)]
		if !known {
			eventType = semantic.EventAIAdvisory
		}
		events = append(events, semantic.Event{
			ID:         uuid.NewString(),
			Type:       eventType,
			NodeID:     semantic.NodeID(c.NodeID),
			Location:   path,
			Layer:      semantic.LayerAdvisory,
			Details:    c.Description,
			Confidence: c.Confidence,
			Reasoning:  c.Reasoning,
			Impact:     c.Impact,
		})
	}
	return events
}

// decodeCandidates extracts the first bracketed JSON array from the raw model
// output. Models routinely wrap the array in prose or code fences.
func decodeCandidates(response string) ([]advisoryCandidate, bool) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	var candidates []advisoryCandidate
	if err := json.Unmarshal([]byte(response[start:end+1]), &candidates); err != nil {
		return nil, false
	}
	return candidates, true
}

var fallbackPhrases = []struct {
	re        *regexp.Regexp
	eventType semantic.EventType
}{
	{regexp.MustCompile(`(?i)algorithm\s+(optimization|change|rewrite)`), semantic.EventAIDetectedAlgorithmShift},
	{regexp.MustCompile(`(?i)security\s+(enhancement|improvement|fix|risk)`), semantic.EventAIDetectedSecurityChange},
	{regexp.MustCompile(`(?i)performance\s+(optimization|improvement)`), semantic.EventAIDetectedOptimization},
	{regexp.MustCompile(`(?i)refactor(ing|ed)?`), semantic.EventAIDetectedRefactoring},
	{regexp.MustCompile(`(?i)behav(ior|iour)\s+change`), semantic.EventAIDetectedBehaviorChange},
}

// fallbackConfidence sits just above the keep threshold so salvaged events
// clear the same floor as decoded candidates.
const fallbackConfidence = 0.75

// phraseFallback salvages an undecodable response: the first known phrase
// yields a single low-detail event.
func phraseFallback(response, path string) []semantic.Event {
	for _, p := range fallbackPhrases {
		match := p.re.FindString(response)
		if match == "" {
			continue
		}
		return []semantic.Event{{
			ID:         uuid.NewString(),
			Type:       p.eventType,
			Location:   path,
			Layer:      semantic.LayerAdvisory,
			Details:    fmt.Sprintf("model response mentioned %q", strings.ToLower(match)),
			Confidence: fallbackConfidence,
			Reasoning:  "synthesized from unstructured model output",
		}}
	}
	return nil
}
