package layers

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"semdiff/internal/semantic"
)

// PatternDetector is layer 5a: stateless whole-text heuristics over the raw
// before/after strings. Each detector carries a fixed confidence; only
// candidates above the emission threshold leave the layer.
type PatternDetector struct {
	detectors []patternCheck
}

const patternEmitThreshold = 0.6

type patternCheck struct {
	name       string
	eventType  semantic.EventType
	confidence float64
	detail     string
	impact     string
	match      func(before, after string) bool
}

var (
	credentialRe = regexp.MustCompile(`(?i)(password|passwd|secret|api_?key|token|private_?key)\s*[:=]\s*["'][^"']{4,}["']`)
	unsafeCallRe = regexp.MustCompile(`(?i)\b(eval|exec)\s*\(|pickle\.loads|yaml\.load\s*\(|subprocess\.call\s*\(.*shell\s*=\s*True|dangerouslySetInnerHTML`)
	cachingRe    = regexp.MustCompile(`(?i)lru_cache|memoize|functools\.cache|@cache\b|cache\.get|sync\.Map|Memoization`)
	loggingRe    = regexp.MustCompile(`(?i)\blogging\.|\blogger\.|\blog\.(debug|info|warn|warning|error)|console\.(log|warn|error)|slog\.`)
	builtinRe    = regexp.MustCompile(`\b(map|filter|reduce|sum|min|max|sorted|any|all)\s*\(`)
	algorithmRe  = regexp.MustCompile(`(?i)\b(binary[_ ]search|quicksort|mergesort|heapq|bisect|memo|dynamic[_ ]programming)\b`)
	factoryRe    = regexp.MustCompile(`(?i)\b\w*(factory|builder)\b`)
	singletonRe  = regexp.MustCompile(`(?i)\b(singleton|_instance\b|getInstance|sync\.Once)`)
	observerRe   = regexp.MustCompile(`(?i)\b(observer|subscribe|notify_all|addEventListener|emit)\b`)
	tryRe        = regexp.MustCompile(`\b(try|except|catch|rescue)\b`)
	annotationRe = regexp.MustCompile(`(?m)def\s+\w+\s*\([^)]*:\s*\w|->\s*[\w\[\]]+\s*:`)
)

func NewPatternDetector() *PatternDetector {
	return &PatternDetector{detectors: []patternCheck{
		{
			name: "extract-method", eventType: semantic.EventRefactoringExtractMethod,
			confidence: 0.7,
			detail:     "new helper functions appeared while existing bodies shrank",
			impact:     "maintainability",
			match: func(before, after string) bool {
				return declCount(after) > declCount(before) && lineCount(after) <= lineCount(before)+2
			},
		},
		{
			name: "inline-method", eventType: semantic.EventRefactoringInlineMethod,
			confidence: 0.7,
			detail:     "helper functions were folded back into their callers",
			impact:     "maintainability",
			match: func(before, after string) bool {
				return declCount(after) < declCount(before) && lineCount(after) < lineCount(before)
			},
		},
		{
			name: "loop-to-builtin", eventType: semantic.EventLoopConvertedToBuiltin,
			confidence: 0.8,
			detail:     "an explicit loop was replaced with a builtin aggregate call",
			impact:     "readability",
			match: func(before, after string) bool {
				return loopCount(after) < loopCount(before) &&
					len(builtinRe.FindAllString(after, -1)) > len(builtinRe.FindAllString(before, -1))
			},
		},
		{
			name: "credential-removed", eventType: semantic.EventHardcodedCredentialRemoved,
			confidence: 0.9,
			detail:     "a hard-coded credential literal was removed",
			impact:     "security",
			match: func(before, after string) bool {
				return credentialRe.MatchString(before) && !credentialRe.MatchString(after)
			},
		},
		{
			name: "credential-added", eventType: semantic.EventHardcodedCredentialAdded,
			confidence: 0.9,
			detail:     "a hard-coded credential literal was introduced",
			impact:     "security",
			match: func(before, after string) bool {
				return !credentialRe.MatchString(before) && credentialRe.MatchString(after)
			},
		},
		{
			name: "unsafe-call-removed", eventType: semantic.EventSecurityImprovement,
			confidence: 0.8,
			detail:     "an unsafe call pattern was removed",
			impact:     "security",
			match: func(before, after string) bool {
				return unsafeCallRe.MatchString(before) && !unsafeCallRe.MatchString(after)
			},
		},
		{
			name: "unsafe-call-added", eventType: semantic.EventSecurityRiskIntroduced,
			confidence: 0.8,
			detail:     "an unsafe call pattern was introduced",
			impact:     "security",
			match: func(before, after string) bool {
				return !unsafeCallRe.MatchString(before) && unsafeCallRe.MatchString(after)
			},
		},
		{
			name: "caching-introduced", eventType: semantic.EventCachingIntroduced,
			confidence: 0.8,
			detail:     "caching or memoization vocabulary newly appears",
			impact:     "performance",
			match: func(before, after string) bool {
				return !cachingRe.MatchString(before) && cachingRe.MatchString(after)
			},
		},
		{
			name: "algorithm-keywords", eventType: semantic.EventAlgorithmOptimization,
			confidence: 0.7,
			detail:     "algorithmic vocabulary newly appears",
			impact:     "performance",
			match: func(before, after string) bool {
				return !algorithmRe.MatchString(before) && algorithmRe.MatchString(after)
			},
		},
		{
			name: "factory-pattern", eventType: semantic.EventDesignPatternApplied,
			confidence: 0.7,
			detail:     "factory or builder naming newly appears",
			impact:     "design",
			match: func(before, after string) bool {
				return !factoryRe.MatchString(before) && factoryRe.MatchString(after)
			},
		},
		{
			name: "singleton-pattern", eventType: semantic.EventDesignPatternApplied,
			confidence: 0.7,
			detail:     "singleton vocabulary newly appears",
			impact:     "design",
			match: func(before, after string) bool {
				return !singletonRe.MatchString(before) && singletonRe.MatchString(after)
			},
		},
		{
			name: "observer-pattern", eventType: semantic.EventDesignPatternApplied,
			confidence: 0.7,
			detail:     "observer or publish/subscribe vocabulary newly appears",
			impact:     "design",
			match: func(before, after string) bool {
				return !observerRe.MatchString(before) && observerRe.MatchString(after)
			},
		},
		{
			name: "error-handling-adopted", eventType: semantic.EventErrorHandlingPatternAdopted,
			confidence: 0.8,
			detail:     "structured error handling newly appears",
			impact:     "reliability",
			match: func(before, after string) bool {
				return !tryRe.MatchString(before) && tryRe.MatchString(after)
			},
		},
		{
			name: "logging-introduced", eventType: semantic.EventLoggingIntroduced,
			confidence: 0.8,
			detail:     "logging calls newly appear",
			impact:     "observability",
			match: func(before, after string) bool {
				return !loggingRe.MatchString(before) && loggingRe.MatchString(after)
			},
		},
		{
			name: "type-annotations", eventType: semantic.EventTypeAnnotationsIntroduced,
			confidence: 0.7,
			detail:     "parameter or return type annotations newly appear",
			impact:     "maintainability",
			match: func(before, after string) bool {
				return !annotationRe.MatchString(before) && annotationRe.MatchString(after)
			},
		},
		{
			name: "simplification", eventType: semantic.EventCodeSimplification,
			confidence: 0.7,
			detail:     "the file shrank substantially with fewer branches",
			impact:     "readability",
			match: func(before, after string) bool {
				return lineCount(before) >= 10 &&
					lineCount(after)*2 <= lineCount(before) &&
					loopCount(after) <= loopCount(before)
			},
		},
	}}
}

func (p *PatternDetector) Name() string { return "patterns" }

func (p *PatternDetector) Diff(ctx DiffContext) []semantic.Event {
	var events []semantic.Event
	for _, d := range p.detectors {
		if d.confidence <= patternEmitThreshold {
			continue
		}
		if !d.match(ctx.BeforeText, ctx.AfterText) {
			continue
		}
		events = append(events, semantic.Event{
			ID:         uuid.NewString(),
			Type:       d.eventType,
			Location:   ctx.Path,
			Layer:      semantic.LayerHeuristic,
			Details:    d.detail,
			Confidence: d.confidence,
			Reasoning:  "text pattern: " + d.name,
			Impact:     d.impact,
		})
	}
	return events
}

var (
	declRe      = regexp.MustCompile(`(?m)^\s*(def |func |fn |function\b|const \w+ = \(|public |private )`)
	loopScanRe  = regexp.MustCompile(`\b(for|while)\b`)
	loopBoundRe = regexp.MustCompile(`\bloop\s*\{`)
)

func declCount(text string) int { return len(declRe.FindAllString(text, -1)) }

func loopCount(text string) int {
	return len(loopScanRe.FindAllString(text, -1)) + len(loopBoundRe.FindAllString(text, -1))
}

func lineCount(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
