package layers

import (
	"testing"

	"semdiff/internal/semantic"
)

func runPatterns(before, after string) []semantic.Event {
	return NewPatternDetector().Diff(DiffContext{
		Path:       "m.py",
		BeforeText: before,
		AfterText:  after,
	})
}

func TestPatternsCredentialRemoved(t *testing.T) {
	before := `password = "hunter2secret"
def connect():
    return db.open(password)
`
	after := `def connect():
    return db.open(os.environ["DB_PASSWORD"])
`
	events := runPatterns(before, after)
	ev := findEvent(events, semantic.EventHardcodedCredentialRemoved)
	if ev == nil {
		t.Fatal("expected hardcoded_credential_removed")
	}
	if ev.Confidence != 0.9 {
		t.Errorf("expected fixed confidence 0.9, got %f", ev.Confidence)
	}
	if ev.Impact != "security" {
		t.Errorf("expected security impact, got %q", ev.Impact)
	}
}

func TestPatternsCredentialAdded(t *testing.T) {
	events := runPatterns("x = 1\n", `api_key = "sk-123456789"`+"\n")
	if findEvent(events, semantic.EventHardcodedCredentialAdded) == nil {
		t.Error("expected hardcoded_credential_added")
	}
}

func TestPatternsLoggingIntroduced(t *testing.T) {
	before := "def handle(req):\n    process(req)\n"
	after := "def handle(req):\n    logger.info(\"handling\")\n    process(req)\n"
	if findEvent(runPatterns(before, after), semantic.EventLoggingIntroduced) == nil {
		t.Error("expected logging_introduced")
	}
}

func TestPatternsCachingIntroduced(t *testing.T) {
	before := "def compute(n):\n    return slow(n)\n"
	after := "@lru_cache(maxsize=None)\ndef compute(n):\n    return slow(n)\n"
	if findEvent(runPatterns(before, after), semantic.EventCachingIntroduced) == nil {
		t.Error("expected caching_introduced")
	}
}

func TestPatternsUnsafeCallRemoved(t *testing.T) {
	before := "def run(code):\n    return eval(code)\n"
	after := "def run(code):\n    return ast.literal_eval(code)\n"
	if findEvent(runPatterns(before, after), semantic.EventSecurityImprovement) == nil {
		t.Error("expected security_improvement when eval disappears")
	}
}

func TestPatternsAllConfidencesAboveThreshold(t *testing.T) {
	before := "password = \"topsecret1\"\ndef f():\n    return eval(x)\n"
	after := "@lru_cache\ndef f():\n    try:\n        logger.info(\"x\")\n    except Exception:\n        pass\n"
	for _, e := range runPatterns(before, after) {
		if e.Confidence <= 0.6 {
			t.Errorf("pattern layer must only emit confidence > 0.6, got %f for %s", e.Confidence, e.Type)
		}
		if e.Layer != semantic.LayerHeuristic {
			t.Errorf("unexpected layer tag %s", e.Layer)
		}
	}
}

func TestPatternsQuietOnNeutralEdit(t *testing.T) {
	before := "def f():\n    return 1\n"
	after := "def f():\n    return 2\n"
	if events := runPatterns(before, after); len(events) != 0 {
		t.Errorf("a literal tweak should trigger no patterns, got %d", len(events))
	}
}
