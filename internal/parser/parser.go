package parser

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"semdiff/internal/shared/observability"
)

// Parser reduces source text to a normalized fact model via a tiered fallback
// chain: strict native grammar, error-tolerant recovery walk, regex
// heuristics. It never fails: the regex tier guarantees some result for any
// input.
type Parser struct {
	loader     *GrammarLoader
	registry   map[string]LanguageSpec
	extensions map[string]string

	skipNative   bool
	skipRecovery bool
}

// Option configures tier availability, mainly for degradation testing.
type Option func(*Parser)

func WithoutNativeTier() Option {
	return func(p *Parser) { p.skipNative = true }
}

func WithoutRecoveryTier() Option {
	return func(p *Parser) { p.skipRecovery = true }
}

func NewParser(opts ...Option) (*Parser, error) {
	return NewParserWithRegistry(DefaultLanguageRegistry(), opts...)
}

func NewParserWithRegistry(registry map[string]LanguageSpec, opts ...Option) (*Parser, error) {
	loader, err := NewGrammarLoader(registry)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		loader:     loader,
		registry:   registry,
		extensions: make(map[string]string),
	}
	for lang, spec := range registry {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// tierStrategy is one link of the declarative fallback chain.
type tierStrategy struct {
	tier Tier
	run  func(ctx context.Context, spec LanguageSpec, source []byte) (fileFacts, error)
}

func (p *Parser) strategies(language string) []tierStrategy {
	var chain []tierStrategy
	if !p.skipNative {
		chain = append(chain, tierStrategy{
			tier: TierNative,
			run: func(ctx context.Context, spec LanguageSpec, source []byte) (fileFacts, error) {
				return p.loader.parseNative(spec, source)
			},
		})
	}
	if !p.skipRecovery {
		chain = append(chain, tierStrategy{
			tier: TierRecovery,
			run: func(ctx context.Context, spec LanguageSpec, source []byte) (fileFacts, error) {
				return p.loader.parseRecovery(spec, source)
			},
		})
	}
	chain = append(chain, tierStrategy{
		tier: TierRegex,
		run: func(ctx context.Context, spec LanguageSpec, source []byte) (fileFacts, error) {
			return parseRegex(language, source), nil
		},
	})
	return chain
}

// Parse is a pure function of source text: node map plus dependency set.
func (p *Parser) Parse(ctx context.Context, path, source string) Result {
	language := p.DetectLanguage(path)
	spec, known := p.registry[language]
	if !known {
		// Unknown extension: regex-only with the combined declaration set.
		facts := parseRegex(language, []byte(source))
		return assemble(path, language, source, facts, TierRegex)
	}

	src := []byte(source)
	for _, strategy := range p.strategies(language) {
		start := time.Now()
		facts, err := strategy.run(ctx, spec, src)
		observability.ParsingDuration.WithLabelValues(language, string(strategy.tier)).
			Observe(time.Since(start).Seconds())
		if err != nil {
			observability.ParserTierFallbacks.WithLabelValues(language, string(strategy.tier)).Inc()
			slog.Debug("parser tier fell through",
				"path", path, "language", language, "tier", strategy.tier, "error", err)
			continue
		}
		return assemble(path, language, source, facts, strategy.tier)
	}

	// Unreachable in practice: the regex tier cannot error.
	return assemble(path, language, source, fileFacts{}, TierRegex)
}

// DetectLanguage maps a file path onto a registry language, or "".
func (p *Parser) DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return p.extensions[ext]
}

// IsSupportedPath reports whether the path maps to a first-class language.
// Unsupported paths still parse through the regex tier.
func (p *Parser) IsSupportedPath(path string) bool {
	return p.DetectLanguage(path) != ""
}
