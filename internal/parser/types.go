package parser

import (
	"path/filepath"
	"strings"

	"semdiff/internal/semantic"
)

// Tier identifies which fallback stratum produced a parse result.
type Tier string

const (
	TierNative   Tier = "native"
	TierRecovery Tier = "recovery"
	TierRegex    Tier = "regex"
)

// Result is one parsed file version: the node map plus the file's external
// dependency references, tagged with the tier that produced it.
type Result struct {
	Nodes        semantic.NodeMap
	Dependencies semantic.StringSet
	Language     string
	Tier         Tier
}

// Family groups languages by extraction strategy.
type Family string

const (
	FamilyDynamicScript Family = "dynamic-script"
	FamilyStaticScript  Family = "static-script"
	FamilyGeneric       Family = "generic"
)

// LanguageSpec describes one supported language.
type LanguageSpec struct {
	Name       string
	Family     Family
	Extensions []string
	Enabled    bool
}

// DefaultLanguageRegistry lists the built-in language set. The config layer
// may disable entries or add extensions.
func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"python":     {Name: "python", Family: FamilyDynamicScript, Extensions: []string{".py", ".pyw"}, Enabled: true},
		"javascript": {Name: "javascript", Family: FamilyDynamicScript, Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, Enabled: true},
		"typescript": {Name: "typescript", Family: FamilyStaticScript, Extensions: []string{".ts", ".tsx"}, Enabled: true},
		"go":         {Name: "go", Family: FamilyGeneric, Extensions: []string{".go"}, Enabled: true},
		"java":       {Name: "java", Family: FamilyGeneric, Extensions: []string{".java"}, Enabled: true},
		"rust":       {Name: "rust", Family: FamilyGeneric, Extensions: []string{".rs"}, Enabled: true},
	}
}

// entity is the tier-agnostic intermediate record for one declared thing.
// Tiers fill in what the grammar gives them; everything behavioral comes from
// the shared snippet scanner during assembly.
type entity struct {
	kind       semantic.NodeKind
	name       string
	snippet    string
	signature  string
	decorators []string
	isAsync    bool
	hasDefault bool
	bases      []string
	methods    []string
	properties []string
	nested     int
}

// fileFacts is what each tier extractor returns.
type fileFacts struct {
	entities     []entity
	dependencies []string
}

// assemble converts tier output into the immutable node map, running the
// behavior scanner per entity and once more for the file-wide module node.
func assemble(path, language string, source string, facts fileFacts, tier Tier) Result {
	profile := ProfileFor(language)
	nodes := make(semantic.NodeMap, len(facts.entities)+1)

	for _, e := range facts.entities {
		attrs := semantic.Attributes{
			Source:      e.snippet,
			Signature:   e.signature,
			IsAsync:     e.isAsync,
			HasDefaults: e.hasDefault,
		}
		for _, d := range e.decorators {
			attrs.Decorators = attrs.Decorators.Add(d)
		}
		for _, b := range e.bases {
			attrs.BaseClasses = attrs.BaseClasses.Add(b)
		}
		for _, m := range e.methods {
			attrs.Methods = attrs.Methods.Add(m)
		}
		for _, p := range e.properties {
			attrs.Properties = attrs.Properties.Add(p)
		}
		attrs.NestedClasses = e.nested
		profile.ScanBehavior(e.snippet, &attrs)

		node := semantic.NewNode(e.kind, e.name, attrs)
		nodes[node.ID] = node
	}

	// Module-level aggregate carries whole-file behavior so layer 4 can score
	// functional style at file scope even when no single entity moves.
	moduleAttrs := semantic.Attributes{Source: source}
	profile.ScanBehavior(source, &moduleAttrs)
	moduleName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	moduleNode := semantic.NewNode(semantic.KindModule, moduleName, moduleAttrs)
	nodes[moduleNode.ID] = moduleNode

	deps := semantic.NewStringSet(facts.dependencies...)
	return Result{Nodes: nodes, Dependencies: deps, Language: language, Tier: tier}
}
