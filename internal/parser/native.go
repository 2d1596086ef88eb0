package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"semdiff/internal/core/errors"
)

// GrammarLoader owns the native tree-sitter grammars (first tier).
type GrammarLoader struct {
	languages map[string]*sitter.Language
}

func NewGrammarLoader(registry map[string]LanguageSpec) (*GrammarLoader, error) {
	gl := &GrammarLoader{languages: make(map[string]*sitter.Language)}
	for langID, spec := range registry {
		if !spec.Enabled {
			continue
		}
		switch langID {
		case "go":
			gl.languages["go"] = sitter.NewLanguage(tree_sitter_go.Language())
		case "java":
			gl.languages["java"] = sitter.NewLanguage(tree_sitter_java.Language())
		case "javascript":
			gl.languages["javascript"] = sitter.NewLanguage(tree_sitter_javascript.Language())
		case "python":
			gl.languages["python"] = sitter.NewLanguage(tree_sitter_python.Language())
		case "rust":
			gl.languages["rust"] = sitter.NewLanguage(tree_sitter_rust.Language())
		case "typescript":
			gl.languages["typescript"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		default:
			return nil, errors.New(errors.CodeNotSupported,
				fmt.Sprintf("language %q has no native grammar", langID))
		}
	}
	return gl, nil
}

// nativeExtractorFor returns the native-tier extractor for a language family.
func nativeExtractorFor(spec LanguageSpec) nativeExtractor {
	switch spec.Family {
	case FamilyDynamicScript:
		if spec.Name == "python" {
			return &pythonNativeExtractor{}
		}
		return &scriptNativeExtractor{language: spec.Name}
	case FamilyStaticScript:
		return &scriptNativeExtractor{language: spec.Name, typed: true}
	default:
		return newGenericNativeExtractor(spec.Name)
	}
}

type nativeExtractor interface {
	Extract(root *sitter.Node, source []byte) (fileFacts, error)
}

// parseNative runs the first-tier grammar parse. The tier is strict: a
// missing grammar, a nil tree or any syntax error in the root counts as
// failure, and the recovery tier takes over on damaged input.
func (gl *GrammarLoader) parseNative(spec LanguageSpec, source []byte) (fileFacts, error) {
	grammar := gl.languages[spec.Name]
	if grammar == nil {
		return fileFacts{}, errors.AddContext(
			errors.New(errors.CodeNotSupported, "grammar not loaded"),
			errors.CtxLanguage, spec.Name)
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(grammar)

	tree := p.Parse(source, nil)
	if tree == nil {
		return fileFacts{}, errors.New(errors.CodeParseFailure, "native parse returned nil tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return fileFacts{}, errors.New(errors.CodeParseFailure, "native parse returned nil root")
	}
	if root.HasError() {
		return fileFacts{}, errors.New(errors.CodeParseFailure, "native parse found syntax errors")
	}

	return nativeExtractorFor(spec).Extract(root, source)
}
