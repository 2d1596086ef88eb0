package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semdiff/internal/core/errors"
	"semdiff/internal/semantic"
)

// recoveryKinds maps declaration node kinds for the shallow recovery walk.
type recoveryKinds struct {
	funcKinds   map[string]semantic.NodeKind
	classKinds  map[string]bool
	importKinds map[string]bool
}

func recoveryKindsFor(language string) recoveryKinds {
	switch language {
	case "python":
		return recoveryKinds{
			funcKinds:   map[string]semantic.NodeKind{"function_definition": semantic.KindFunction},
			classKinds:  map[string]bool{"class_definition": true},
			importKinds: map[string]bool{"import_statement": true, "import_from_statement": true},
		}
	case "javascript", "typescript":
		return recoveryKinds{
			funcKinds: map[string]semantic.NodeKind{
				"function_declaration":           semantic.KindFunction,
				"generator_function_declaration": semantic.KindFunction,
				"method_definition":              semantic.KindFunction,
			},
			classKinds:  map[string]bool{"class_declaration": true, "interface_declaration": true},
			importKinds: map[string]bool{"import_statement": true},
		}
	case "go":
		return recoveryKinds{
			funcKinds: map[string]semantic.NodeKind{
				"function_declaration": semantic.KindFunction,
				"method_declaration":   semantic.KindFunction,
			},
			classKinds:  map[string]bool{"type_declaration": true},
			importKinds: map[string]bool{"import_declaration": true},
		}
	case "java":
		return recoveryKinds{
			funcKinds:   map[string]semantic.NodeKind{"method_declaration": semantic.KindFunction},
			classKinds:  map[string]bool{"class_declaration": true, "interface_declaration": true},
			importKinds: map[string]bool{"import_declaration": true},
		}
	case "rust":
		return recoveryKinds{
			funcKinds:   map[string]semantic.NodeKind{"function_item": semantic.KindFunction},
			classKinds:  map[string]bool{"struct_item": true, "enum_item": true, "trait_item": true},
			importKinds: map[string]bool{"use_declaration": true},
		}
	}
	return recoveryKinds{}
}

// parseRecovery is the second tier: the same grammar as the native tier but
// an error-tolerant shallow walk. It runs when the strict first-tier parse
// has rejected the input, and extracts whatever declarations survived by
// skipping error and missing subtrees instead of failing on them.
func (gl *GrammarLoader) parseRecovery(spec LanguageSpec, source []byte) (fileFacts, error) {
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
		return fileFacts{}, errors.New(errors.CodeParseFailure, "recovery parse returned nil tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return fileFacts{}, errors.New(errors.CodeParseFailure, "recovery parse returned nil root")
	}

	facts := fileFacts{}
	kinds := recoveryKindsFor(spec.Name)
	walkRecovery(root, source, spec.Name, kinds, &facts)
	if len(facts.entities) == 0 && len(facts.dependencies) == 0 {
		return fileFacts{}, errors.New(errors.CodeParseFailure, "recovery walk found no declarations")
	}
	return facts, nil
}

func walkRecovery(node *sitter.Node, source []byte, language string, kinds recoveryKinds, facts *fileFacts) {
	if node == nil || node.IsError() || node.IsMissing() {
		return
	}
	kind := node.Kind()

	switch {
	case kinds.importKinds[kind]:
		facts.dependencies = append(facts.dependencies,
			extractImportsFromText(language, nodeText(node, source))...)
		return
	case kinds.funcKinds[kind] != "":
		if name := recoveryNodeName(node, source); name != "" {
			snippet := nodeText(node, source)
			facts.entities = append(facts.entities, entity{
				kind:       kinds.funcKinds[kind],
				name:       name,
				snippet:    snippet,
				signature:  firstLine(snippet),
				isAsync:    strings.HasPrefix(snippet, "async"),
				hasDefault: strings.Contains(firstLine(snippet), "="),
			})
		}
	case kinds.classKinds[kind]:
		if name := recoveryNodeName(node, source); name != "" {
			snippet := nodeText(node, source)
			ent := entity{
				kind:      semantic.KindClass,
				name:      name,
				snippet:   snippet,
				signature: firstLine(snippet),
			}
			collectRecoveryMethods(node, source, kinds, &ent)
			facts.entities = append(facts.entities, ent)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkRecovery(node.Child(i), source, language, kinds, facts)
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func recoveryNodeName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return nodeText(name, source)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "identifier" || child.Kind() == "type_identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

func collectRecoveryMethods(node *sitter.Node, source []byte, kinds recoveryKinds, ent *entity) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.IsError() || child.IsMissing() {
			continue
		}
		if kinds.funcKinds[child.Kind()] != "" {
			if m := recoveryNodeName(child, source); m != "" {
				ent.methods = append(ent.methods, m)
			}
			continue
		}
		collectRecoveryMethods(child, source, kinds, ent)
	}
}
