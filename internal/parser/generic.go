package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semdiff/internal/semantic"
)

// genericNativeExtractor is a configuration-driven extractor for languages
// outside the script families. It recognizes declaration node kinds
// positionally instead of carrying a hand-written walker per language.
type genericNativeExtractor struct {
	language    string
	funcNodes   map[string]bool
	classNodes  map[string]bool
	importNodes map[string]bool
}

func newGenericNativeExtractor(language string) *genericNativeExtractor {
	e := &genericNativeExtractor{language: language}
	switch language {
	case "go":
		e.funcNodes = map[string]bool{"function_declaration": true, "method_declaration": true}
		e.classNodes = map[string]bool{"type_declaration": true}
		e.importNodes = map[string]bool{"import_declaration": true}
	case "java":
		e.funcNodes = map[string]bool{"method_declaration": true, "constructor_declaration": true}
		e.classNodes = map[string]bool{"class_declaration": true, "interface_declaration": true, "enum_declaration": true}
		e.importNodes = map[string]bool{"import_declaration": true}
	case "rust":
		e.funcNodes = map[string]bool{"function_item": true}
		e.classNodes = map[string]bool{"struct_item": true, "enum_item": true, "trait_item": true}
		e.importNodes = map[string]bool{"use_declaration": true}
	}
	return e
}

func (e *genericNativeExtractor) Extract(root *sitter.Node, source []byte) (fileFacts, error) {
	facts := fileFacts{}
	ctx := &ExtractionContext{Source: source, Facts: &facts}

	handlers := make(map[string]NodeHandler)
	for kind := range e.funcNodes {
		handlers[kind] = e.extractFunction
	}
	for kind := range e.classNodes {
		handlers[kind] = e.extractClass
	}
	for kind := range e.importNodes {
		handlers[kind] = e.extractImport
	}
	engine := NewExtractorEngine(handlers)
	engine.Walk(ctx, root)
	return facts, nil
}

func (e *genericNativeExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	text := ctx.Text(node)
	switch e.language {
	case "go":
		for _, m := range stringLitRe.FindAllStringSubmatch(text, -1) {
			for _, group := range m[1:] {
				if group != "" {
					ctx.Facts.dependencies = append(ctx.Facts.dependencies, group)
				}
			}
		}
	case "java":
		dep := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "import")), ";")
		dep = strings.TrimSpace(strings.TrimPrefix(dep, "static"))
		if dep != "" {
			ctx.Facts.dependencies = append(ctx.Facts.dependencies, dep)
		}
	case "rust":
		dep := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "use")), ";")
		if dep != "" {
			ctx.Facts.dependencies = append(ctx.Facts.dependencies, dep)
		}
	}
	return true
}

func (e *genericNativeExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}
	// Qualify Go methods by receiver type so same-named methods on different
	// types keep distinct identities.
	if node.Kind() == "method_declaration" && e.language == "go" {
		if recv := ctx.FieldText(node, "receiver"); recv != "" {
			recvType := strings.Trim(recv, "()")
			if fields := strings.Fields(recvType); len(fields) > 0 {
				name = strings.TrimPrefix(fields[len(fields)-1], "*") + "." + name
			}
		}
	}

	snippet := ctx.Text(node)
	params := ctx.FieldText(node, "parameters")

	ctx.Facts.entities = append(ctx.Facts.entities, entity{
		kind:       semantic.KindFunction,
		name:       name,
		snippet:    snippet,
		signature:  firstLine(snippet),
		isAsync:    e.language == "rust" && strings.Contains(firstLine(snippet), "async "),
		hasDefault: e.language == "java" && strings.Contains(params, "..."),
	})
	return false
}

func (e *genericNativeExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		// Go type_declaration wraps type_spec children.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() == "type_spec" {
				e.extractGoTypeSpec(ctx, child)
			}
		}
		return true
	}

	ent := entity{
		kind:      semantic.KindClass,
		name:      name,
		snippet:   ctx.Text(node),
		signature: firstLine(ctx.Text(node)),
	}

	if e.language == "java" {
		if super := ctx.FieldText(node, "superclass"); super != "" {
			ent.bases = append(ent.bases, strings.TrimSpace(strings.TrimPrefix(super, "extends")))
		}
		if ifaces := ctx.FieldText(node, "interfaces"); ifaces != "" {
			for _, b := range strings.Split(strings.TrimPrefix(ifaces, "implements"), ",") {
				if b = strings.TrimSpace(b); b != "" {
					ent.bases = append(ent.bases, b)
				}
			}
		}
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				child := body.Child(i)
				switch child.Kind() {
				case "method_declaration":
					ent.methods = append(ent.methods, ctx.FieldText(child, "name"))
				case "field_declaration":
					for _, m := range assignRe.FindAllStringSubmatch(ctx.Text(child), -1) {
						ent.properties = append(ent.properties, m[1])
					}
				case "class_declaration":
					ent.nested++
				}
			}
		}
	}

	ctx.Facts.entities = append(ctx.Facts.entities, ent)
	return false
}

func (e *genericNativeExtractor) extractGoTypeSpec(ctx *ExtractionContext, spec *sitter.Node) {
	name := ctx.FieldText(spec, "name")
	if name == "" {
		return
	}
	typeNode := spec.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	kind := typeNode.Kind()
	if kind != "struct_type" && kind != "interface_type" {
		return
	}

	ent := entity{
		kind:      semantic.KindClass,
		name:      name,
		snippet:   ctx.Text(spec),
		signature: "type " + name + " " + strings.TrimSuffix(kind, "_type"),
	}
	if kind == "interface_type" {
		// Interface method names double as the methods set.
		for i := uint(0); i < typeNode.ChildCount(); i++ {
			child := typeNode.Child(i)
			if child.Kind() == "method_elem" || child.Kind() == "method_spec" {
				if m := ctx.FieldText(child, "name"); m != "" {
					ent.methods = append(ent.methods, m)
				}
			}
		}
	} else {
		for i := uint(0); i < typeNode.ChildCount(); i++ {
			child := typeNode.Child(i)
			if child.Kind() == "field_declaration_list" {
				for j := uint(0); j < child.ChildCount(); j++ {
					field := child.Child(j)
					if field.Kind() == "field_declaration" {
						if f := ctx.FieldText(field, "name"); f != "" {
							ent.properties = append(ent.properties, f)
						}
					}
				}
			}
		}
	}
	ctx.Facts.entities = append(ctx.Facts.entities, ent)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "{"))
}
