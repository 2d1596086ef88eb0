package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semdiff/internal/semantic"
)

type pythonNativeExtractor struct{}

func (e *pythonNativeExtractor) Extract(root *sitter.Node, source []byte) (fileFacts, error) {
	facts := fileFacts{}
	ctx := &ExtractionContext{Source: source, Facts: &facts}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
		"function_definition":   e.extractFunction,
		"class_definition":      e.extractClass,
	})
	engine.Walk(ctx, root)
	return facts, nil
}

func (e *pythonNativeExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			ctx.Facts.dependencies = append(ctx.Facts.dependencies, ctx.Text(child))
		case "aliased_import":
			for j := uint(0); j < child.ChildCount(); j++ {
				sub := child.Child(j)
				if sub.Kind() == "dotted_name" || sub.Kind() == "identifier" {
					ctx.Facts.dependencies = append(ctx.Facts.dependencies, ctx.Text(sub))
					break
				}
			}
		}
	}
	return true
}

func (e *pythonNativeExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	module := ctx.FieldText(node, "module_name")
	module = strings.TrimLeft(module, ".")
	if module != "" {
		ctx.Facts.dependencies = append(ctx.Facts.dependencies, module)
	}
	return true
}

func (e *pythonNativeExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}
	snippet := ctx.Text(node)
	params := ctx.FieldText(node, "parameters")

	ent := entity{
		kind:       semantic.KindFunction,
		name:       name,
		snippet:    snippet,
		signature:  "def " + name + params,
		decorators: pythonDecorators(ctx, node),
		isAsync:    strings.HasPrefix(snippet, "async"),
		hasDefault: strings.Contains(params, "="),
	}
	ctx.Facts.entities = append(ctx.Facts.entities, ent)
	// Keep walking: nested defs are entities of their own.
	return false
}

func (e *pythonNativeExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}

	ent := entity{
		kind:       semantic.KindClass,
		name:       name,
		snippet:    ctx.Text(node),
		signature:  "class " + name,
		decorators: pythonDecorators(ctx, node),
	}

	supers := ctx.FieldText(node, "superclasses")
	for _, base := range strings.Split(strings.Trim(supers, "()"), ",") {
		base = strings.TrimSpace(base)
		if base != "" {
			ent.bases = append(ent.bases, base)
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			child := body.Child(i)
			switch child.Kind() {
			case "function_definition":
				ent.methods = append(ent.methods, ctx.FieldText(child, "name"))
			case "decorated_definition":
				for j := uint(0); j < child.ChildCount(); j++ {
					if inner := child.Child(j); inner.Kind() == "function_definition" {
						ent.methods = append(ent.methods, ctx.FieldText(inner, "name"))
					}
				}
			case "class_definition":
				ent.nested++
			case "expression_statement":
				for _, m := range assignRe.FindAllStringSubmatch(ctx.Text(child), -1) {
					ent.properties = append(ent.properties, m[1])
				}
			}
		}
	}

	ctx.Facts.entities = append(ctx.Facts.entities, ent)
	return false
}

// pythonDecorators reads "@name" siblings when the definition sits inside a
// decorated_definition wrapper.
func pythonDecorators(ctx *ExtractionContext, node *sitter.Node) []string {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child.Kind() == "decorator" {
			out = append(out, strings.TrimPrefix(ctx.Text(child), "@"))
		}
	}
	return out
}
