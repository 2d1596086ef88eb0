package parser

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semdiff/internal/semantic"
)

var requireRe = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)

// scriptNativeExtractor handles the script family: javascript (dynamic) and
// typescript (static, adds interfaces/enums/type-annotated members).
type scriptNativeExtractor struct {
	language string
	typed    bool
}

func (e *scriptNativeExtractor) Extract(root *sitter.Node, source []byte) (fileFacts, error) {
	facts := fileFacts{}
	ctx := &ExtractionContext{Source: source, Facts: &facts}

	handlers := map[string]NodeHandler{
		"import_statement":               e.extractImport,
		"function_declaration":           e.extractFunction,
		"generator_function_declaration": e.extractFunction,
		"class_declaration":              e.extractClass,
		"method_definition":              e.extractMethod,
		"lexical_declaration":            e.extractVarDecl,
		"variable_declaration":           e.extractVarDecl,
	}
	if e.typed {
		handlers["interface_declaration"] = e.extractInterface
		handlers["abstract_class_declaration"] = e.extractClass
		handlers["enum_declaration"] = e.extractInterface
	}
	engine := NewExtractorEngine(handlers)
	engine.Walk(ctx, root)

	for _, m := range requireRe.FindAllStringSubmatch(string(source), -1) {
		facts.dependencies = append(facts.dependencies, m[1])
	}
	return facts, nil
}

func (e *scriptNativeExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	module := strings.Trim(ctx.FieldText(node, "source"), `"'`)
	if module == "" {
		module = strings.Trim(ctx.ChildText(node, "string"), `"'`)
	}
	if module != "" {
		ctx.Facts.dependencies = append(ctx.Facts.dependencies, module)
	}
	return true
}

func (e *scriptNativeExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}
	snippet := ctx.Text(node)
	params := ctx.FieldText(node, "parameters")

	ctx.Facts.entities = append(ctx.Facts.entities, entity{
		kind:       semantic.KindFunction,
		name:       name,
		snippet:    snippet,
		signature:  "function " + name + params,
		isAsync:    strings.HasPrefix(snippet, "async"),
		hasDefault: strings.Contains(params, "="),
	})
	return false
}

func (e *scriptNativeExtractor) extractMethod(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" || name == "constructor" {
		return false
	}
	snippet := ctx.Text(node)
	params := ctx.FieldText(node, "parameters")

	ctx.Facts.entities = append(ctx.Facts.entities, entity{
		kind:       semantic.KindFunction,
		name:       name,
		snippet:    snippet,
		signature:  "function " + name + params,
		isAsync:    strings.HasPrefix(snippet, "async"),
		hasDefault: strings.Contains(params, "="),
	})
	return false
}

// extractVarDecl lifts `const f = () => ...` / `let f = function ...` into
// function entities; the arrow form is the dominant declaration style.
func (e *scriptNativeExtractor) extractVarDecl(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		decl := node.Child(i)
		if decl.Kind() != "variable_declarator" {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		kind := value.Kind()
		if kind != "arrow_function" && kind != "function_expression" && kind != "function" {
			continue
		}
		name := ctx.FieldText(decl, "name")
		if name == "" {
			continue
		}
		snippet := ctx.Text(node)
		params := ctx.FieldText(value, "parameters")
		valueText := ctx.Text(value)

		ctx.Facts.entities = append(ctx.Facts.entities, entity{
			kind:       semantic.KindFunction,
			name:       name,
			snippet:    snippet,
			signature:  "function " + name + params,
			isAsync:    strings.HasPrefix(valueText, "async"),
			hasDefault: strings.Contains(params, "="),
		})
	}
	return false
}

func (e *scriptNativeExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}

	ent := entity{
		kind:      semantic.KindClass,
		name:      name,
		snippet:   ctx.Text(node),
		signature: "class " + name,
	}

	heritage := ctx.ChildText(node, "class_heritage")
	if base := strings.TrimSpace(strings.TrimPrefix(heritage, "extends")); base != "" {
		ent.bases = append(ent.bases, strings.TrimSpace(strings.Split(base, "implements")[0]))
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			child := body.Child(i)
			switch child.Kind() {
			case "method_definition":
				if m := ctx.FieldText(child, "name"); m != "" && m != "constructor" {
					ent.methods = append(ent.methods, m)
				}
			case "field_definition", "public_field_definition":
				if f := ctx.FieldText(child, "name"); f != "" {
					ent.properties = append(ent.properties, f)
				}
			case "class_declaration":
				ent.nested++
			}
		}
	}

	ctx.Facts.entities = append(ctx.Facts.entities, ent)
	return false
}

// extractInterface maps TypeScript interfaces and enums onto class-kind nodes
// so inheritance and member diffs apply to them.
func (e *scriptNativeExtractor) extractInterface(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}

	ent := entity{
		kind:      semantic.KindClass,
		name:      name,
		snippet:   ctx.Text(node),
		signature: strings.Fields(ctx.Text(node))[0] + " " + name,
	}

	if ext := ctx.ChildText(node, "extends_type_clause"); ext != "" {
		for _, base := range strings.Split(strings.TrimPrefix(ext, "extends"), ",") {
			if b := strings.TrimSpace(base); b != "" {
				ent.bases = append(ent.bases, b)
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			child := body.Child(i)
			switch child.Kind() {
			case "method_signature":
				ent.methods = append(ent.methods, ctx.FieldText(child, "name"))
			case "property_signature", "enum_assignment", "property_identifier":
				if f := ctx.FieldText(child, "name"); f != "" {
					ent.properties = append(ent.properties, f)
				} else if child.Kind() == "property_identifier" {
					ent.properties = append(ent.properties, ctx.Text(child))
				}
			}
		}
	}

	ctx.Facts.entities = append(ctx.Facts.entities, ent)
	return true
}
