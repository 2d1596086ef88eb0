package parser

import (
	"regexp"
	"strings"

	"semdiff/internal/semantic"
)

// declPattern recognizes one declaration form positionally on a single line.
// Group indices are explicit because the patterns have unequal shapes; zero
// means the pattern has no such group.
type declPattern struct {
	re          *regexp.Regexp
	kind        semantic.NodeKind
	nameGroup   int
	asyncGroup  int
	paramsGroup int
}

var pythonDecls = []declPattern{
	{regexp.MustCompile(`^\s*(async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)`), semantic.KindFunction, 2, 1, 3},
	{regexp.MustCompile(`^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)`), semantic.KindClass, 1, 0, 0},
}

var scriptDecls = []declPattern{
	{regexp.MustCompile(`^\s*(?:export\s+)?(async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([^)]*)`), semantic.KindFunction, 2, 1, 3},
	{regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(async\s+)?(?:\(([^)]*)\)|[A-Za-z_$][A-Za-z0-9_$]*)\s*=>`), semantic.KindFunction, 1, 2, 3},
	{regexp.MustCompile(`^\s*(?:export\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`), semantic.KindClass, 1, 0, 0},
	{regexp.MustCompile(`^\s*(?:export\s+)?interface\s+([A-Za-z_$][A-Za-z0-9_$]*)`), semantic.KindClass, 1, 0, 0},
}

var goDecls = []declPattern{
	{regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)`), semantic.KindFunction, 1, 0, 2},
	{regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+(?:struct|interface)\b`), semantic.KindClass, 1, 0, 0},
}

var javaDecls = []declPattern{
	{regexp.MustCompile(`^\s*(?:public|private|protected)\s+(?:static\s+)?(?:final\s+)?[A-Za-z_<>\[\]]+\s+([a-z][A-Za-z0-9_]*)\s*\(([^)]*)`), semantic.KindFunction, 1, 0, 2},
	{regexp.MustCompile(`^\s*(?:public\s+)?(?:abstract\s+)?(?:class|interface|enum)\s+([A-Za-z_][A-Za-z0-9_]*)`), semantic.KindClass, 1, 0, 0},
}

var rustDecls = []declPattern{
	{regexp.MustCompile(`^\s*(?:pub\s+)?(async\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(<]([^)]*)`), semantic.KindFunction, 2, 1, 3},
	{regexp.MustCompile(`^\s*(?:pub\s+)?(?:struct|enum|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`), semantic.KindClass, 1, 0, 0},
}

func declsFor(language string) []declPattern {
	switch language {
	case "python":
		return pythonDecls
	case "javascript", "typescript":
		return scriptDecls
	case "go":
		return goDecls
	case "java":
		return javaDecls
	case "rust":
		return rustDecls
	default:
		return append(append([]declPattern{}, pythonDecls...), scriptDecls...)
	}
}

var importPatterns = map[string][]*regexp.Regexp{
	"python": {
		regexp.MustCompile(`(?m)^\s*import\s+([A-Za-z_][\w.]*)`),
		regexp.MustCompile(`(?m)^\s*from\s+([A-Za-z_][\w.]*)\s+import`),
	},
	"javascript": {
		regexp.MustCompile(`(?m)import\s+(?:[^'"]*\s+from\s+)?['"]([^'"]+)['"]`),
		requireRe,
	},
	"go": {
		regexp.MustCompile(`(?m)^\s*(?:[A-Za-z_.]+\s+)?"([^"]+)"`),
	},
	"java": {
		regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([\w.*]+)\s*;`),
	},
	"rust": {
		regexp.MustCompile(`(?m)^\s*use\s+([\w:]+)`),
	},
}

// extractImportsFromText reduces import statements to bare module references.
// Shared by the legacy tier (which feeds it single import nodes) and the regex
// tier (which feeds it whole files).
func extractImportsFromText(language, text string) []string {
	key := language
	switch language {
	case "typescript":
		key = "javascript"
	}
	var out []string
	for _, re := range importPatterns[key] {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if m[1] != "" {
				out = append(out, m[1])
			}
		}
	}
	return out
}

// parseRegex is the last tier: a pure line scanner that recognizes
// declaration keywords positionally. It can never fail; the worst case is an
// empty fact set.
func parseRegex(language string, source []byte) fileFacts {
	text := string(source)
	facts := fileFacts{dependencies: extractImportsFromText(language, text)}

	lines := strings.Split(text, "\n")
	decls := declsFor(language)
	indentBlocks := language == "python"

	for i, line := range lines {
		for _, d := range decls {
			m := d.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name, isAsync, params := declCaptures(d, m)
			if name == "" {
				continue
			}
			snippet := captureBlock(lines, i, indentBlocks)
			ent := entity{
				kind:       d.kind,
				name:       name,
				snippet:    snippet,
				signature:  firstLine(line),
				isAsync:    isAsync,
				hasDefault: strings.Contains(params, "="),
				decorators: captureDecorators(lines, i, language),
			}
			if d.kind == semantic.KindClass {
				ent.bases = regexClassBases(language, line)
			}
			facts.entities = append(facts.entities, ent)
			break
		}
	}
	return facts
}

func declCaptures(d declPattern, m []string) (name string, isAsync bool, params string) {
	if d.nameGroup > 0 && d.nameGroup < len(m) {
		name = m[d.nameGroup]
	}
	if d.asyncGroup > 0 && d.asyncGroup < len(m) {
		isAsync = strings.TrimSpace(m[d.asyncGroup]) != ""
	}
	if d.paramsGroup > 0 && d.paramsGroup < len(m) {
		params = m[d.paramsGroup]
	}
	return name, isAsync, params
}

func captureDecorators(lines []string, declLine int, language string) []string {
	if language != "python" {
		return nil
	}
	var out []string
	for i := declLine - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "@") {
			out = append(out, strings.TrimPrefix(trimmed, "@"))
			continue
		}
		break
	}
	return out
}

func regexClassBases(language, line string) []string {
	var inner string
	switch language {
	case "python":
		if open := strings.Index(line, "("); open >= 0 {
			if close := strings.Index(line[open:], ")"); close > 0 {
				inner = line[open+1 : open+close]
			}
		}
	default:
		if idx := strings.Index(line, "extends "); idx >= 0 {
			inner = strings.TrimSpace(line[idx+len("extends "):])
			inner = strings.Trim(strings.Split(inner, "{")[0], " ")
		}
	}
	var out []string
	for _, b := range strings.Split(inner, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// captureBlock returns the declaration's body: indentation-delimited for
// python, brace-balanced for everything else.
func captureBlock(lines []string, start int, indentBlocks bool) string {
	if indentBlocks {
		return captureIndentBlock(lines, start)
	}
	return captureBraceBlock(lines, start)
}

func captureIndentBlock(lines []string, start int) string {
	base := indentWidth(lines[start])
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentWidth(lines[i]) <= base {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n")
}

func captureBraceBlock(lines []string, start int) string {
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		depth += strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
		if strings.Contains(lines[i], "{") {
			opened = true
		}
		if opened && depth <= 0 {
			return strings.Join(lines[start:i+1], "\n")
		}
		// Single-line arrow bodies never open a brace.
		if !opened && i > start {
			return strings.Join(lines[start:i], "\n")
		}
	}
	return strings.Join(lines[start:], "\n")
}

func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}
