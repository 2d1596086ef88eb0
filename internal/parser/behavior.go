package parser

import (
	"regexp"
	"strings"

	"semdiff/internal/semantic"
)

// LanguageProfile drives the shared behavior scanner. Behavioral attributes
// are extracted from raw snippet text rather than the syntax tree so that
// every parser tier, including the regex tier, emits identical attribute keys.
type LanguageProfile struct {
	Name string

	controlFlow map[string]*regexp.Regexp
	returnRe    *regexp.Regexp
	yieldRe     *regexp.Regexp
	lambdaRe    *regexp.Regexp

	tryRe   *regexp.Regexp
	catchRe *regexp.Regexp // first capture group: caught type, when the language has one
	raiseRe *regexp.Regexp

	comprehensions map[string]*regexp.Regexp
	fpPatterns     map[string]*regexp.Regexp
	functionalRe   *regexp.Regexp

	globalRe   *regexp.Regexp
	nonlocalRe *regexp.Regexp
	assertRe   *regexp.Regexp

	boolRe *regexp.Regexp
	nullRe *regexp.Regexp
}

var (
	callRe      = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_.]*)\s*\(`)
	attrRe      = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_]*)\b`)
	subscriptRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\[`)
	assignRe    = regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?::[^=\n]+)?=[^=]`)
	augAssignRe = regexp.MustCompile(`(\+=|-=|\*=|/=|//=|%=|\*\*=|&=|\|=|\^=|>>=|<<=)`)
	binaryOpRe  = regexp.MustCompile(`(\*\*|//|[+\-*/%])`)
	unaryOpRe   = regexp.MustCompile(`(?:^|[=(,\[\s])(\-|\+|~|!)[A-Za-z_0-9(]`)
	compareRe   = regexp.MustCompile(`(==|!=|<=|>=|<|>)`)
	stringLitRe = regexp.MustCompile(`"([^"\\\n]*)"|'([^'\\\n]*)'|` + "`([^`\\n]*)`")
	numberRe    = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// controlFlowKeys are the stable keys of the control_flow count map.
func cfPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)(^|[^A-Za-z0-9_.])` + keyword + `\b`)
}

var pythonProfile = &LanguageProfile{
	Name: "python",
	controlFlow: map[string]*regexp.Regexp{
		"if":    cfPattern("if"),
		"elif":  cfPattern("elif"),
		"else":  cfPattern("else"),
		"for":   cfPattern("for"),
		"while": cfPattern("while"),
		"with":  cfPattern("with"),
		"match": cfPattern("match"),
	},
	returnRe: cfPattern("return"),
	yieldRe:  cfPattern("yield"),
	lambdaRe: cfPattern("lambda"),
	tryRe:    regexp.MustCompile(`(?m)^\s*try\s*:`),
	catchRe:  regexp.MustCompile(`(?m)^\s*except\s*([A-Za-z_][A-Za-z0-9_.]*)?`),
	raiseRe:  cfPattern("raise"),
	comprehensions: map[string]*regexp.Regexp{
		"list":      regexp.MustCompile(`\[[^\[\]]*\bfor\b[^\[\]]*\]`),
		"dict":      regexp.MustCompile(`\{[^{}]*:\s*[^{}]*\bfor\b[^{}]*\}`),
		"set":       regexp.MustCompile(`\{[^{}:]*\bfor\b[^{}:]*\}`),
		"generator": regexp.MustCompile(`\([^()]*\bfor\b[^()]*\)`),
	},
	fpPatterns: map[string]*regexp.Regexp{
		"map":    regexp.MustCompile(`\bmap\s*\(`),
		"filter": regexp.MustCompile(`\bfilter\s*\(`),
		"reduce": regexp.MustCompile(`\breduce\s*\(`),
		"zip":    regexp.MustCompile(`\bzip\s*\(`),
	},
	functionalRe: regexp.MustCompile(`\b(functools|itertools)\.`),
	globalRe:     regexp.MustCompile(`(?m)^\s*global\s+([A-Za-z_][A-Za-z0-9_,\s]*)`),
	nonlocalRe:   regexp.MustCompile(`(?m)^\s*nonlocal\s+([A-Za-z_][A-Za-z0-9_,\s]*)`),
	assertRe:     cfPattern("assert"),
	boolRe:       regexp.MustCompile(`\b(True|False)\b`),
	nullRe:       regexp.MustCompile(`\bNone\b`),
}

var javascriptProfile = &LanguageProfile{
	Name: "javascript",
	controlFlow: map[string]*regexp.Regexp{
		"if":     cfPattern("if"),
		"else":   cfPattern("else"),
		"for":    cfPattern("for"),
		"while":  cfPattern("while"),
		"switch": cfPattern("switch"),
		"do":     cfPattern("do"),
	},
	returnRe: cfPattern("return"),
	yieldRe:  cfPattern("yield"),
	lambdaRe: regexp.MustCompile(`=>`),
	tryRe:    regexp.MustCompile(`\btry\s*\{`),
	catchRe:  regexp.MustCompile(`\bcatch\s*(?:\(\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\))?`),
	raiseRe:  cfPattern("throw"),
	fpPatterns: map[string]*regexp.Regexp{
		"map":     regexp.MustCompile(`\.map\s*\(`),
		"filter":  regexp.MustCompile(`\.filter\s*\(`),
		"reduce":  regexp.MustCompile(`\.reduce\s*\(`),
		"forEach": regexp.MustCompile(`\.forEach\s*\(`),
	},
	functionalRe: regexp.MustCompile(`\.(map|filter|reduce)\s*\([^)]*=>`),
	assertRe:     regexp.MustCompile(`\bassert\s*\(`),
	boolRe:       regexp.MustCompile(`\b(true|false)\b`),
	nullRe:       regexp.MustCompile(`\b(null|undefined)\b`),
}

var typescriptProfile = func() *LanguageProfile {
	p := *javascriptProfile
	p.Name = "typescript"
	return &p
}()

var goProfile = &LanguageProfile{
	Name: "go",
	controlFlow: map[string]*regexp.Regexp{
		"if":     cfPattern("if"),
		"else":   cfPattern("else"),
		"for":    cfPattern("for"),
		"switch": cfPattern("switch"),
		"select": cfPattern("select"),
	},
	returnRe: cfPattern("return"),
	lambdaRe: regexp.MustCompile(`\bfunc\s*\(`),
	tryRe:    regexp.MustCompile(`\bif\s+err\s*!=\s*nil\b`),
	catchRe:  regexp.MustCompile(`\brecover\s*\(\s*\)`),
	raiseRe:  regexp.MustCompile(`\bpanic\s*\(`),
	assertRe: regexp.MustCompile(`\.\(`),
	boolRe:   regexp.MustCompile(`\b(true|false)\b`),
	nullRe:   regexp.MustCompile(`\bnil\b`),
}

var javaProfile = &LanguageProfile{
	Name: "java",
	controlFlow: map[string]*regexp.Regexp{
		"if":     cfPattern("if"),
		"else":   cfPattern("else"),
		"for":    cfPattern("for"),
		"while":  cfPattern("while"),
		"switch": cfPattern("switch"),
	},
	returnRe: cfPattern("return"),
	lambdaRe: regexp.MustCompile(`->`),
	tryRe:    regexp.MustCompile(`\btry\s*[({]`),
	catchRe:  regexp.MustCompile(`\bcatch\s*\(\s*([A-Za-z_][A-Za-z0-9_.<>|\s]*?)\s+[A-Za-z_]`),
	raiseRe:  cfPattern("throw"),
	fpPatterns: map[string]*regexp.Regexp{
		"map":    regexp.MustCompile(`\.map\s*\(`),
		"filter": regexp.MustCompile(`\.filter\s*\(`),
		"reduce": regexp.MustCompile(`\.reduce\s*\(`),
	},
	functionalRe: regexp.MustCompile(`\.stream\s*\(\s*\)`),
	assertRe:     cfPattern("assert"),
	boolRe:       regexp.MustCompile(`\b(true|false)\b`),
	nullRe:       regexp.MustCompile(`\bnull\b`),
}

var rustProfile = &LanguageProfile{
	Name: "rust",
	controlFlow: map[string]*regexp.Regexp{
		"if":    cfPattern("if"),
		"else":  cfPattern("else"),
		"for":   cfPattern("for"),
		"while": cfPattern("while"),
		"loop":  cfPattern("loop"),
		"match": cfPattern("match"),
	},
	returnRe: cfPattern("return"),
	yieldRe:  cfPattern("yield"),
	lambdaRe: regexp.MustCompile(`\|[^|]*\|\s*[{A-Za-z_(]`),
	tryRe:    regexp.MustCompile(`\bmatch\b[^{]*\{[^}]*\bErr\b`),
	catchRe:  regexp.MustCompile(`\bErr\s*\(\s*([A-Za-z_][A-Za-z0-9_:]*)?`),
	raiseRe:  regexp.MustCompile(`\bpanic!\s*\(`),
	fpPatterns: map[string]*regexp.Regexp{
		"map":    regexp.MustCompile(`\.map\s*\(`),
		"filter": regexp.MustCompile(`\.filter\s*\(`),
		"fold":   regexp.MustCompile(`\.fold\s*\(`),
	},
	functionalRe: regexp.MustCompile(`\.iter\s*\(\s*\)`),
	assertRe:     regexp.MustCompile(`\bassert(_eq|_ne)?!\s*\(`),
	boolRe:       regexp.MustCompile(`\b(true|false)\b`),
	nullRe:       regexp.MustCompile(`\bNone\b`),
}

var reservedCallNames = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "return": true,
	"catch": true, "with": true, "elif": true, "func": true, "def": true,
	"lambda": true, "print": true, "match": true, "assert": true,
}

// ProfileFor returns the behavior profile for a language, defaulting to the
// javascript profile for unknown brace languages.
func ProfileFor(language string) *LanguageProfile {
	switch language {
	case "python":
		return pythonProfile
	case "javascript":
		return javascriptProfile
	case "typescript", "tsx":
		return typescriptProfile
	case "go":
		return goProfile
	case "java":
		return javaProfile
	case "rust":
		return rustProfile
	default:
		return javascriptProfile
	}
}

// ScanBehavior populates all behavioral attributes from one entity snippet.
// This runs inline during parse for every tier; the regex tier has no syntax
// tree to return to later.
func (p *LanguageProfile) ScanBehavior(snippet string, attrs *semantic.Attributes) {
	code := stripComments(p.Name, snippet)

	for key, re := range p.controlFlow {
		attrs.ControlFlow = attrs.ControlFlow.Increment(key, len(re.FindAllString(code, -1)))
	}
	if p.returnRe != nil {
		attrs.ReturnStatements += len(p.returnRe.FindAllString(code, -1))
	}
	if p.yieldRe != nil {
		attrs.YieldStatements += len(p.yieldRe.FindAllString(code, -1))
	}
	if attrs.YieldStatements > 0 {
		attrs.IsGenerator = true
	}
	if p.lambdaRe != nil {
		attrs.LambdaFunctions += len(p.lambdaRe.FindAllString(code, -1))
	}

	if p.tryRe != nil && p.tryRe.MatchString(code) {
		attrs.HasTryCatch = true
	}
	if p.catchRe != nil {
		for _, m := range p.catchRe.FindAllStringSubmatch(code, -1) {
			caught := ""
			if len(m) > 1 {
				caught = strings.TrimSpace(m[1])
			}
			if caught == "" {
				caught = "<bare>"
			}
			attrs.ExceptionHandlers = attrs.ExceptionHandlers.Add(caught)
			attrs.CatchTypes = attrs.CatchTypes.Add(caught)
		}
	}

	for key, re := range p.comprehensions {
		attrs.Comprehensions = attrs.Comprehensions.Increment(key, len(re.FindAllString(code, -1)))
	}
	for key, re := range p.fpPatterns {
		attrs.FPPatterns = attrs.FPPatterns.Increment(key, len(re.FindAllString(code, -1)))
	}
	if p.functionalRe != nil && p.functionalRe.MatchString(code) {
		attrs.FunctionalStyle = true
	}

	if p.globalRe != nil {
		for _, m := range p.globalRe.FindAllStringSubmatch(code, -1) {
			for _, name := range strings.Split(m[1], ",") {
				attrs.GlobalStatements = attrs.GlobalStatements.Add(strings.TrimSpace(name))
			}
		}
	}
	if p.nonlocalRe != nil {
		for _, m := range p.nonlocalRe.FindAllStringSubmatch(code, -1) {
			for _, name := range strings.Split(m[1], ",") {
				attrs.NonlocalStatements = attrs.NonlocalStatements.Add(strings.TrimSpace(name))
			}
		}
	}
	if p.assertRe != nil {
		attrs.Assertions += len(p.assertRe.FindAllString(code, -1))
	}

	for _, m := range callRe.FindAllStringSubmatch(code, -1) {
		name := m[1]
		if !reservedCallNames[name] {
			attrs.Calls = attrs.Calls.Add(name)
		}
	}
	for _, m := range attrRe.FindAllStringSubmatch(code, -1) {
		attrs.AttributeAccess = attrs.AttributeAccess.Add(m[1])
	}
	for _, m := range subscriptRe.FindAllStringSubmatch(code, -1) {
		attrs.SubscriptAccess = attrs.SubscriptAccess.Add(m[1])
	}
	for _, m := range assignRe.FindAllStringSubmatch(code, -1) {
		attrs.AssignmentTargets = attrs.AssignmentTargets.Add(m[1])
	}
	for _, m := range augAssignRe.FindAllStringSubmatch(code, -1) {
		attrs.AugAssignOps = attrs.AugAssignOps.Add(m[1])
	}
	for _, m := range binaryOpRe.FindAllStringSubmatch(code, -1) {
		attrs.BinaryOps = attrs.BinaryOps.Add(m[1])
	}
	for _, m := range unaryOpRe.FindAllStringSubmatch(code, -1) {
		attrs.UnaryOps = attrs.UnaryOps.Add(m[1])
	}
	for _, m := range compareRe.FindAllStringSubmatch(code, -1) {
		attrs.ComparisonOps = attrs.ComparisonOps.Add(m[1])
	}
	for _, kw := range logicalOperators(p.Name) {
		if regexp.MustCompile(kw.pattern).MatchString(code) {
			attrs.LogicalOps = attrs.LogicalOps.Add(kw.name)
		}
	}

	for _, m := range stringLitRe.FindAllStringSubmatch(code, -1) {
		for _, group := range m[1:] {
			if group != "" {
				attrs.StringLiterals = attrs.StringLiterals.Add(group)
			}
		}
	}
	for _, m := range numberRe.FindAllString(code, -1) {
		attrs.NumericLiterals = attrs.NumericLiterals.Add(m)
	}
	if p.boolRe != nil {
		attrs.BooleanLiterals += len(p.boolRe.FindAllString(code, -1))
	}
	if p.nullRe != nil {
		attrs.NullLiterals += len(p.nullRe.FindAllString(code, -1))
	}
}

type logicalOp struct {
	name    string
	pattern string
}

func logicalOperators(language string) []logicalOp {
	if language == "python" {
		return []logicalOp{
			{"and", `\band\b`},
			{"or", `\bor\b`},
			{"not", `\bnot\b`},
		}
	}
	return []logicalOp{
		{"and", `&&`},
		{"or", `\|\|`},
		{"not", `(?:^|[\s(=,])!(?:[^=])`},
	}
}

// stripComments removes line comments so keyword counts are not inflated by
// prose. Block comments and strings are left alone; the scanner tolerates the
// residual noise because both file versions pass through the same filter.
func stripComments(language, snippet string) string {
	marker := "//"
	if language == "python" {
		marker = "#"
	}
	lines := strings.Split(snippet, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, marker); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
