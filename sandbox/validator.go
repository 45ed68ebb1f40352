package sandbox

import (
	"fmt"
	"strings"

	"go.starlark.net/syntax"
)

// fileOptions is the Starlark dialect the sandbox speaks: statements at top
// level, while loops, set literals, reassignable globals (the result slot),
// and recursion. The validator and the engine must parse identically, so
// they share these options.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// blockedNames enumerates capability-granting operations a script must not
// reference: dynamic evaluation/compilation, stream opening, interactive
// input, namespace introspection, type identity, and raw buffer
// constructors.
var blockedNames = map[string]bool{
	"eval":       true,
	"exec":       true,
	"compile":    true,
	"open":       true,
	"input":      true,
	"vars":       true,
	"globals":    true,
	"locals":     true,
	"dir":        true,
	"type":       true,
	"__import__": true,
	"breakpoint": true,
	"memoryview": true,
	"bytearray":  true,
}

// dynamicAttrFuncs access members by string name; a call with a literal
// second argument naming a blocked or private member is the obvious bypass
// of the dotted-syntax checks, so it is flagged too.
var dynamicAttrFuncs = map[string]bool{
	"getattr": true,
	"setattr": true,
	"hasattr": true,
	"delattr": true,
}

// Verdict is the validator's decision for one script.
type Verdict struct {
	OK         bool
	Violations []string
}

// Validator statically inspects a script's syntax tree and rejects dangerous
// constructs before any execution. It is pure and deterministic: the same
// source always yields the same verdict.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate parses the script and collects every violation without
// short-circuiting. OK is true iff no violations were found.
func (v *Validator) Validate(script string) Verdict {
	file, err := fileOptions.Parse("script.star", script, 0)
	if err != nil {
		return Verdict{Violations: []string{fmt.Sprintf("syntax error: %v", err)}}
	}

	var violations []string
	add := func(pos syntax.Position, format string, args ...any) {
		violations = append(violations, fmt.Sprintf("%s: %s", pos, fmt.Sprintf(format, args...)))
	}

	// Attribute name idents are judged by the DotExpr rules, not the bare
	// identifier rules.
	attrNames := make(map[*syntax.Ident]bool)

	syntax.Walk(file, func(n syntax.Node) bool {
		switch n := n.(type) {

		case *syntax.LoadStmt:
			module := n.Module.Raw
			if s, ok := n.Module.Value.(string); ok {
				module = s
			}
			add(n.Load, "import of module %q is not allowed", module)

		case *syntax.DotExpr:
			attrNames[n.Name] = true
			name := n.Name.Name
			switch {
			case isReserved(name):
				add(n.Name.NamePos, "access to reserved member %q is not allowed", name)
			case strings.HasPrefix(name, "_"):
				add(n.Name.NamePos, "access to private member %q is not allowed", name)
			}

		case *syntax.Ident:
			if attrNames[n] {
				break
			}
			switch {
			case blockedNames[n.Name]:
				add(n.NamePos, "use of blocked name %q is not allowed", n.Name)
			case isReserved(n.Name):
				add(n.NamePos, "use of reserved name %q is not allowed", n.Name)
			}

		case *syntax.CallExpr:
			fn, ok := n.Fn.(*syntax.Ident)
			if !ok || !dynamicAttrFuncs[fn.Name] || len(n.Args) < 2 {
				break
			}
			lit, ok := n.Args[1].(*syntax.Literal)
			if !ok || lit.Token != syntax.STRING {
				break
			}
			name, ok := lit.Value.(string)
			if !ok {
				break
			}
			if blockedNames[name] || strings.HasPrefix(name, "_") {
				add(lit.TokenPos, "%s with forbidden member name %q is not allowed", fn.Name, name)
			}
		}
		return true
	})

	return Verdict{OK: len(violations) == 0, Violations: violations}
}

// isReserved reports whether name follows the double-leading-and-trailing
// underscore convention for reflective internals.
func isReserved(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}
