package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CleanScript(t *testing.T) {
	v := NewValidator()

	verdict := v.Validate(`
keys = list_context_keys()
total = 0
for k in keys:
    total += len(get_context(k))
result = str(total)
`)

	assert.True(t, verdict.OK)
	assert.Empty(t, verdict.Violations)
}

func TestValidator_ParseFailure(t *testing.T) {
	v := NewValidator()

	verdict := v.Validate("def f(:\n    pass")

	assert.False(t, verdict.OK)
	require.Len(t, verdict.Violations, 1)
	assert.Contains(t, verdict.Violations[0], "syntax error")
}

func TestValidator_LoadStatement(t *testing.T) {
	v := NewValidator()

	verdict := v.Validate(`load("os", "path")`)

	assert.False(t, verdict.OK)
	require.NotEmpty(t, verdict.Violations)
	assert.Contains(t, verdict.Violations[0], `import of module "os" is not allowed`)
}

func TestValidator_BlockedNames(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"eval", `x = eval`, `"eval"`},
		{"exec", `exec("code")`, `"exec"`},
		{"compile", `c = compile`, `"compile"`},
		{"open", `f = open("path")`, `"open"`},
		{"input", `s = input()`, `"input"`},
		{"globals", `g = globals()`, `"globals"`},
		{"dir", `d = dir`, `"dir"`},
		{"type", `t = type(1)`, `"type"`},
		{"bytearray", `b = bytearray()`, `"bytearray"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Validate(tt.script)
			assert.False(t, verdict.OK)
			require.NotEmpty(t, verdict.Violations)
			assert.Contains(t, verdict.Violations[0], "blocked name")
			assert.Contains(t, verdict.Violations[0], tt.want)
		})
	}
}

func TestValidator_ReservedNames(t *testing.T) {
	v := NewValidator()

	verdict := v.Validate(`x = __import__`)
	assert.False(t, verdict.OK)
	require.NotEmpty(t, verdict.Violations)
	assert.Contains(t, verdict.Violations[0], `"__import__"`)

	verdict = v.Validate(`y = a.__class__`)
	assert.False(t, verdict.OK)
	require.NotEmpty(t, verdict.Violations)
	assert.Contains(t, verdict.Violations[0], "reserved member")
}

func TestValidator_PrivateMemberAccess(t *testing.T) {
	v := NewValidator()

	verdict := v.Validate(`x = obj._secret`)

	assert.False(t, verdict.OK)
	require.NotEmpty(t, verdict.Violations)
	assert.Contains(t, verdict.Violations[0], `private member "_secret"`)
}

func TestValidator_PrivateLocalVariableAllowed(t *testing.T) {
	v := NewValidator()

	// A single leading underscore is only flagged for member access, not for
	// plain variables.
	verdict := v.Validate("_tmp = 1\nresult = str(_tmp)")

	assert.True(t, verdict.OK)
}

func TestValidator_DynamicAttrBypass(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		script string
		bad    bool
	}{
		{"getattr private", `x = getattr(obj, "_secret")`, true},
		{"getattr reserved", `x = getattr(obj, "__class__")`, true},
		{"hasattr blocked", `x = hasattr(obj, "open")`, true},
		{"setattr private", `setattr(obj, "_x", 1)`, true},
		{"getattr benign", `x = getattr(obj, "name")`, false},
		{"getattr non-literal", `x = getattr(obj, key)`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Validate(tt.script)
			if tt.bad {
				assert.False(t, verdict.OK)
				require.NotEmpty(t, verdict.Violations)
				assert.Contains(t, verdict.Violations[0], "forbidden member name")
			} else {
				assert.True(t, verdict.OK, "violations: %v", verdict.Violations)
			}
		})
	}
}

func TestValidator_AccumulatesAllViolations(t *testing.T) {
	v := NewValidator()

	verdict := v.Validate(`
load("os", "path")
x = eval
y = obj._secret
z = getattr(obj, "_hidden")
`)

	assert.False(t, verdict.OK)
	assert.Len(t, verdict.Violations, 4)
}

func TestValidator_Deterministic(t *testing.T) {
	v := NewValidator()
	script := "load(\"os\", \"p\")\nx = eval\ny = a._b"

	first := v.Validate(script)
	second := v.Validate(script)

	assert.Equal(t, first, second)
}
