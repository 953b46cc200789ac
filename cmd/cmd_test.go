package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapes = `
module: app::main
statements:
  - kind: trait
    name: Shape
    methods:
      - {kind: fn, name: area, params: [self], returns: Int}
  - kind: type
    name: Circle
    variants:
      - name: Circle
        fields: [{name: radius, type: Int}]
  - kind: impl
    trait: Shape
    for: Circle
    methods:
      - kind: fn
        name: area
        params: [self]
        returns: Int
        body: [{kind: field, receiver: {kind: ident, name: self}, name: radius}]
  - kind: fn
    name: area_of
    params: [{name: s, type: Shape}]
    returns: Int
    body: [{kind: method, receiver: {kind: ident, name: s}, name: area}]
  - kind: var
    name: a
    type: %s
    value:
      kind: call
      callee: {kind: ident, name: area_of}
      args: [{kind: call, callee: {kind: ident, name: Circle::Circle}, args: [{kind: int, value: "1"}]}]
`

func writeProject(t *testing.T, resultType string) string {
	t.Helper()
	dir := t.TempDir()
	doc := fmt.Sprintf(shapes, resultType)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.ast.yaml"), []byte(doc), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "check", writeProject(t, "Int"))
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 1 modules checked, 0 warnings")
}

func TestCheckCommandFailsOnErrors(t *testing.T) {
	out, err := run(t, "check", "--no-color", writeProject(t, "String"))
	require.Error(t, err)
	assert.Contains(t, out, "main.ast.yaml:")
	assert.Contains(t, out, "type mismatch")
	assert.Contains(t, out, "1 errors, 0 warnings")
	assert.NotContains(t, out, "\x1b[")
}

func TestRelationsCommand(t *testing.T) {
	out, err := run(t, "relations", writeProject(t, "Int"))
	require.NoError(t, err)
	assert.Contains(t, out, "trait app::main::Shape\n")
	assert.Contains(t, out, "impl app::main::Shape for app::main::Circle\n")
	assert.Contains(t, out, "# app::main: 1 upcast sites")
	assert.NotContains(t, out, "std::op::Add")
}

func TestLoadErrorIsNotACompileError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tarn.yaml"), []byte("packages: []"), 0o644))
	_, err := run(t, "check", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "this is not a compile error")
}
