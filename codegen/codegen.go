// Package codegen emits a precompiled binding lookup table as Go source.
// It consumes the container's read-only Snapshot — identifier, target,
// lifetime, ordered dependency identifiers — and produces a standalone file
// that mirrors the compiled registry without any runtime reflection. The
// resolution engine never depends on this package.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"os"
	"text/template"

	"github.com/davecgh/go-spew/spew"

	"github.com/highperapp/container"
)

// Options controls the emitted file.
type Options struct {
	// Package is the package clause of the generated file. Required.
	Package string
	// Var names the generated lookup table; defaults to "CompiledBindings".
	Var string
}

const fileTemplate = `// Code generated by highperapp/container codegen. DO NOT EDIT.

package {{.Package}}

// Binding is one precompiled service definition.
type Binding struct {
	Target       string
	Singleton    bool
	Dependencies []string
}

// {{.Var}} maps service identifiers to their precompiled definitions.
var {{.Var}} = map[string]Binding{
{{- range .Bindings}}
	{{printf "%q" .ID}}: {
		Target:    {{printf "%q" .Target}},
		Singleton: {{.Singleton}},
		{{- if .Dependencies}}
		Dependencies: []string{ {{- range .Dependencies}}{{printf "%q" .}}, {{end -}} },
		{{- end}}
	},
{{- end}}
}
`

var tmpl = template.Must(template.New("bindings").Parse(fileTemplate))

// Generate renders the snapshot into gofmt-formatted Go source.
func Generate(snapshot []container.BindingSnapshot, opts Options) ([]byte, error) {
	if opts.Package == "" {
		return nil, fmt.Errorf("codegen: package name is required")
	}
	if opts.Var == "" {
		opts.Var = "CompiledBindings"
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]any{
		"Package":  opts.Package,
		"Var":      opts.Var,
		"Bindings": snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: format: %w", err)
	}
	return src, nil
}

// WriteFile generates and writes the lookup table to path.
func WriteFile(path string, snapshot []container.BindingSnapshot, opts Options) error {
	src, err := Generate(snapshot, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, src, 0o644)
}

// DumpSnapshot writes a verbose dump of the snapshot to w, for debugging
// what the generator would see.
func DumpSnapshot(w io.Writer, snapshot []container.BindingSnapshot) {
	spew.Fdump(w, snapshot)
}
