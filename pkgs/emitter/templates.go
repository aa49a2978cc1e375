package emitter

// Template components for the Go testing backend. Every repeated element is
// emitted as "\n" + element so the raw output has no blank lines inside
// function bodies; go/format takes care of indentation.

const headerTemplate = `{{define "header"}}// Code generated by suitec{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.

package {{.Package}}
{{if .ImportGroups}}
import (
{{- range $i, $group := .ImportGroups}}
{{- if $i}}
{{end}}
{{- range $group}}
	{{if .Name}}{{.Name}} {{end}}{{printf "%q" .Path}}
{{- end}}
{{- end}}
)
{{end}}{{end}}`

const testFuncTemplate = `{{define "test-func"}}
func {{.Name}}(t *testing.T) {
{{- template "test-body" .Root}}
}
{{end}}`

const testBodyTemplate = `{{define "test-body"}}
{{- range .Setup}}
{{.}}
{{- end}}
{{- if .Teardown}}
t.Cleanup(func() {
{{- range .Teardown}}
{{.}}
{{- end}}
})
{{- end}}
{{- range .Members}}
{{- if .Namespace}}
t.Run({{.Namespace.Name}}, func(t *testing.T) {
{{- template "test-body" .Namespace}}
})
{{- else}}
{{- template "test-unit" .Unit}}
{{- end}}
{{- end}}
{{- end}}`

const testUnitTemplate = `{{define "test-unit"}}
t.Run({{.Name}}, func(t *testing.T) {
{{- if .Ignored}}
{{.Harness}}.Ignored(t)
{{- end}}
{{- if .ExpectFailure}}
{{.Harness}}.ExpectFailure(t, {{.FailureMessage}}, func(t testing.TB) {
{{- template "stmts" .Body}}
})
{{- else}}
{{- template "stmts" .Body}}
{{- end}}
})
{{- end}}`

const benchFuncTemplate = `{{define "bench-func"}}
func {{.Name}}(b *testing.B) {
{{- template "bench-body" .Root}}
}
{{end}}`

const benchBodyTemplate = `{{define "bench-body"}}
{{- range .Members}}
{{- if .Namespace}}
b.Run({{.Namespace.Name}}, func(b *testing.B) {
{{- template "bench-body" .Namespace}}
})
{{- else}}
b.Run({{.Unit.Name}}, func({{.Unit.Param}} *testing.B) {
{{- template "stmts" .Unit.Body}}
})
{{- end}}
{{- end}}
{{- end}}`

const stmtsTemplate = `{{define "stmts"}}
{{- range .}}
{{.}}
{{- end}}
{{- end}}`

// Master template that composes all components
const masterTemplate = `{{define "main"}}{{template "header" .}}
{{- range .Tests}}{{template "test-func" .}}{{end}}
{{- range .Benchmarks}}{{template "bench-func" .}}{{end}}
{{- end}}`
