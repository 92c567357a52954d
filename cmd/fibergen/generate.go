package main

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

var adapters = template.Must(template.New("adapters").Funcs(template.FuncMap{
	"typeParams": typeParams,
	"paramTypes": func(n int) string { return list(n, "P%d") },
	"args":       func(n int) string { return list(n, "p%d") },
	"seq":        seq,
}).Parse(`// Code generated by fibergen. DO NOT EDIT.

package {{.Package}}

// Func0 adapts f into a coroutine without parameters. Such a coroutine
// cannot suspend and completes on its first resume.
func Func0(f func()) UninitCoroutine {
	return funcCoroutine(func(*builder) func() { return f })
}
{{range $n := seq .Arity}}
// Func{{$n}} adapts f into a coroutine whose {{$n}} parameters are injected
// when the coroutine is built.
func Func{{$n}}[{{typeParams $n}}](f func({{paramTypes $n}})) UninitCoroutine {
	return funcCoroutine(func(b *builder) func() {
{{- range $i := seq $n}}
		p{{$i}} := inject[T{{$i}}, P{{$i}}](b)
{{- end}}
		return func() { f({{args $n}}) }
	})
}
{{end}}`))

// generate renders the FuncN adapters for 1 to arity parameters. filename
// is only used by the formatter for diagnostics.
func generate(filename, pkg string, arity int) ([]byte, error) {
	var buf bytes.Buffer
	err := adapters.Execute(&buf, struct {
		Package string
		Arity   int
	}{pkg, arity})
	if err != nil {
		return nil, err
	}
	src, err := imports.Process(filename, buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return src, nil
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}

func list(n int, format string) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(format, i+1)
	}
	return strings.Join(items, ", ")
}

func typeParams(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("T%[1]d any, P%[1]d Param[T%[1]d]", i+1)
	}
	return strings.Join(items, ", ")
}
