// Package gen generates lens sets, field tables and handle accessors for
// model structs.
package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/mod/modfile"
)

// Config describes one generator run.
type Config struct {
	// Dir is the package directory to scan.
	Dir string
	// Types lists the struct types to generate for.
	Types []string
	// Package overrides the package clause of the output.
	Package string
	// BindingImport is the import path of the binding package. When empty it
	// is derived from the enclosing module.
	BindingImport string
}

// Struct is a scanned model type.
type Struct struct {
	Name   string
	Fields []Field
}

// Field is one bound struct field.
type Field struct {
	GoName string
	Name   string
	Type   string
	Codec  string
	// Group names the nested struct type when the field is bound as a group.
	Group string
	// Slice marks fields whose lens copies the backing array on read and write.
	Slice bool
}

// Generate scans cfg.Dir and returns the formatted source of the bind file.
func Generate(cfg Config) ([]byte, error) {
	if len(cfg.Types) == 0 {
		return nil, fmt.Errorf("gen: no types requested")
	}
	pkg, structs, err := Scan(cfg.Dir, cfg.Types)
	if err != nil {
		return nil, err
	}
	if cfg.Package != "" {
		pkg = cfg.Package
	}

	bindingImport := cfg.BindingImport
	if bindingImport == "" {
		bindingImport, err = deriveBindingImport(cfg.Dir)
		if err != nil {
			return nil, err
		}
	}
	return Render(pkg, bindingImport, structs)
}

// Scan parses the package in dir and resolves the requested struct types in
// the order given.
func Scan(dir string, typeNames []string) (string, []Struct, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		return "", nil, fmt.Errorf("gen: parse %s: %w", dir, err)
	}
	if len(pkgs) != 1 {
		return "", nil, fmt.Errorf("gen: expected one package in %s, found %d", dir, len(pkgs))
	}

	var (
		pkgName string
		decls   = make(map[string]*ast.StructType)
	)
	for name, pkg := range pkgs {
		pkgName = name
		for _, f := range pkg.Files {
			for _, decl := range f.Decls {
				gd, ok := decl.(*ast.GenDecl)
				if !ok || gd.Tok != token.TYPE {
					continue
				}
				for _, spec := range gd.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					if st, ok := ts.Type.(*ast.StructType); ok {
						decls[ts.Name.Name] = st
					}
				}
			}
		}
	}

	structs := make([]Struct, 0, len(typeNames))
	for _, name := range typeNames {
		st, ok := decls[name]
		if !ok {
			return "", nil, fmt.Errorf("gen: struct type %s not found in %s", name, dir)
		}
		s, err := scanStruct(name, st, typeNames)
		if err != nil {
			return "", nil, err
		}
		structs = append(structs, s)
	}
	return pkgName, structs, nil
}

func scanStruct(name string, st *ast.StructType, run []string) (Struct, error) {
	s := Struct{Name: name}
	seen := make(map[string]string)

	for _, field := range st.Fields.List {
		var tag reflect.StructTag
		if field.Tag != nil {
			tag = reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
		}
		bindTag := tag.Get("bind")
		if bindTag == "-" {
			continue
		}

		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}
			f := Field{
				GoName: ident.Name,
				Name:   fieldName(ident.Name, tag.Get("json")),
				Type:   types.ExprString(field.Type),
			}
			if at, ok := field.Type.(*ast.ArrayType); ok && at.Len == nil {
				f.Slice = true
			}
			if f.Name == "" {
				continue
			}
			if prev, dup := seen[f.Name]; dup {
				return Struct{}, fmt.Errorf("gen: %s.%s: name %q already used by %s", name, ident.Name, f.Name, prev)
			}
			seen[f.Name] = ident.Name

			if expr, ok := strings.CutPrefix(bindTag, "codec="); ok {
				f.Codec = expr
			} else if err := defaultCodec(&f, run); err != nil {
				return Struct{}, fmt.Errorf("gen: %s.%s: %w", name, ident.Name, err)
			}
			s.Fields = append(s.Fields, f)
		}
	}
	return s, nil
}

func defaultCodec(f *Field, run []string) error {
	switch f.Type {
	case "string":
		f.Codec = "binding.Text"
	case "bool":
		f.Codec = "binding.Bool"
	case "int", "int8", "int16", "int32", "int64":
		f.Codec = "binding.Int[" + f.Type + "]()"
	case "uint", "uint8", "uint16", "uint32", "uint64":
		f.Codec = "binding.Uint[" + f.Type + "]()"
	case "float32", "float64":
		f.Codec = "binding.Float[" + f.Type + "]()"
	case "[]string":
		f.Codec = `binding.List(",")`
	default:
		if !slices.Contains(run, f.Type) {
			return fmt.Errorf("unsupported type %s, add a bind:\"codec=...\" tag", f.Type)
		}
		f.Group = f.Type
	}
	return nil
}

// fieldName returns the json name of a field, or its snake_case Go name when
// the tag carries none. An empty result means the field is excluded.
func fieldName(goName, jsonTag string) string {
	name, _, _ := strings.Cut(jsonTag, ",")
	switch name {
	case "-":
		return ""
	case "":
		return snakeCase(goName)
	default:
		return name
	}
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

var fileTmpl = template.Must(template.New("bind").Parse(`// Code generated by bindgen. DO NOT EDIT.

package {{.Package}}

{{if .Slices -}}
import (
	"slices"

	"{{.BindingImport}}"
)
{{- else -}}
import "{{.BindingImport}}"
{{- end}}
{{range $s := .Structs}}
// Lenses over {{$s.Name}}.
var (
{{- range $s.Fields}}
	{{$s.Name}}{{.GoName}}Lens = binding.NewLens("{{.Name}}",
{{- if .Slice}}
		func(m {{$s.Name}}) {{.Type}} { return slices.Clone(m.{{.GoName}}) },
		func(m {{$s.Name}}, v {{.Type}}) {{$s.Name}} { m.{{.GoName}} = slices.Clone(v); return m },
{{- else}}
		func(m {{$s.Name}}) {{.Type}} { return m.{{.GoName}} },
		func(m {{$s.Name}}, v {{.Type}}) {{$s.Name}} { m.{{.GoName}} = v; return m },
{{- end}}
	)
{{- end}}
)

// {{$s.Name}}Fields is the field table of {{$s.Name}}.
var {{$s.Name}}Fields = binding.NewTable(
{{- range $s.Fields}}
{{- if .Group}}
	binding.Group({{$s.Name}}{{.GoName}}Lens, {{.Group}}Fields),
{{- else}}
	binding.FieldOf({{$s.Name}}{{.GoName}}Lens, {{.Codec}}),
{{- end}}
{{- end}}
)
{{range $s.Fields}}
// Bind{{$s.Name}}{{.GoName}} derives the handle of {{$s.Name}}.{{.GoName}}.
func Bind{{$s.Name}}{{.GoName}}[M any](h binding.Handle[M, {{$s.Name}}]) binding.Handle[M, {{.Type}}] {
	return binding.Child(h, {{$s.Name}}{{.GoName}}Lens)
}
{{end}}
{{- end}}`))

// Render produces the formatted bind file for structs.
func Render(pkg, bindingImport string, structs []Struct) ([]byte, error) {
	var buf bytes.Buffer
	slicesUsed := slices.ContainsFunc(structs, func(s Struct) bool {
		return slices.ContainsFunc(s.Fields, func(f Field) bool { return f.Slice })
	})
	err := fileTmpl.Execute(&buf, struct {
		Package       string
		BindingImport string
		Slices        bool
		Structs       []Struct
	}{pkg, bindingImport, slicesUsed, structs})
	if err != nil {
		return nil, fmt.Errorf("gen: render: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: format: %w\n%s", err, buf.Bytes())
	}
	return out, nil
}

func deriveBindingImport(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("gen: resolve %s: %w", dir, err)
	}
	for d := abs; ; {
		data, err := os.ReadFile(filepath.Join(d, "go.mod"))
		if err == nil {
			path := modfile.ModulePath(data)
			if path == "" {
				return "", fmt.Errorf("gen: no module path in %s", filepath.Join(d, "go.mod"))
			}
			return path + "/internal/binding", nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fmt.Errorf("gen: %s is not inside a Go module", dir)
		}
		d = parent
	}
}
