package gen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writePkg(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "model.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestScan(t *testing.T) {
	dir := writePkg(t, `package shop

type Item struct {
	SKU      string  `+"`json:\"sku\"`"+`
	UnitCost float64
	Qty      int32
	Note     string `+"`bind:\"-\"`"+`
	Hidden   string `+"`json:\"-\"`"+`
	Price    Money  `+"`bind:\"codec=MoneyCodec\"`"+`
	internal string
}
`)

	pkg, structs, err := Scan(dir, []string{"Item"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if pkg != "shop" {
		t.Fatalf("pkg = %q", pkg)
	}
	want := []Struct{{
		Name: "Item",
		Fields: []Field{
			{GoName: "SKU", Name: "sku", Type: "string", Codec: "binding.Text"},
			{GoName: "UnitCost", Name: "unit_cost", Type: "float64", Codec: "binding.Float[float64]()"},
			{GoName: "Qty", Name: "qty", Type: "int32", Codec: "binding.Int[int32]()"},
			{GoName: "Price", Name: "price", Type: "Money", Codec: "MoneyCodec"},
		},
	}}
	if diff := cmp.Diff(want, structs); diff != "" {
		t.Fatalf("structs mismatch (-want +got):\n%s", diff)
	}
}

func TestScanUnsupportedType(t *testing.T) {
	dir := writePkg(t, `package shop

type Item struct {
	Meta map[string]string
}
`)
	_, _, err := Scan(dir, []string{"Item"})
	if err == nil || !strings.Contains(err.Error(), "Item.Meta") {
		t.Fatalf("err = %v, want error naming Item.Meta", err)
	}
}

func TestScanMissingType(t *testing.T) {
	dir := writePkg(t, "package shop\n")
	if _, _, err := Scan(dir, []string{"Item"}); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestRenderGroups(t *testing.T) {
	structs := []Struct{
		{Name: "Order", Fields: []Field{
			{GoName: "Ref", Name: "ref", Type: "string", Codec: "binding.Text"},
			{GoName: "Ship", Name: "ship", Type: "Addr", Group: "Addr"},
		}},
		{Name: "Addr", Fields: []Field{
			{GoName: "City", Name: "city", Type: "string", Codec: "binding.Text"},
		}},
	}
	out, err := Render("shop", "example.com/x/internal/binding", structs)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	src := string(out)
	for _, want := range []string{
		`import "example.com/x/internal/binding"`,
		`binding.Group(OrderShipLens, AddrFields),`,
		`binding.FieldOf(AddrCityLens, binding.Text),`,
		`func BindOrderShip[M any](h binding.Handle[M, Order]) binding.Handle[M, Addr] {`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
}

func TestGenerateMatchesCheckedInModels(t *testing.T) {
	out, err := Generate(Config{Dir: "../models", Types: []string{"Profile", "Address"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want, err := os.ReadFile("../models/profile_bind.go")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(want), string(out)); diff != "" {
		t.Fatalf("profile_bind.go is out of date (-checked in +generated):\n%s", diff)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":     "name",
		"UnitCost": "unit_cost",
		"HTTPPort": "http_port",
		"ID":       "id",
		"UserID":   "user_id",
	}
	for in, want := range tests {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderClonesSlices(t *testing.T) {
	structs := []Struct{{Name: "Order", Fields: []Field{
		{GoName: "Lines", Name: "lines", Type: "[]string", Codec: `binding.List(",")`, Slice: true},
	}}}
	out, err := Render("shop", "example.com/x/internal/binding", structs)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	src := string(out)
	for _, want := range []string{
		"\t\"slices\"\n",
		"return slices.Clone(m.Lines)",
		"m.Lines = slices.Clone(v)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
}
