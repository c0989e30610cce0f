package rules

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/go-cmp/cmp"

	"github.com/starford/formbind/internal/binding"
)

type item struct {
	Label string `json:"label"`
}

func (i item) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Label, validation.Required),
	)
}

type order struct {
	Ref   string   `json:"ref"`
	Items []item   `json:"items"`
	Codes []string `json:"codes"`
}

func (o order) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Ref, validation.Required, validation.Length(3, 0)),
		validation.Field(&o.Items),
		validation.Field(&o.Codes, validation.Each(validation.Length(2, 2))),
	)
}

func TestForValid(t *testing.T) {
	report := For[order]()(order{Ref: "abc", Items: []item{{Label: "x"}}, Codes: []string{"ab"}})
	if !report.Valid || len(report.Fields) != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestForFlattensNestedErrors(t *testing.T) {
	report := For[order]()(order{
		Ref:   "ab",
		Items: []item{{Label: "x"}, {}},
		Codes: []string{"ab", "abc"},
	})

	want := binding.NewReport(map[string]binding.Outcome{
		"ref":            {Message: "the length must be no less than 3"},
		"items[1].label": {Message: "cannot be blank"},
		"codes[1]":       {Message: "the length must be exactly 2"},
	})
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if got := report.Field("items"); got.Valid {
		t.Fatal("items should surface the element failure")
	}
}

func TestFlattenPlainError(t *testing.T) {
	report := Flatten(errors.New("store unavailable"))
	if report.Valid {
		t.Fatal("plain error should invalidate the report")
	}
	if got := report.Lookup(""); got.Message != "store unavailable" {
		t.Fatalf("root outcome = %+v", got)
	}
}

func TestFunc(t *testing.T) {
	v := Func(func(n int) error {
		if n < 0 {
			return validation.Errors{"n": errors.New("must be positive")}
		}
		return nil
	})
	if !v(1).Valid {
		t.Fatal("1 should be valid")
	}
	if got := v(-1).Lookup("n"); got.Valid || got.Message != "must be positive" {
		t.Fatalf("outcome = %+v", got)
	}
}

func TestJoin(t *testing.T) {
	tests := map[[2]string]string{
		{"", "name"}:          "name",
		{"address", "zip"}:    "address.zip",
		{"tags", "0"}:         "tags[0]",
		{"items[1]", "label"}: "items[1].label",
	}
	for in, want := range tests {
		if got := join(in[0], in[1]); got != want {
			t.Errorf("join(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}
