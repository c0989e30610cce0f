package binding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		outer, inner, want string
	}{
		{"", "name", "name"},
		{"profile", "", "profile"},
		{"profile", "name", "profile.name"},
		{"tags", "[2]", "tags[2]"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := joinPath(tt.outer, tt.inner); got != tt.want {
			t.Errorf("joinPath(%q, %q) = %q, want %q", tt.outer, tt.inner, got, tt.want)
		}
	}
}

func TestIndexDoesNotAlias(t *testing.T) {
	src := []int{1, 2}
	out := Index[int](1).With(src, 9)
	if src[1] != 2 {
		t.Fatalf("source mutated: %v", src)
	}
	if diff := cmp.Diff([]int{1, 9}, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	grown := Index[int](3).With(src, 5)
	if diff := cmp.Diff([]int{1, 2, 0, 5}, grown); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if Index[int](7).Get(src) != 0 {
		t.Fatal("read past end should be zero")
	}
}

func TestReportField(t *testing.T) {
	r := NewReport(map[string]Outcome{
		"address.city": {Message: "required"},
		"tags[1]":      {Message: "bad"},
	})
	if r.Valid {
		t.Fatal("report should be invalid")
	}
	if got := r.Field("address"); got.Valid || got.Message != "required" {
		t.Fatalf("address = %+v", got)
	}
	if got := r.Field("addr"); !got.Valid {
		t.Fatalf("prefix without separator matched: %+v", got)
	}
	if got := r.Field("tags"); got.Valid {
		t.Fatal("tags should surface the element failure")
	}
	if got := r.Lookup("name"); !got.Valid {
		t.Fatalf("absent path = %+v", got)
	}
	if diff := cmp.Diff([]string{"address.city", "tags[1]"}, r.Invalid()); diff != "" {
		t.Fatalf("invalid mismatch (-want +got):\n%s", diff)
	}
}

func TestCodecs(t *testing.T) {
	if _, err := Int[int8]().Parse("200"); err == nil {
		t.Fatal("int8 overflow should fail")
	}
	if v, err := Float[float64]().Parse(" 1.5 "); err != nil || v != 1.5 {
		t.Fatalf("float = %v, %v", v, err)
	}
	if v, err := Bool.Parse("true"); err != nil || !v {
		t.Fatalf("bool = %v, %v", v, err)
	}
	v, _ := List(",").Parse(" a, ,b ")
	if diff := cmp.Diff([]string{"a", "b"}, v); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
