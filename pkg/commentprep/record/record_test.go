package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewKeepsOrderAndDedupes(t *testing.T) {
	r := New(Field{"b", 1}, Field{"a", 2}, Field{"b", 3})

	names := r.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names() = %v, want [b a]", names)
	}
	if v, _ := r.Get("b"); v != 3 {
		t.Errorf("Get(b) = %v, want last value 3", v)
	}
}

func TestAppendDoesNotMutate(t *testing.T) {
	base := New(Field{"text", "hi"})

	out, err := base.Append(Field{"clean_text", "hi"}, Field{"token_count", 1})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if out.Len() != 3 || base.Len() != 1 {
		t.Errorf("Len after append = %d (base %d), want 3 (base 1)", out.Len(), base.Len())
	}
	if base.Has("clean_text") {
		t.Error("Append must not change the receiver")
	}
	if names := out.Names(); names[0] != "text" || names[2] != "token_count" {
		t.Errorf("Names() = %v", names)
	}
}

func TestAppendCollision(t *testing.T) {
	base := New(Field{"text", "hi"})

	_, err := base.Append(Field{"text", "other"})
	if !errors.Is(err, ErrFieldExists) {
		t.Errorf("Append error = %v, want ErrFieldExists", err)
	}
	_, err = base.Append(Field{"x", 1}, Field{"x", 2})
	if !errors.Is(err, ErrFieldExists) {
		t.Errorf("duplicate in one Append error = %v, want ErrFieldExists", err)
	}
	if v, _ := base.Get("text"); v != "hi" {
		t.Error("failed Append must not change the receiver")
	}
}

func TestFieldsIsACopy(t *testing.T) {
	r := New(Field{"a", 1})
	fs := r.Fields()
	fs[0].Value = 99
	if v, _ := r.Get("a"); v != 1 {
		t.Error("Fields() must return a copy")
	}
}

func TestJSONPreservesOrder(t *testing.T) {
	in := `{"zeta":"last letter","alpha":1,"mid":null,"nested":{"k":true},"list":["a","b"]}`

	var r Record
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"zeta", "alpha", "mid", "nested", "list"}
	got := r.Names()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
	if v, _ := r.Get("alpha"); v != json.Number("1") {
		t.Errorf("alpha = %#v, want json.Number(\"1\")", v)
	}
	if v, ok := r.Get("mid"); !ok || v != nil {
		t.Errorf("mid = %v, %v, want present nil", v, ok)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal = %s, want %s", out, in)
	}
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	r := New(Field{"text", "Tom & Jerry <3"})
	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"text":"Tom & Jerry <3"}` {
		t.Errorf("MarshalJSON = %s", out)
	}
}

func TestUnmarshalRejectsNonObject(t *testing.T) {
	var r Record
	for _, in := range []string{`[1,2]`, `"text"`, `42`} {
		if err := json.Unmarshal([]byte(in), &r); err == nil {
			t.Errorf("Unmarshal(%s) should fail", in)
		}
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	in := "{\"id\":1,\"text\":\"first\"}\n\n{\"id\":2,\"text\":null}\n{\"id\":3}\n"

	records, err := ReadJSONL(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, records); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	want := "{\"id\":1,\"text\":\"first\"}\n{\"id\":2,\"text\":null}\n{\"id\":3}\n"
	if buf.String() != want {
		t.Errorf("WriteJSONL = %q, want %q", buf.String(), want)
	}
}

func TestReadJSONLMalformed(t *testing.T) {
	records, err := ReadJSONL(strings.NewReader("{\"id\":1}\n{\"id\":"))
	if err == nil {
		t.Fatal("ReadJSONL should fail on truncated input")
	}
	if len(records) != 1 {
		t.Errorf("records before the error = %d, want 1", len(records))
	}
}
