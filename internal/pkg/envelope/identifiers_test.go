package envelope

import (
	"reflect"
	"testing"
)

func TestMapIdentifiers_Scalars(t *testing.T) {
	for _, v := range []any{nil, "str", float64(3.14), true, float64(0)} {
		if got := MapIdentifiers(v); got != v {
			t.Fatalf("MapIdentifiers(%v) = %v", v, got)
		}
	}
}

func TestMapIdentifiers_EmptyContainers(t *testing.T) {
	if got := MapIdentifiers([]any{}); len(got.([]any)) != 0 {
		t.Fatalf("empty array: %#v", got)
	}
	if got := MapIdentifiers(map[string]any{}); len(got.(map[string]any)) != 0 {
		t.Fatalf("empty object: %#v", got)
	}
}

func TestMapIdentifiers_Idempotent(t *testing.T) {
	in := map[string]any{
		"_id": "p1",
		"items": []any{
			map[string]any{"_id": "i1", "qty": float64(2)},
			map[string]any{"name": "no id here"},
		},
		"owner": map[string]any{"_id": "u1"},
	}
	once := MapIdentifiers(in)
	twice := MapIdentifiers(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent:\nonce  %#v\ntwice %#v", once, twice)
	}
}

func TestMapIdentifiers_ShapePreserved(t *testing.T) {
	in := map[string]any{
		"_id":    "a",
		"name":   "Blastoise",
		"grades": []any{float64(9), float64(10)},
		"nested": map[string]any{"deep": map[string]any{"_id": "b", "k": "v"}},
	}
	out := MapIdentifiers(in).(map[string]any)

	for _, key := range []string{"_id", "name", "grades", "nested"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("key %q dropped", key)
		}
	}
	grades := out["grades"].([]any)
	if len(grades) != 2 || grades[0] != float64(9) || grades[1] != float64(10) {
		t.Fatalf("array changed: %#v", grades)
	}
	deep := out["nested"].(map[string]any)["deep"].(map[string]any)
	if deep["id"] != "b" || deep["_id"] != "b" || deep["k"] != "v" {
		t.Fatalf("deep object wrong: %#v", deep)
	}
}

func TestMapIdentifiers_NoFabrication(t *testing.T) {
	out := MapIdentifiers(map[string]any{"name": "Pikachu"}).(map[string]any)
	if _, ok := out["id"]; ok {
		t.Fatalf("id fabricated: %#v", out)
	}

	// A non-string _id is not an identifier under the contract.
	out = MapIdentifiers(map[string]any{"_id": float64(7)}).(map[string]any)
	if _, ok := out["id"]; ok {
		t.Fatalf("id derived from non-string _id: %#v", out)
	}
}

func TestMapIdentifiers_ArrayOrder(t *testing.T) {
	in := []any{
		map[string]any{"_id": "1"},
		map[string]any{"_id": "2"},
		map[string]any{"_id": "3"},
	}
	out := MapIdentifiers(in).([]any)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i, item := range out {
		want := in[i].(map[string]any)["_id"]
		if item.(map[string]any)["id"] != want {
			t.Fatalf("element %d derived from wrong input: %#v", i, item)
		}
	}
}
