package envelope

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func wrap(data any) map[string]any {
	return map[string]any{
		"success": true,
		"status":  StatusSuccess,
		"data":    data,
		"meta": map[string]any{
			"timestamp": "2026-01-15T10:00:00Z",
			"version":   Version,
		},
	}
}

func decode(t *testing.T, body string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return raw
}

func TestTransform_SimpleObject(t *testing.T) {
	payload, err := Transform(wrap(map[string]any{"_id": "a1", "name": "Charizard"}))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := map[string]any{"_id": "a1", "id": "a1", "name": "Charizard"}
	if !reflect.DeepEqual(payload, want) {
		t.Fatalf("payload = %#v, want %#v", payload, want)
	}
}

func TestTransform_NestedObject(t *testing.T) {
	raw := wrap(map[string]any{
		"_id": "p1",
		"cardId": map[string]any{
			"_id":   "c1",
			"setId": map[string]any{"_id": "s1"},
		},
	})
	payload, err := Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	obj := payload.(map[string]any)
	if obj["id"] != "p1" || obj["_id"] != "p1" {
		t.Fatalf("top-level ids wrong: %#v", obj)
	}
	card := obj["cardId"].(map[string]any)
	if card["id"] != "c1" || card["_id"] != "c1" {
		t.Fatalf("cardId ids wrong: %#v", card)
	}
	set := card["setId"].(map[string]any)
	if set["id"] != "s1" || set["_id"] != "s1" {
		t.Fatalf("setId ids wrong: %#v", set)
	}
}

func TestTransform_ArrayOfRecords(t *testing.T) {
	payload, err := Transform(wrap([]any{
		map[string]any{"_id": "x"},
		map[string]any{"_id": "y"},
	}))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	items := payload.([]any)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].(map[string]any)["id"] != "x" || items[1].(map[string]any)["id"] != "y" {
		t.Fatalf("order not preserved: %#v", items)
	}
}

func TestTransform_MetadataExclusion(t *testing.T) {
	payload, err := Transform(wrap(map[string]any{
		"_id":      "d1",
		"metadata": map[string]any{"version": "1.0"},
	}))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	obj := payload.(map[string]any)
	if obj["id"] != "d1" {
		t.Fatalf("missing top-level id: %#v", obj)
	}
	meta := obj["metadata"].(map[string]any)
	if _, ok := meta["id"]; ok {
		t.Fatalf("id fabricated inside metadata: %#v", meta)
	}
	if meta["version"] != "1.0" {
		t.Fatalf("metadata altered: %#v", meta)
	}
}

func TestTransform_NullAndMissingData(t *testing.T) {
	env := wrap(nil)
	if payload, err := Transform(env); err != nil || payload != nil {
		t.Fatalf("null data: payload=%v err=%v", payload, err)
	}

	delete(env, "data")
	if payload, err := Transform(env); err != nil || payload != nil {
		t.Fatalf("absent data: payload=%v err=%v", payload, err)
	}
}

func TestTransform_ScalarData(t *testing.T) {
	payload, err := Transform(wrap(float64(42)))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if payload != float64(42) {
		t.Fatalf("payload = %v, want 42", payload)
	}
}

func TestTransform_ErrorEnvelope(t *testing.T) {
	raw := decode(t, `{
		"success": false,
		"status": "error",
		"data": null,
		"meta": {"timestamp": "2026-01-15T10:00:00Z", "version": "2.0"},
		"error": {"message": "card not found", "code": "NOT_FOUND"}
	}`)

	payload, err := Transform(raw)
	if err != nil {
		t.Fatalf("well-formed error envelope must not fail: %v", err)
	}
	if payload != nil {
		t.Fatalf("payload = %v, want nil", payload)
	}
	if IsSuccess(raw) {
		t.Fatal("IsSuccess should be false")
	}
	apiErr, ok := ErrorInfo(raw)
	if !ok || apiErr.Message != "card not found" || apiErr.Code != "NOT_FOUND" {
		t.Fatalf("ErrorInfo = %+v/%v", apiErr, ok)
	}
}

func TestMetaOf(t *testing.T) {
	raw := decode(t, `{
		"success": true,
		"status": "success",
		"data": [],
		"meta": {"timestamp": "2026-01-15T10:00:00Z", "version": "2.0", "duration": 12.5, "cached": true}
	}`)

	meta, ok := MetaOf(raw)
	if !ok {
		t.Fatal("expected a meta block")
	}
	if meta.Version != "2.0" || meta.Duration != 12.5 || !meta.Cached {
		t.Fatalf("MetaOf = %+v", meta)
	}
	if _, ok := MetaOf("not an envelope"); ok {
		t.Fatal("scalar must not yield meta")
	}
}

func TestTransform_InvalidEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"empty object", map[string]any{}},
		{"missing status and meta", map[string]any{"success": true}},
		{"bare array", []any{map[string]any{"_id": "x"}}},
		{"scalar", "hello"},
		{
			"missing meta",
			map[string]any{"success": true, "status": "success", "data": nil},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Transform(tc.raw)
			var ife *InvalidFormatError
			if !errors.As(err, &ife) {
				t.Fatalf("err = %v, want *InvalidFormatError", err)
			}
		})
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	data := map[string]any{"_id": "a1", "tags": []any{"fire", "starter"}}
	env := wrap(data)
	before, _ := json.Marshal(env)

	if _, err := Transform(env); err != nil {
		t.Fatalf("Transform: %v", err)
	}

	after, _ := json.Marshal(env)
	if string(before) != string(after) {
		t.Fatalf("input mutated:\nbefore %s\nafter  %s", before, after)
	}
	if _, ok := data["id"]; ok {
		t.Fatal("id leaked into input payload")
	}
}
