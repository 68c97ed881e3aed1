package envelope

// mongoIDField is the identifier field the card-index backend emits. It is
// the only alias the contract defines.
const mongoIDField = "_id"

// idField is the conventional name the rest of the application reads.
const idField = "id"

// MapIdentifiers returns a copy of v in which every object carrying a
// string-valued "_id" field, at any depth, additionally exposes the same
// value under "id". The original "_id" is kept, sibling fields and array
// order are preserved, and objects without an identifier are copied
// untouched (recursion aside). Scalars and nil pass through unchanged.
//
// The mapping is idempotent: "id" is always re-derived from "_id", so a
// second pass is a no-op. It is a single depth-first walk, linear in the
// number of nodes, and never mutates the input.
func MapIdentifiers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val)+1)
		for k, nested := range val {
			out[k] = MapIdentifiers(nested)
		}
		if id, ok := val[mongoIDField].(string); ok {
			out[idField] = id
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = MapIdentifiers(item)
		}
		return out
	default:
		return v
	}
}
