package observability

// Field is one structured log attribute.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Err renders err under the "error" key; a nil err renders as an empty string.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: ""}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Label is one metric dimension.
type Label struct{ Key, Value string }

func L(key, value string) Label { return Label{Key: key, Value: value} }
