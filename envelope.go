package skillsprint

import (
	"bytes"
	"encoding/json"
)

// decodeList normalizes the list responses the backend hands out: a bare
// array, or an object holding the array under one of keys. The first key
// holding an array wins; anything else is an empty list.
func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] == '[' {
		return unmarshalList[T](raw)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// scalars carry no list
		return []T{}, nil
	}

	for _, key := range keys {
		value := bytes.TrimSpace(envelope[key])
		if len(value) > 0 && value[0] == '[' {
			return unmarshalList[T](value)
		}
	}

	return []T{}, nil
}

func unmarshalList[T any](raw json.RawMessage) ([]T, error) {
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		richErr := ErrInvalidResponse.Clone()
		richErr.Source = err
		return nil, richErr
	}
	return out, nil
}

// ID is an identifier the backend may send as a JSON string or number
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
