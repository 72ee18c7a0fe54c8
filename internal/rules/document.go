package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// entry is one key/value pair of a decoded mapping, kept in document order.
type entry struct {
	Key   any
	Value any
}

// object is a decoded mapping. Nodes of a decoded document are scalars
// (string, bool, nil, json.Number, int, float64), []any or object.
type object []entry

// get returns the value stored under key and whether it was present.
func (o object) get(key string) (any, bool) {
	for _, e := range o {
		if k, ok := e.Key.(string); ok && k == key {
			return e.Value, true
		}
	}
	return nil, false
}

// has reports whether key is present, even with a null value.
func (o object) has(key string) bool {
	_, ok := o.get(key)
	return ok
}

// decodeJSON parses a JSON document keeping the order of object keys.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeJSONNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return node, nil
}

func decodeJSONNode(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := object{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", kt)
			}
			v, err := decodeJSONNode(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, entry{Key: key, Value: v})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeJSONNode(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// decodeYAML parses a YAML document. Mappings are read as yaml.MapSlice so
// their order survives, then converted to object.
func decodeYAML(data []byte) (any, error) {
	var doc []yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make([]any, len(doc))
	for i, m := range doc {
		out[i] = fromYAML(m)
	}
	return out, nil
}

func fromYAML(n any) any {
	switch v := n.(type) {
	case yaml.MapSlice:
		obj := make(object, len(v))
		for i, item := range v {
			obj[i] = entry{Key: item.Key, Value: fromYAML(item.Value)}
		}
		return obj
	case map[interface{}]interface{}:
		// Only reached for mappings nested in sequences decoded outside a
		// MapSlice context; order is not recoverable there.
		obj := make(object, 0, len(v))
		for k, val := range v {
			obj = append(obj, entry{Key: k, Value: fromYAML(val)})
		}
		return obj
	case []interface{}:
		arr := make([]any, len(v))
		for i, val := range v {
			arr[i] = fromYAML(val)
		}
		return arr
	default:
		return v
	}
}
