// json.go - the JSON editor-protocol framing: ["verb", arg, …] forms,
// streamed with the standard decoder rather than a hand-rolled bracket
// counter, since encoding/json.Decoder already reads exactly one JSON
// value at a time off a live io.Reader (json_parser.c, §6.2).
package editorproto

import (
	"encoding/json"
	"io"
)

// JSONParser reads successive top-level JSON values from a stream.
type JSONParser struct {
	dec *json.Decoder
}

func NewJSONParser(r io.Reader) *JSONParser {
	return &JSONParser{dec: json.NewDecoder(r)}
}

// Next blocks for and returns the next complete JSON value.
func (p *JSONParser) Next() (Value, error) {
	var raw interface{}
	if err := p.dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	return fromJSON(raw), nil
}

func fromJSON(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case float64:
		return Value{Kind: KindNumber, Num: t}
	case string:
		return Value{Kind: KindString, Str: t}
	case []interface{}:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = fromJSON(e)
		}
		return Value{Kind: KindArray, Arr: arr}
	default:
		return Value{Kind: KindNull}
	}
}
