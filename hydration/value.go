package hydration

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Value is a decoded JSON value. Object members keep their document
// order so that walking a payload visits messages in the order they were
// written.
type Value struct {
	Kind    Kind
	Str     string // String, Number and Bool text
	Items   []*Value
	Members []Member
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value *Value
}

// Get returns the first member named key, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != Object {
		return nil
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// StringValue returns the string held by v and whether v is a string.
func (v *Value) StringValue() (string, bool) {
	if v == nil || v.Kind != String {
		return "", false
	}
	return v.Str, true
}

// MaxDepth bounds the nesting of arrays and objects accepted by Parse.
const MaxDepth = 10000

// ErrTooDeep is returned by Parse for values nested deeper than MaxDepth.
var ErrTooDeep = errors.New("json nesting exceeds max depth")

// Parse decodes the first JSON value in data. Trailing content after the
// value, such as the ");" closing a push call, is ignored.
func Parse(data string) (*Value, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec, 0)
}

func decodeValue(dec *json.Decoder, depth int) (*Value, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := &Value{Kind: Object}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", kt)
				}
				child, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				v.Members = append(v.Members, Member{Key: key, Value: child})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return v, nil
		case '[':
			v := &Value{Kind: Array}
			for dec.More() {
				child, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				v.Items = append(v.Items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return v, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return &Value{Kind: String, Str: t}, nil
	case json.Number:
		return &Value{Kind: Number, Str: t.String()}, nil
	case bool:
		return &Value{Kind: Bool, Str: fmt.Sprint(t)}, nil
	case nil:
		return &Value{Kind: Null}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
