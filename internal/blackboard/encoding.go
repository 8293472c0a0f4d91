package blackboard

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/xjson"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// envelope is the persisted form of a value: the cty type travels with the
// value so that numbers, strings, and collections decode to the same type.
type envelope struct {
	Type  xjson.RawMessage `json:"type"`
	Value xjson.RawMessage `json:"value"`
}

// EncodeValue serializes v together with its type.
func EncodeValue(v cty.Value) ([]byte, error) {
	ty := v.Type()
	typeJSON, err := ctyjson.MarshalType(ty)
	if err != nil {
		return nil, fmt.Errorf("encode type %s: %w", ty.FriendlyName(), err)
	}
	valJSON, err := ctyjson.Marshal(v, ty)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return xjson.Marshal(envelope{Type: typeJSON, Value: valJSON})
}

// DecodeValue reverses EncodeValue.
func DecodeValue(data []byte) (cty.Value, error) {
	var env envelope
	if err := xjson.Unmarshal(data, &env); err != nil {
		return cty.NilVal, fmt.Errorf("decode envelope: %w", err)
	}
	ty, err := ctyjson.UnmarshalType(env.Type)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decode type: %w", err)
	}
	v, err := ctyjson.Unmarshal(env.Value, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}
