package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/linkview/internal/ir"
)

// marshalPayload converts an object's scalar properties to canonical JSON
// TEXT for storage.
func marshalPayload(payload ir.IRObject) (string, error) {
	if payload == nil {
		payload = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses stored payload TEXT. ir.IRObject.UnmarshalJSON
// decodes numbers via json.Number, so integers above 2^53 survive.
func unmarshalPayload(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return obj, nil
}
