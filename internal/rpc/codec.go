package rpc

import (
	"encoding/json"
	"fmt"
)

// jsonCodec marshals plain Go structs. It is registered under the name
// "json", replacing connect's protojson codec, so the service needs no
// generated protobuf types.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
