package api

import (
	"encoding/json"
)

// Codec encodes messages as plain JSON. Connect's built-in JSON codec only
// accepts protobuf messages; the messages of this API are Go structs.
type Codec struct{}

func (Codec) Name() string {
	return "json"
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
