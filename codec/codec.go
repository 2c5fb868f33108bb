package codec

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes payload values into their stored byte form and back.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode converts a payload value into bytes.
	Encode(v any) ([]byte, error)

	// Decode converts stored bytes back into a payload value.
	Decode(data []byte, v any) error

	// Name identifies the codec in export documents.
	Name() string
}

// JSON encodes payloads with encoding/json.
// Useful when export documents should stay human-inspectable end to end.
type JSON struct{}

// Encode implements Codec.
func (JSON) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode implements Codec.
func (JSON) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Msgpack encodes payloads with MessagePack. Smaller and faster than JSON
// for the deeply nested element trees a canvas editor snapshots.
type Msgpack struct{}

// Encode implements Codec.
func (Msgpack) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode implements Codec.
func (Msgpack) Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// Name implements Codec.
func (Msgpack) Name() string { return "msgpack" }

// ByName returns the codec registered under name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "msgpack":
		return Msgpack{}, true
	default:
		return nil, false
	}
}
