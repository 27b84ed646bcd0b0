package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// JSONCodecName is the content-subtype clients select with
// grpc.CallContentSubtype(JSONCodecName)
const JSONCodecName = "json"

// JSONCodec marshals gRPC messages as JSON, so services can be declared
// with plain Go request and response structs
type JSONCodec struct{}

// Marshal implements encoding.Codec
func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements encoding.Codec
func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Name implements encoding.Codec
func (JSONCodec) Name() string {
	return JSONCodecName
}

func init() {
	encoding.RegisterCodec(JSONCodec{})
}
