// ABOUTME: JSON wire codec registered with gRPC under the "json" content-subtype
// ABOUTME: Proto messages go through protojson, plain structs through encoding/json

package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content-subtype the codec is registered under.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec implements encoding.Codec for warden messages.
type Codec struct{}

// Marshal encodes v as JSON.
func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling %T: %w", v, err)
	}
	return b, nil
}

// Unmarshal decodes JSON data into v. An empty body leaves v at its zero value.
func (Codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		if len(data) == 0 {
			proto.Reset(m)
			return nil
		}
		return protojson.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling %T: %w", v, err)
	}
	return nil
}

// Name returns the content-subtype.
func (Codec) Name() string {
	return CodecName
}

// callJSON is prepended to every client call so requests use Codec.
var callJSON = grpc.CallContentSubtype(CodecName)

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{callJSON}, opts...)
}
