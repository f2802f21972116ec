// Package rpc defines the wire contract shared by the Master, Chunk Server,
// and Client: request/response message types and the gRPC service
// descriptors that bind them to methods.
//
// Messages are plain Go structs, not protoc-generated types. The cluster's
// payloads are framed as a self-describing binary object format rather
// than a schema-first IDL, so MessagePack stands in for that format and is
// registered as gRPC's default codec below — gRPC's encoding.Codec
// interface only needs Marshal/Unmarshal/Name, it does not require
// proto.Message.
package rpc

import (
	"google.golang.org/grpc/encoding"

	"github.com/vmihailenco/msgpack/v5"
)

// codecName matches grpc-go's built-in default codec name ("proto"), so
// every call that doesn't explicitly negotiate a content-subtype picks this
// codec up without extra dial/serve options.
const codecName = "proto"

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

func (msgpackCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(msgpackCodec{})
}
