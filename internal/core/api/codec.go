package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// decode converts a request Struct into dest through its JSON form.
// Numbers decode as json.Number so integer values keep their text.
func decode(in *structpb.Struct, dest any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encode converts a response value into a Struct. Values structpb cannot
// hold directly (json.Number, time.Time) go through their JSON form.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// timestamp renders t in the canonical google.protobuf.Timestamp JSON form.
func timestamp(t time.Time) string {
	data, err := protojson.Marshal(timestamppb.New(t))
	if err != nil {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return strings.Trim(string(data), `" `)
}
