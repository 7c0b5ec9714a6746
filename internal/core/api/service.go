// Package api implements the subordinate.v1.SubordinateAPI gRPC service.
//
// Messages are google.protobuf.Struct values; the request and response
// shapes are documented on each handler. Handlers are a thin layer over
// the definition package and the rule set store.
package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/subordinate/internal/core/db"
	"github.com/solatis/subordinate/internal/types"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "subordinate.v1.SubordinateAPI"

// Store is the persistence the service needs. *db.Store implements it.
type Store interface {
	GetRuleSet(tenantID string, id types.RuleSetID) (*types.RuleSet, error)
	SaveRuleSets(tenantID string, sets []*types.RuleSet) ([]*db.RuleSetRecord, error)
	ListRuleSets(tenantID string) ([]db.RuleSetRecord, error)
	RecordEvaluation(e *db.Evaluation) error
}

// SubordinateAPIServer is the server side of the service.
type SubordinateAPIServer interface {
	ApplyControls(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PutRuleSet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SyncRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Service implements SubordinateAPIServer.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates the service.
func NewService(store Store, log zerolog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Service{store: store, log: log.With().Str("component", "api").Logger()}, nil
}

type handlerFunc func(SubordinateAPIServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a service method to grpc.MethodHandler.
func unaryHandler(method string, call handlerFunc) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SubordinateAPIServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SubordinateAPIServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SubordinateAPIServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ApplyControls", Handler: unaryHandler("ApplyControls", SubordinateAPIServer.ApplyControls)},
		{MethodName: "PutRuleSet", Handler: unaryHandler("PutRuleSet", SubordinateAPIServer.PutRuleSet)},
		{MethodName: "SyncRules", Handler: unaryHandler("SyncRules", SubordinateAPIServer.SyncRules)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "subordinate/v1/api",
}

// Register adds srv to s.
func Register(s grpc.ServiceRegistrar, srv SubordinateAPIServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the service over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyControls calls SubordinateAPI.ApplyControls.
func (c *Client) ApplyControls(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ApplyControls", in, opts)
}

// PutRuleSet calls SubordinateAPI.PutRuleSet.
func (c *Client) PutRuleSet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "PutRuleSet", in, opts)
}

// SyncRules calls SubordinateAPI.SyncRules.
func (c *Client) SyncRules(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SyncRules", in, opts)
}
