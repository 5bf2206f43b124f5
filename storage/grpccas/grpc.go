package grpccas

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ItemStoreServer is the server API for the ItemStore gRPC service.
//
// Messages are protobuf well-known wrapper types, so the package needs no
// protoc step:
//
//	service ItemStore {
//	  rpc Put(google.protobuf.BytesValue) returns (google.protobuf.StringValue);     // blob -> cid
//	  rpc Get(google.protobuf.StringValue) returns (google.protobuf.BytesValue);     // cid -> blob
//	  rpc Has(google.protobuf.StringValue) returns (google.protobuf.BoolValue);      // cid
//	  rpc PutItem(google.protobuf.BytesValue) returns (google.protobuf.StringValue); // verified item -> cid
//	  rpc Locate(google.protobuf.StringValue) returns (google.protobuf.StringValue); // base64url item id -> cid
//	}
type ItemStoreServer interface {
	Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	PutItem(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Locate(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

const serviceName = "xdao.ans104.storage.v1.ItemStore"

// UnimplementedItemStoreServer can be embedded to have forward compatible implementations.
type UnimplementedItemStoreServer struct{}

func (UnimplementedItemStoreServer) Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Put not implemented")
}
func (UnimplementedItemStoreServer) Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedItemStoreServer) Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Has not implemented")
}
func (UnimplementedItemStoreServer) PutItem(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method PutItem not implemented")
}
func (UnimplementedItemStoreServer) Locate(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Locate not implemented")
}

// RegisterItemStoreServer registers the service on a gRPC server.
func RegisterItemStoreServer(s grpc.ServiceRegistrar, srv ItemStoreServer) {
	s.RegisterService(&ItemStore_ServiceDesc, srv)
}

// ItemStoreClient is the client API for the ItemStore gRPC service.
type ItemStoreClient interface {
	Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	PutItem(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Locate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type itemStoreClient struct{ cc grpc.ClientConnInterface }

func NewItemStoreClient(cc grpc.ClientConnInterface) ItemStoreClient {
	return &itemStoreClient{cc: cc}
}

func (c *itemStoreClient) Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Put", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *itemStoreClient) Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Get", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *itemStoreClient) Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Has", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *itemStoreClient) PutItem(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/PutItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *itemStoreClient) Locate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Locate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// unaryHandler adapts one typed server method to grpc.MethodDesc.
func unaryHandler[In any, Out any](method string, call func(ItemStoreServer, context.Context, *In) (*Out, error)) grpc.MethodHandler {
	full := "/" + serviceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(In)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ItemStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ItemStoreServer), ctx, req.(*In))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ItemStore_ServiceDesc is the grpc.ServiceDesc for the ItemStore service.
var ItemStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ItemStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Put", Handler: unaryHandler("Put", ItemStoreServer.Put)},
		{MethodName: "Get", Handler: unaryHandler("Get", ItemStoreServer.Get)},
		{MethodName: "Has", Handler: unaryHandler("Has", ItemStoreServer.Has)},
		{MethodName: "PutItem", Handler: unaryHandler("PutItem", ItemStoreServer.PutItem)},
		{MethodName: "Locate", Handler: unaryHandler("Locate", ItemStoreServer.Locate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "itemstore.proto",
}
