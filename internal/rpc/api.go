// ABOUTME: API service descriptor, server interface, and client stub
// ABOUTME: Served on the authenticated main endpoint

package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Full method names for the API service.
const (
	API_Ping_FullMethodName    = "/warden.API/Ping"
	API_GetUser_FullMethodName = "/warden.API/GetUser"
)

// APIServer is the server API for the API service.
type APIServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	GetUser(context.Context, *GetUserRequest) (*User, error)
}

// UnimplementedAPIServer returns Unimplemented for every method.
type UnimplementedAPIServer struct{}

func (UnimplementedAPIServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedAPIServer) GetUser(context.Context, *GetUserRequest) (*User, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUser not implemented")
}

// RegisterAPIServer registers srv with s.
func RegisterAPIServer(s grpc.ServiceRegistrar, srv APIServer) {
	s.RegisterService(&API_ServiceDesc, srv)
}

func _API_Ping_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(APIServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: API_Ping_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(APIServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _API_GetUser_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUserRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(APIServer).GetUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: API_GetUser_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(APIServer).GetUser(ctx, req.(*GetUserRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// API_ServiceDesc is the grpc.ServiceDesc for the API service.
var API_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "warden.API",
	HandlerType: (*APIServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _API_Ping_Handler},
		{MethodName: "GetUser", Handler: _API_GetUser_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "warden/api",
}

// APIClient is the client API for the API service.
type APIClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error)
}

type apiClient struct {
	cc grpc.ClientConnInterface
}

// NewAPIClient returns an APIClient over cc.
func NewAPIClient(cc grpc.ClientConnInterface) APIClient {
	return &apiClient{cc}
}

func (c *apiClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, API_Ping_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error) {
	out := new(User)
	if err := c.cc.Invoke(ctx, API_GetUser_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
