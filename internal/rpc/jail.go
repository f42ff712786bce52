// ABOUTME: Jail service descriptor, server interface, and client stub
// ABOUTME: Every Jail method is reachable by restricted callers through the default allow-list

package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Full method names for the Jail service.
const (
	Jail_GetTOS_FullMethodName    = "/warden.Jail/GetTOS"
	Jail_AcceptTOS_FullMethodName = "/warden.Jail/AcceptTOS"
	Jail_JailInfo_FullMethodName  = "/warden.Jail/JailInfo"
)

// JailServiceName is the fully qualified Jail service name.
const JailServiceName = "warden.Jail"

// JailServer is the server API for the Jail service.
type JailServer interface {
	GetTOS(context.Context, *emptypb.Empty) (*GetTOSResponse, error)
	AcceptTOS(context.Context, *AcceptTOSRequest) (*GetTOSResponse, error)
	JailInfo(context.Context, *emptypb.Empty) (*JailInfoResponse, error)
}

// UnimplementedJailServer returns Unimplemented for every method.
type UnimplementedJailServer struct{}

func (UnimplementedJailServer) GetTOS(context.Context, *emptypb.Empty) (*GetTOSResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTOS not implemented")
}

func (UnimplementedJailServer) AcceptTOS(context.Context, *AcceptTOSRequest) (*GetTOSResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AcceptTOS not implemented")
}

func (UnimplementedJailServer) JailInfo(context.Context, *emptypb.Empty) (*JailInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method JailInfo not implemented")
}

// RegisterJailServer registers srv with s.
func RegisterJailServer(s grpc.ServiceRegistrar, srv JailServer) {
	s.RegisterService(&Jail_ServiceDesc, srv)
}

func _Jail_GetTOS_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JailServer).GetTOS(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Jail_GetTOS_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(JailServer).GetTOS(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Jail_AcceptTOS_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AcceptTOSRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JailServer).AcceptTOS(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Jail_AcceptTOS_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(JailServer).AcceptTOS(ctx, req.(*AcceptTOSRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Jail_JailInfo_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JailServer).JailInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Jail_JailInfo_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(JailServer).JailInfo(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Jail_ServiceDesc is the grpc.ServiceDesc for the Jail service.
var Jail_ServiceDesc = grpc.ServiceDesc{
	ServiceName: JailServiceName,
	HandlerType: (*JailServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTOS", Handler: _Jail_GetTOS_Handler},
		{MethodName: "AcceptTOS", Handler: _Jail_AcceptTOS_Handler},
		{MethodName: "JailInfo", Handler: _Jail_JailInfo_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "warden/jail",
}

// JailClient is the client API for the Jail service.
type JailClient interface {
	GetTOS(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*GetTOSResponse, error)
	AcceptTOS(ctx context.Context, in *AcceptTOSRequest, opts ...grpc.CallOption) (*GetTOSResponse, error)
	JailInfo(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*JailInfoResponse, error)
}

type jailClient struct {
	cc grpc.ClientConnInterface
}

// NewJailClient returns a JailClient over cc.
func NewJailClient(cc grpc.ClientConnInterface) JailClient {
	return &jailClient{cc}
}

func (c *jailClient) GetTOS(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*GetTOSResponse, error) {
	out := new(GetTOSResponse)
	if err := c.cc.Invoke(ctx, Jail_GetTOS_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jailClient) AcceptTOS(ctx context.Context, in *AcceptTOSRequest, opts ...grpc.CallOption) (*GetTOSResponse, error) {
	out := new(GetTOSResponse)
	if err := c.cc.Invoke(ctx, Jail_AcceptTOS_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jailClient) JailInfo(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*JailInfoResponse, error) {
	out := new(JailInfoResponse)
	if err := c.cc.Invoke(ctx, Jail_JailInfo_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
