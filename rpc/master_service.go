package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const masterServiceName = "rpc.Master"

// MasterClient is the client API for the Master service.
type MasterClient interface {
	RegisterChunkServer(ctx context.Context, in *RegisterChunkServerRequest, opts ...grpc.CallOption) (*Ack, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*Ack, error)
	RegisterClient(ctx context.Context, in *RegisterClientRequest, opts ...grpc.CallOption) (*Ack, error)
	ClientHeartbeat(ctx context.Context, in *ClientHeartbeatRequest, opts ...grpc.CallOption) (*Ack, error)
	GetChunkServers(ctx context.Context, in *GetChunkServersRequest, opts ...grpc.CallOption) (*GetChunkServersResponse, error)
	GetReplicaLocations(ctx context.Context, in *GetReplicaLocationsRequest, opts ...grpc.CallOption) (*GetReplicaLocationsResponse, error)
	AddFile(ctx context.Context, in *AddFileRequest, opts ...grpc.CallOption) (*Ack, error)
	UpdateFileMetadata(ctx context.Context, in *UpdateFileMetadataRequest, opts ...grpc.CallOption) (*Ack, error)
	UpdateChunkLocations(ctx context.Context, in *UpdateChunkLocationsRequest, opts ...grpc.CallOption) (*Ack, error)
	UpdateChunkOffset(ctx context.Context, in *UpdateChunkOffsetRequest, opts ...grpc.CallOption) (*Ack, error)
	GetChunkLocations(ctx context.Context, in *GetChunkLocationsRequest, opts ...grpc.CallOption) (*GetChunkLocationsResponse, error)
	GetFileMetadata(ctx context.Context, in *GetFileMetadataRequest, opts ...grpc.CallOption) (*GetFileMetadataResponse, error)
	ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error)
	GetGraphData(ctx context.Context, in *GetGraphDataRequest, opts ...grpc.CallOption) (*GetGraphDataResponse, error)
}

type masterClient struct {
	cc grpc.ClientConnInterface
}

// NewMasterClient creates a new Master client.
func NewMasterClient(cc grpc.ClientConnInterface) MasterClient {
	return &masterClient{cc}
}

func (c *masterClient) RegisterChunkServer(ctx context.Context, in *RegisterChunkServerRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/RegisterChunkServer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/Heartbeat", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) RegisterClient(ctx context.Context, in *RegisterClientRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/RegisterClient", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) ClientHeartbeat(ctx context.Context, in *ClientHeartbeatRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/ClientHeartbeat", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) GetChunkServers(ctx context.Context, in *GetChunkServersRequest, opts ...grpc.CallOption) (*GetChunkServersResponse, error) {
	out := new(GetChunkServersResponse)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/GetChunkServers", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) GetReplicaLocations(ctx context.Context, in *GetReplicaLocationsRequest, opts ...grpc.CallOption) (*GetReplicaLocationsResponse, error) {
	out := new(GetReplicaLocationsResponse)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/GetReplicaLocations", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) AddFile(ctx context.Context, in *AddFileRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/AddFile", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) UpdateFileMetadata(ctx context.Context, in *UpdateFileMetadataRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/UpdateFileMetadata", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) UpdateChunkLocations(ctx context.Context, in *UpdateChunkLocationsRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/UpdateChunkLocations", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) UpdateChunkOffset(ctx context.Context, in *UpdateChunkOffsetRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/UpdateChunkOffset", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) GetChunkLocations(ctx context.Context, in *GetChunkLocationsRequest, opts ...grpc.CallOption) (*GetChunkLocationsResponse, error) {
	out := new(GetChunkLocationsResponse)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/GetChunkLocations", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) GetFileMetadata(ctx context.Context, in *GetFileMetadataRequest, opts ...grpc.CallOption) (*GetFileMetadataResponse, error) {
	out := new(GetFileMetadataResponse)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/GetFileMetadata", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error) {
	out := new(ListFilesResponse)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/ListFiles", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterClient) GetGraphData(ctx context.Context, in *GetGraphDataRequest, opts ...grpc.CallOption) (*GetGraphDataResponse, error) {
	out := new(GetGraphDataResponse)
	if err := c.cc.Invoke(ctx, "/"+masterServiceName+"/GetGraphData", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// MasterServer is the server API for the Master service.
type MasterServer interface {
	RegisterChunkServer(context.Context, *RegisterChunkServerRequest) (*Ack, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*Ack, error)
	RegisterClient(context.Context, *RegisterClientRequest) (*Ack, error)
	ClientHeartbeat(context.Context, *ClientHeartbeatRequest) (*Ack, error)
	GetChunkServers(context.Context, *GetChunkServersRequest) (*GetChunkServersResponse, error)
	GetReplicaLocations(context.Context, *GetReplicaLocationsRequest) (*GetReplicaLocationsResponse, error)
	AddFile(context.Context, *AddFileRequest) (*Ack, error)
	UpdateFileMetadata(context.Context, *UpdateFileMetadataRequest) (*Ack, error)
	UpdateChunkLocations(context.Context, *UpdateChunkLocationsRequest) (*Ack, error)
	UpdateChunkOffset(context.Context, *UpdateChunkOffsetRequest) (*Ack, error)
	GetChunkLocations(context.Context, *GetChunkLocationsRequest) (*GetChunkLocationsResponse, error)
	GetFileMetadata(context.Context, *GetFileMetadataRequest) (*GetFileMetadataResponse, error)
	ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error)
	GetGraphData(context.Context, *GetGraphDataRequest) (*GetGraphDataResponse, error)
}

// UnimplementedMasterServer can be embedded to have forward compatible implementations.
type UnimplementedMasterServer struct{}

func (UnimplementedMasterServer) RegisterChunkServer(context.Context, *RegisterChunkServerRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RegisterChunkServer not implemented")
}
func (UnimplementedMasterServer) Heartbeat(context.Context, *HeartbeatRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Heartbeat not implemented")
}
func (UnimplementedMasterServer) RegisterClient(context.Context, *RegisterClientRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RegisterClient not implemented")
}
func (UnimplementedMasterServer) ClientHeartbeat(context.Context, *ClientHeartbeatRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ClientHeartbeat not implemented")
}
func (UnimplementedMasterServer) GetChunkServers(context.Context, *GetChunkServersRequest) (*GetChunkServersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetChunkServers not implemented")
}
func (UnimplementedMasterServer) GetReplicaLocations(context.Context, *GetReplicaLocationsRequest) (*GetReplicaLocationsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetReplicaLocations not implemented")
}
func (UnimplementedMasterServer) AddFile(context.Context, *AddFileRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddFile not implemented")
}
func (UnimplementedMasterServer) UpdateFileMetadata(context.Context, *UpdateFileMetadataRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateFileMetadata not implemented")
}
func (UnimplementedMasterServer) UpdateChunkLocations(context.Context, *UpdateChunkLocationsRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateChunkLocations not implemented")
}
func (UnimplementedMasterServer) UpdateChunkOffset(context.Context, *UpdateChunkOffsetRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateChunkOffset not implemented")
}
func (UnimplementedMasterServer) GetChunkLocations(context.Context, *GetChunkLocationsRequest) (*GetChunkLocationsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetChunkLocations not implemented")
}
func (UnimplementedMasterServer) GetFileMetadata(context.Context, *GetFileMetadataRequest) (*GetFileMetadataResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetFileMetadata not implemented")
}
func (UnimplementedMasterServer) ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListFiles not implemented")
}
func (UnimplementedMasterServer) GetGraphData(context.Context, *GetGraphDataRequest) (*GetGraphDataResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetGraphData not implemented")
}

// RegisterMasterServer registers srv on s as the Master service.
func RegisterMasterServer(s grpc.ServiceRegistrar, srv MasterServer) {
	s.RegisterService(&masterServiceDesc, srv)
}

func masterHandler(fieldName string, call func(srv any, ctx context.Context, in any) (any, error), newIn func() any) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + masterServiceName + "/" + fieldName}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}

var masterServiceDesc = grpc.ServiceDesc{
	ServiceName: masterServiceName,
	HandlerType: (*MasterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterChunkServer", Handler: masterHandler("RegisterChunkServer",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).RegisterChunkServer(ctx, in.(*RegisterChunkServerRequest))
			}, func() any { return new(RegisterChunkServerRequest) })},
		{MethodName: "Heartbeat", Handler: masterHandler("Heartbeat",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).Heartbeat(ctx, in.(*HeartbeatRequest))
			}, func() any { return new(HeartbeatRequest) })},
		{MethodName: "RegisterClient", Handler: masterHandler("RegisterClient",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).RegisterClient(ctx, in.(*RegisterClientRequest))
			}, func() any { return new(RegisterClientRequest) })},
		{MethodName: "ClientHeartbeat", Handler: masterHandler("ClientHeartbeat",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).ClientHeartbeat(ctx, in.(*ClientHeartbeatRequest))
			}, func() any { return new(ClientHeartbeatRequest) })},
		{MethodName: "GetChunkServers", Handler: masterHandler("GetChunkServers",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).GetChunkServers(ctx, in.(*GetChunkServersRequest))
			}, func() any { return new(GetChunkServersRequest) })},
		{MethodName: "GetReplicaLocations", Handler: masterHandler("GetReplicaLocations",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).GetReplicaLocations(ctx, in.(*GetReplicaLocationsRequest))
			}, func() any { return new(GetReplicaLocationsRequest) })},
		{MethodName: "AddFile", Handler: masterHandler("AddFile",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).AddFile(ctx, in.(*AddFileRequest))
			}, func() any { return new(AddFileRequest) })},
		{MethodName: "UpdateFileMetadata", Handler: masterHandler("UpdateFileMetadata",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).UpdateFileMetadata(ctx, in.(*UpdateFileMetadataRequest))
			}, func() any { return new(UpdateFileMetadataRequest) })},
		{MethodName: "UpdateChunkLocations", Handler: masterHandler("UpdateChunkLocations",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).UpdateChunkLocations(ctx, in.(*UpdateChunkLocationsRequest))
			}, func() any { return new(UpdateChunkLocationsRequest) })},
		{MethodName: "UpdateChunkOffset", Handler: masterHandler("UpdateChunkOffset",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).UpdateChunkOffset(ctx, in.(*UpdateChunkOffsetRequest))
			}, func() any { return new(UpdateChunkOffsetRequest) })},
		{MethodName: "GetChunkLocations", Handler: masterHandler("GetChunkLocations",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).GetChunkLocations(ctx, in.(*GetChunkLocationsRequest))
			}, func() any { return new(GetChunkLocationsRequest) })},
		{MethodName: "GetFileMetadata", Handler: masterHandler("GetFileMetadata",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).GetFileMetadata(ctx, in.(*GetFileMetadataRequest))
			}, func() any { return new(GetFileMetadataRequest) })},
		{MethodName: "ListFiles", Handler: masterHandler("ListFiles",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).ListFiles(ctx, in.(*ListFilesRequest))
			}, func() any { return new(ListFilesRequest) })},
		{MethodName: "GetGraphData", Handler: masterHandler("GetGraphData",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(MasterServer).GetGraphData(ctx, in.(*GetGraphDataRequest))
			}, func() any { return new(GetGraphDataRequest) })},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/dfs.proto",
}
