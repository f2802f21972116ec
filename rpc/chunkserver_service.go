package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const chunkServerServiceName = "rpc.ChunkServer"

// ChunkServerClient is the client API for the ChunkServer service.
type ChunkServerClient interface {
	StoreChunk(ctx context.Context, in *StoreChunkRequest, opts ...grpc.CallOption) (*StoreChunkResponse, error)
	RetrieveChunk(ctx context.Context, in *RetrieveChunkRequest, opts ...grpc.CallOption) (*RetrieveChunkResponse, error)
	DeleteChunk(ctx context.Context, in *DeleteChunkRequest, opts ...grpc.CallOption) (*Ack, error)
	CheckSpace(ctx context.Context, in *CheckSpaceRequest, opts ...grpc.CallOption) (*CheckSpaceResponse, error)
	PrepareAppend(ctx context.Context, in *PrepareAppendRequest, opts ...grpc.CallOption) (*Ack, error)
	CommitAppend(ctx context.Context, in *CommitAppendRequest, opts ...grpc.CallOption) (*Ack, error)
	RollbackAppend(ctx context.Context, in *RollbackAppendRequest, opts ...grpc.CallOption) (*Ack, error)
	AppendChunk(ctx context.Context, in *AppendChunkRequest, opts ...grpc.CallOption) (*Ack, error)
}

type chunkServerClient struct {
	cc grpc.ClientConnInterface
}

// NewChunkServerClient creates a new ChunkServer client.
func NewChunkServerClient(cc grpc.ClientConnInterface) ChunkServerClient {
	return &chunkServerClient{cc}
}

func (c *chunkServerClient) StoreChunk(ctx context.Context, in *StoreChunkRequest, opts ...grpc.CallOption) (*StoreChunkResponse, error) {
	out := new(StoreChunkResponse)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/StoreChunk", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServerClient) RetrieveChunk(ctx context.Context, in *RetrieveChunkRequest, opts ...grpc.CallOption) (*RetrieveChunkResponse, error) {
	out := new(RetrieveChunkResponse)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/RetrieveChunk", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServerClient) DeleteChunk(ctx context.Context, in *DeleteChunkRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/DeleteChunk", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServerClient) CheckSpace(ctx context.Context, in *CheckSpaceRequest, opts ...grpc.CallOption) (*CheckSpaceResponse, error) {
	out := new(CheckSpaceResponse)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/CheckSpace", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServerClient) PrepareAppend(ctx context.Context, in *PrepareAppendRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/PrepareAppend", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServerClient) CommitAppend(ctx context.Context, in *CommitAppendRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/CommitAppend", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServerClient) RollbackAppend(ctx context.Context, in *RollbackAppendRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/RollbackAppend", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chunkServerClient) AppendChunk(ctx context.Context, in *AppendChunkRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := c.cc.Invoke(ctx, "/"+chunkServerServiceName+"/AppendChunk", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ChunkServerServer is the server API for the ChunkServer service.
type ChunkServerServer interface {
	StoreChunk(context.Context, *StoreChunkRequest) (*StoreChunkResponse, error)
	RetrieveChunk(context.Context, *RetrieveChunkRequest) (*RetrieveChunkResponse, error)
	DeleteChunk(context.Context, *DeleteChunkRequest) (*Ack, error)
	CheckSpace(context.Context, *CheckSpaceRequest) (*CheckSpaceResponse, error)
	PrepareAppend(context.Context, *PrepareAppendRequest) (*Ack, error)
	CommitAppend(context.Context, *CommitAppendRequest) (*Ack, error)
	RollbackAppend(context.Context, *RollbackAppendRequest) (*Ack, error)
	AppendChunk(context.Context, *AppendChunkRequest) (*Ack, error)
}

// UnimplementedChunkServerServer can be embedded to have forward compatible implementations.
type UnimplementedChunkServerServer struct{}

func (UnimplementedChunkServerServer) StoreChunk(context.Context, *StoreChunkRequest) (*StoreChunkResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StoreChunk not implemented")
}
func (UnimplementedChunkServerServer) RetrieveChunk(context.Context, *RetrieveChunkRequest) (*RetrieveChunkResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RetrieveChunk not implemented")
}
func (UnimplementedChunkServerServer) DeleteChunk(context.Context, *DeleteChunkRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteChunk not implemented")
}
func (UnimplementedChunkServerServer) CheckSpace(context.Context, *CheckSpaceRequest) (*CheckSpaceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CheckSpace not implemented")
}
func (UnimplementedChunkServerServer) PrepareAppend(context.Context, *PrepareAppendRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PrepareAppend not implemented")
}
func (UnimplementedChunkServerServer) CommitAppend(context.Context, *CommitAppendRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CommitAppend not implemented")
}
func (UnimplementedChunkServerServer) RollbackAppend(context.Context, *RollbackAppendRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RollbackAppend not implemented")
}
func (UnimplementedChunkServerServer) AppendChunk(context.Context, *AppendChunkRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AppendChunk not implemented")
}

// RegisterChunkServerServer registers srv on s as the ChunkServer service.
func RegisterChunkServerServer(s grpc.ServiceRegistrar, srv ChunkServerServer) {
	s.RegisterService(&chunkServerServiceDesc, srv)
}

func chunkServerHandler(fieldName string, call func(srv any, ctx context.Context, in any) (any, error), newIn func() any) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + chunkServerServiceName + "/" + fieldName}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}

var chunkServerServiceDesc = grpc.ServiceDesc{
	ServiceName: chunkServerServiceName,
	HandlerType: (*ChunkServerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StoreChunk", Handler: chunkServerHandler("StoreChunk",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).StoreChunk(ctx, in.(*StoreChunkRequest))
			}, func() any { return new(StoreChunkRequest) })},
		{MethodName: "RetrieveChunk", Handler: chunkServerHandler("RetrieveChunk",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).RetrieveChunk(ctx, in.(*RetrieveChunkRequest))
			}, func() any { return new(RetrieveChunkRequest) })},
		{MethodName: "DeleteChunk", Handler: chunkServerHandler("DeleteChunk",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).DeleteChunk(ctx, in.(*DeleteChunkRequest))
			}, func() any { return new(DeleteChunkRequest) })},
		{MethodName: "CheckSpace", Handler: chunkServerHandler("CheckSpace",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).CheckSpace(ctx, in.(*CheckSpaceRequest))
			}, func() any { return new(CheckSpaceRequest) })},
		{MethodName: "PrepareAppend", Handler: chunkServerHandler("PrepareAppend",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).PrepareAppend(ctx, in.(*PrepareAppendRequest))
			}, func() any { return new(PrepareAppendRequest) })},
		{MethodName: "CommitAppend", Handler: chunkServerHandler("CommitAppend",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).CommitAppend(ctx, in.(*CommitAppendRequest))
			}, func() any { return new(CommitAppendRequest) })},
		{MethodName: "RollbackAppend", Handler: chunkServerHandler("RollbackAppend",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).RollbackAppend(ctx, in.(*RollbackAppendRequest))
			}, func() any { return new(RollbackAppendRequest) })},
		{MethodName: "AppendChunk", Handler: chunkServerHandler("AppendChunk",
			func(srv any, ctx context.Context, in any) (any, error) {
				return srv.(ChunkServerServer).AppendChunk(ctx, in.(*AppendChunkRequest))
			}, func() any { return new(AppendChunkRequest) })},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/dfs.proto",
}
