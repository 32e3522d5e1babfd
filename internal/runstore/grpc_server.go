package runstore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName      = "nngs.v1.ExperimentService"
	getRunMethod     = "/" + ServiceName + "/GetRun"
	listRunsMethod   = "/" + ServiceName + "/ListRuns"
	defaultListLimit = 50
)

// ExperimentServiceServer is the server API for run inspection. Messages are
// protobuf well-known types so no generated code is required.
type ExperimentServiceServer interface {
	GetRun(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListRuns(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// GRPCServer implements ExperimentServiceServer on top of a Store
type GRPCServer struct {
	store *Store
}

func NewGRPCServer(store *Store) *GRPCServer {
	return &GRPCServer{store: store}
}

func (s *GRPCServer) GetRun(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil || req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, ok := s.store.Get(req.GetValue())
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	out, err := runToStruct(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GRPCServer) ListRuns(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	recs := s.store.List(defaultListLimit, "")
	items := make([]*structpb.Value, 0, len(recs))
	for _, rec := range recs {
		st, err := runToStruct(rec)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		items = append(items, structpb.NewStructValue(st))
	}
	return &structpb.ListValue{Values: items}, nil
}

func getRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExperimentServiceServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getRunMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExperimentServiceServer).GetRun(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listRunsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExperimentServiceServer).ListRuns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listRunsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExperimentServiceServer).ListRuns(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var experimentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExperimentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetRun", Handler: getRunHandler},
		{MethodName: "ListRuns", Handler: listRunsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nngs/v1/experiment.proto",
}

// RegisterExperimentServiceServer registers srv on s
func RegisterExperimentServiceServer(s grpc.ServiceRegistrar, srv ExperimentServiceServer) {
	s.RegisterService(&experimentServiceDesc, srv)
}

// Client is a thin ExperimentService client
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetRun(ctx context.Context, runID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getRunMethod, wrapperspb.String(runID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRuns(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listRunsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
