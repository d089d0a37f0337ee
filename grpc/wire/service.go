package wire

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "chat.v1.DataService"

// SubscriberHeader is sent by the server once a live subscription is registered.
const SubscriberHeader = "subscriber-id"

const (
	ListChannelsMethod  = "/" + ServiceName + "/ListChannels"
	CreateChannelMethod = "/" + ServiceName + "/CreateChannel"
	RenameChannelMethod = "/" + ServiceName + "/RenameChannel"
	DeleteChannelMethod = "/" + ServiceName + "/DeleteChannel"
	ListMessagesMethod  = "/" + ServiceName + "/ListMessages"
	CreateMessageMethod = "/" + ServiceName + "/CreateMessage"
	SubscribeMethod     = "/" + ServiceName + "/Subscribe"
)

// DataServiceServer is the server API of the data service.
type DataServiceServer interface {
	ListChannels(context.Context, *ListChannelsRequest) (*ListChannelsResponse, error)
	CreateChannel(context.Context, *CreateChannelRequest) (*ChannelResponse, error)
	RenameChannel(context.Context, *RenameChannelRequest) (*ChannelResponse, error)
	DeleteChannel(context.Context, *DeleteChannelRequest) (*DeleteChannelResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	CreateMessage(context.Context, *CreateMessageRequest) (*MessageResponse, error)
	Subscribe(*SubscribeRequest, SubscribeServer) error
}

// SubscribeServer is the server side of the live event stream.
type SubscribeServer interface {
	Send(*Event) error
	grpc.ServerStream
}

type subscribeServer struct {
	grpc.ServerStream
}

func (s *subscribeServer) Send(e *Event) error {
	return s.ServerStream.SendMsg(e)
}

// SubscribeStream is the descriptor clients open the live stream with.
var SubscribeStream = grpc.StreamDesc{
	StreamName:    "Subscribe",
	Handler:       subscribeHandler,
	ServerStreams: true,
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DataServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListChannels", Handler: unaryHandler(ListChannelsMethod, DataServiceServer.ListChannels)},
		{MethodName: "CreateChannel", Handler: unaryHandler(CreateChannelMethod, DataServiceServer.CreateChannel)},
		{MethodName: "RenameChannel", Handler: unaryHandler(RenameChannelMethod, DataServiceServer.RenameChannel)},
		{MethodName: "DeleteChannel", Handler: unaryHandler(DeleteChannelMethod, DataServiceServer.DeleteChannel)},
		{MethodName: "ListMessages", Handler: unaryHandler(ListMessagesMethod, DataServiceServer.ListMessages)},
		{MethodName: "CreateMessage", Handler: unaryHandler(CreateMessageMethod, DataServiceServer.CreateMessage)},
	},
	Streams:  []grpc.StreamDesc{SubscribeStream},
	Metadata: "chat/v1/data_service",
}

func RegisterDataServiceServer(s grpc.ServiceRegistrar, srv DataServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(DataServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(DataServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DataServiceServer).Subscribe(in, &subscribeServer{stream})
}
