package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	MarketplaceServiceName = "farmhub.api.v1.Marketplace"
	AuthServiceName        = "farmhub.api.v1.AuthService"
)

// MarketplaceServer is the server API of the marketplace service.
type MarketplaceServer interface {
	CreateListing(context.Context, *CreateListingRequest) (*ListingResponse, error)
	GetListing(context.Context, *ListingIDRequest) (*ListingResponse, error)
	ListListings(context.Context, *ListListingsRequest) (*ListListingsResponse, error)
	ListMyListings(context.Context, *Empty) (*ListListingsResponse, error)
	DeleteListing(context.Context, *ListingIDRequest) (*Empty, error)

	RequestBooking(context.Context, *ListingIDRequest) (*BookingRequestResponse, error)
	AcceptRequest(context.Context, *RequestIDRequest) (*BookingRequestResponse, error)
	RejectRequest(context.Context, *RequestIDRequest) (*BookingRequestResponse, error)
	GetRequest(context.Context, *RequestIDRequest) (*BookingRequestResponse, error)
	ListIncomingRequests(context.Context, *Empty) (*ListRequestsResponse, error)
	ListOutgoingRequests(context.Context, *Empty) (*ListRequestsResponse, error)
	GetChatEligibility(context.Context, *RequestIDRequest) (*ChatEligibilityResponse, error)

	PostMessage(context.Context, *PostMessageRequest) (*MessageResponse, error)
	ListMessages(context.Context, *RequestIDRequest) (*ListMessagesResponse, error)

	GetNotifications(context.Context, *GetNotificationsRequest) (*GetNotificationsResponse, error)
	MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*Empty, error)

	GetUploadUrl(context.Context, *GetUploadURLRequest) (*GetUploadURLResponse, error)
	ConfirmImage(context.Context, *ConfirmImageRequest) (*ListingResponse, error)
	GetDownloadUrl(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error)
}

// AuthServer exchanges refresh tokens when the jwt provider is in use.
type AuthServer interface {
	RefreshToken(context.Context, *Empty) (*RefreshTokenResponse, error)
}

// unary builds the method descriptor for one unary RPC, the way generated
// code does, running the server's interceptor chain around call.
func unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var MarketplaceServiceDesc = grpc.ServiceDesc{
	ServiceName: MarketplaceServiceName,
	HandlerType: (*MarketplaceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MarketplaceServiceName, "CreateListing", MarketplaceServer.CreateListing),
		unary(MarketplaceServiceName, "GetListing", MarketplaceServer.GetListing),
		unary(MarketplaceServiceName, "ListListings", MarketplaceServer.ListListings),
		unary(MarketplaceServiceName, "ListMyListings", MarketplaceServer.ListMyListings),
		unary(MarketplaceServiceName, "DeleteListing", MarketplaceServer.DeleteListing),
		unary(MarketplaceServiceName, "RequestBooking", MarketplaceServer.RequestBooking),
		unary(MarketplaceServiceName, "AcceptRequest", MarketplaceServer.AcceptRequest),
		unary(MarketplaceServiceName, "RejectRequest", MarketplaceServer.RejectRequest),
		unary(MarketplaceServiceName, "GetRequest", MarketplaceServer.GetRequest),
		unary(MarketplaceServiceName, "ListIncomingRequests", MarketplaceServer.ListIncomingRequests),
		unary(MarketplaceServiceName, "ListOutgoingRequests", MarketplaceServer.ListOutgoingRequests),
		unary(MarketplaceServiceName, "GetChatEligibility", MarketplaceServer.GetChatEligibility),
		unary(MarketplaceServiceName, "PostMessage", MarketplaceServer.PostMessage),
		unary(MarketplaceServiceName, "ListMessages", MarketplaceServer.ListMessages),
		unary(MarketplaceServiceName, "GetNotifications", MarketplaceServer.GetNotifications),
		unary(MarketplaceServiceName, "MarkNotificationRead", MarketplaceServer.MarkNotificationRead),
		unary(MarketplaceServiceName, "GetUploadUrl", MarketplaceServer.GetUploadUrl),
		unary(MarketplaceServiceName, "ConfirmImage", MarketplaceServer.ConfirmImage),
		unary(MarketplaceServiceName, "GetDownloadUrl", MarketplaceServer.GetDownloadUrl),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "farmhub/api/v1/marketplace",
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "RefreshToken", AuthServer.RefreshToken),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "farmhub/api/v1/auth",
}

func RegisterMarketplaceServer(s grpc.ServiceRegistrar, srv MarketplaceServer) {
	s.RegisterService(&MarketplaceServiceDesc, srv)
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}
