package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/repository"
	"farmhub-backend/internal/service"
)

type MarketplaceHandler struct {
	listingSvc service.ListingService
	bookingSvc service.BookingService
	channelSvc service.ChannelService
	noteSvc    service.NotificationService
	imageSvc   service.ImageStorageService
}

func NewMarketplaceHandler(
	listingSvc service.ListingService,
	bookingSvc service.BookingService,
	channelSvc service.ChannelService,
	noteSvc service.NotificationService,
	imageSvc service.ImageStorageService,
) *MarketplaceHandler {
	return &MarketplaceHandler{
		listingSvc: listingSvc,
		bookingSvc: bookingSvc,
		channelSvc: channelSvc,
		noteSvc:    noteSvc,
		imageSvc:   imageSvc,
	}
}

var _ MarketplaceServer = (*MarketplaceHandler)(nil)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return status.Errorf(codes.InvalidArgument, "%s is required", field)
	}
	return nil
}

// Listings

func (h *MarketplaceHandler) CreateListing(ctx context.Context, req *CreateListingRequest) (*ListingResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := h.listingSvc.CreateListing(ctx, userID, &domain.Listing{
		Name:        req.Name,
		Kind:        domain.OfferKind(req.Kind),
		Price:       req.Price,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListingResponse{Listing: MapDomainListingToProto(listing)}, nil
}

func (h *MarketplaceHandler) GetListing(ctx context.Context, req *ListingIDRequest) (*ListingResponse, error) {
	if err := required("listing_id", req.ListingID); err != nil {
		return nil, err
	}
	listing, err := h.listingSvc.GetListing(ctx, req.ListingID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListingResponse{Listing: MapDomainListingToProto(listing)}, nil
}

func (h *MarketplaceHandler) ListListings(ctx context.Context, req *ListListingsRequest) (*ListListingsResponse, error) {
	listings, err := h.listingSvc.ListListings(ctx, repository.ListingFilter{
		Kind:   domain.OfferKind(req.Kind),
		Status: domain.ListingStatus(req.Status),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListListingsResponse{Listings: MapDomainListingsToProto(listings)}, nil
}

func (h *MarketplaceHandler) ListMyListings(ctx context.Context, _ *Empty) (*ListListingsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := h.listingSvc.ListMyListings(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListListingsResponse{Listings: MapDomainListingsToProto(listings)}, nil
}

func (h *MarketplaceHandler) DeleteListing(ctx context.Context, req *ListingIDRequest) (*Empty, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("listing_id", req.ListingID); err != nil {
		return nil, err
	}
	if err := h.listingSvc.DeleteListing(ctx, actor, req.ListingID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// Booking

func (h *MarketplaceHandler) RequestBooking(ctx context.Context, req *ListingIDRequest) (*BookingRequestResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("listing_id", req.ListingID); err != nil {
		return nil, err
	}
	br, err := h.bookingSvc.RequestBooking(ctx, userID, req.ListingID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingRequestResponse{Request: MapDomainRequestToProto(br)}, nil
}

func (h *MarketplaceHandler) AcceptRequest(ctx context.Context, req *RequestIDRequest) (*BookingRequestResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("request_id", req.RequestID); err != nil {
		return nil, err
	}
	br, err := h.bookingSvc.AcceptRequest(ctx, userID, req.RequestID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingRequestResponse{Request: MapDomainRequestToProto(br)}, nil
}

func (h *MarketplaceHandler) RejectRequest(ctx context.Context, req *RequestIDRequest) (*BookingRequestResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("request_id", req.RequestID); err != nil {
		return nil, err
	}
	br, err := h.bookingSvc.RejectRequest(ctx, userID, req.RequestID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingRequestResponse{Request: MapDomainRequestToProto(br)}, nil
}

func (h *MarketplaceHandler) GetRequest(ctx context.Context, req *RequestIDRequest) (*BookingRequestResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("request_id", req.RequestID); err != nil {
		return nil, err
	}
	br, err := h.bookingSvc.GetRequest(ctx, userID, req.RequestID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingRequestResponse{Request: MapDomainRequestToProto(br)}, nil
}

func (h *MarketplaceHandler) ListIncomingRequests(ctx context.Context, _ *Empty) (*ListRequestsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := h.bookingSvc.ListIncoming(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListRequestsResponse{Requests: MapDomainRequestsToProto(reqs)}, nil
}

func (h *MarketplaceHandler) ListOutgoingRequests(ctx context.Context, _ *Empty) (*ListRequestsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := h.bookingSvc.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListRequestsResponse{Requests: MapDomainRequestsToProto(reqs)}, nil
}

func (h *MarketplaceHandler) GetChatEligibility(ctx context.Context, req *RequestIDRequest) (*ChatEligibilityResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("request_id", req.RequestID); err != nil {
		return nil, err
	}
	// Only the parties may learn the state of a request.
	if _, err := h.bookingSvc.GetRequest(ctx, userID, req.RequestID); err != nil {
		return nil, toStatus(err)
	}
	ok, err := h.bookingSvc.DeriveChatEligibility(ctx, req.RequestID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ChatEligibilityResponse{Eligible: ok}, nil
}

// Negotiation channel

func (h *MarketplaceHandler) PostMessage(ctx context.Context, req *PostMessageRequest) (*MessageResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("request_id", req.RequestID); err != nil {
		return nil, err
	}
	msg, err := h.channelSvc.PostMessage(ctx, userID, req.RequestID, req.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: MapDomainMessageToProto(msg)}, nil
}

func (h *MarketplaceHandler) ListMessages(ctx context.Context, req *RequestIDRequest) (*ListMessagesResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("request_id", req.RequestID); err != nil {
		return nil, err
	}
	msgs, err := h.channelSvc.ListMessages(ctx, userID, req.RequestID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := make([]*Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, MapDomainMessageToProto(&msgs[i]))
	}
	return &ListMessagesResponse{Messages: out}, nil
}

// Notifications

func (h *MarketplaceHandler) GetNotifications(ctx context.Context, req *GetNotificationsRequest) (*GetNotificationsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	notes, total, err := h.noteSvc.GetNotifications(ctx, userID, req.Page, req.PageSize)
	if err != nil {
		return nil, toStatus(err)
	}
	out := make([]*Notification, 0, len(notes))
	for i := range notes {
		out = append(out, MapDomainNotificationToProto(&notes[i]))
	}
	return &GetNotificationsResponse{Notifications: out, TotalCount: total}, nil
}

func (h *MarketplaceHandler) MarkNotificationRead(ctx context.Context, req *MarkNotificationReadRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("notification_id", req.NotificationID); err != nil {
		return nil, err
	}
	if err := h.noteSvc.MarkAsRead(ctx, userID, req.NotificationID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// Listing images

func (h *MarketplaceHandler) GetUploadUrl(ctx context.Context, req *GetUploadURLRequest) (*GetUploadURLResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("listing_id", req.ListingID); err != nil {
		return nil, err
	}
	url, key, expiresAt, err := h.imageSvc.GetUploadURL(ctx, userID, req.ListingID, req.Filename, req.ContentType)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetUploadURLResponse{UploadURL: url, Key: key, ExpiresAt: expiresAt}, nil
}

func (h *MarketplaceHandler) ConfirmImage(ctx context.Context, req *ConfirmImageRequest) (*ListingResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("listing_id", req.ListingID); err != nil {
		return nil, err
	}
	if err := required("key", req.Key); err != nil {
		return nil, err
	}
	listing, err := h.imageSvc.ConfirmImage(ctx, userID, req.ListingID, req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListingResponse{Listing: MapDomainListingToProto(listing)}, nil
}

func (h *MarketplaceHandler) GetDownloadUrl(ctx context.Context, req *GetDownloadURLRequest) (*GetDownloadURLResponse, error) {
	if err := required("key", req.Key); err != nil {
		return nil, err
	}
	url, expiresAt, err := h.imageSvc.GetDownloadURL(ctx, req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetDownloadURLResponse{DownloadURL: url, ExpiresAt: expiresAt}, nil
}
