package grpc

import (
	"time"

	"farmhub-backend/internal/domain"
)

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func MapDomainListingToProto(l *domain.Listing) *Listing {
	if l == nil {
		return nil
	}
	return &Listing{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		OwnerName:   l.OwnerName,
		Name:        l.Name,
		Kind:        string(l.Kind),
		Price:       l.Price,
		Location:    l.Location,
		Description: l.Description,
		ImageRef:    l.ImageRef,
		Status:      string(l.Status),
		CreatedOn:   millis(l.CreatedOn),
	}
}

func MapDomainListingsToProto(ls []domain.Listing) []*Listing {
	out := make([]*Listing, 0, len(ls))
	for i := range ls {
		out = append(out, MapDomainListingToProto(&ls[i]))
	}
	return out
}

func MapDomainRequestToProto(r *domain.BookingRequest) *BookingRequest {
	if r == nil {
		return nil
	}
	return &BookingRequest{
		ID:            r.ID,
		ListingID:     r.ListingID,
		ListingName:   r.ListingName,
		ListingImage:  r.ListingImage,
		Kind:          string(r.Kind),
		OwnerID:       r.OwnerID,
		RequesterID:   r.RequesterID,
		RequesterName: r.RequesterName,
		Status:        string(r.Status),
		CreatedOn:     millis(r.CreatedOn),
		UpdatedOn:     millis(r.UpdatedOn),
	}
}

func MapDomainRequestsToProto(rs []domain.BookingRequest) []*BookingRequest {
	out := make([]*BookingRequest, 0, len(rs))
	for i := range rs {
		out = append(out, MapDomainRequestToProto(&rs[i]))
	}
	return out
}

func MapDomainMessageToProto(m *domain.Message) *Message {
	if m == nil {
		return nil
	}
	return &Message{
		ID:        m.ID,
		RequestID: m.RequestID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Seq:       m.Seq,
		SentAt:    millis(m.SentAt),
	}
}

func MapDomainNotificationToProto(n *domain.Notification) *Notification {
	if n == nil {
		return nil
	}
	return &Notification{
		ID:         n.ID,
		Title:      n.Title,
		Message:    n.Message,
		IsRead:     n.IsRead,
		Attributes: n.Attributes,
		CreatedOn:  millis(n.CreatedOn),
	}
}
