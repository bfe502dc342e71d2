package grpc

// Wire messages of the marketplace API. Timestamps are Unix milliseconds.

type Listing struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	OwnerName   string  `json:"owner_name"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	ImageRef    string  `json:"image_ref"`
	Status      string  `json:"status"`
	CreatedOn   int64   `json:"created_on"`
}

type BookingRequest struct {
	ID            string `json:"id"`
	ListingID     string `json:"listing_id"`
	ListingName   string `json:"listing_name"`
	ListingImage  string `json:"listing_image"`
	Kind          string `json:"kind"`
	OwnerID       string `json:"owner_id"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	Status        string `json:"status"`
	CreatedOn     int64  `json:"created_on"`
	UpdatedOn     int64  `json:"updated_on"`
}

type Message struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	SenderID  string `json:"sender_id"`
	Text      string `json:"text"`
	Seq       int64  `json:"seq"`
	SentAt    int64  `json:"sent_at"`
}

type Notification struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedOn  int64             `json:"created_on"`
}

type Empty struct{}

type CreateListingRequest struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
}

type ListingIDRequest struct {
	ListingID string `json:"listing_id"`
}

type ListingResponse struct {
	Listing *Listing `json:"listing"`
}

type ListListingsRequest struct {
	Kind   string `json:"kind,omitempty"`
	Status string `json:"status,omitempty"`
}

type ListListingsResponse struct {
	Listings []*Listing `json:"listings"`
}

type RequestIDRequest struct {
	RequestID string `json:"request_id"`
}

type BookingRequestResponse struct {
	Request *BookingRequest `json:"request"`
}

type ListRequestsResponse struct {
	Requests []*BookingRequest `json:"requests"`
}

type ChatEligibilityResponse struct {
	Eligible bool `json:"eligible"`
}

type PostMessageRequest struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

type MessageResponse struct {
	Message *Message `json:"message"`
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type GetNotificationsRequest struct {
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

type GetNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	TotalCount    int32           `json:"total_count"`
}

type MarkNotificationReadRequest struct {
	NotificationID string `json:"notification_id"`
}

type GetUploadURLRequest struct {
	ListingID   string `json:"listing_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type GetUploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

type ConfirmImageRequest struct {
	ListingID string `json:"listing_id"`
	Key       string `json:"key"`
}

type GetDownloadURLRequest struct {
	Key string `json:"key"`
}

type GetDownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
	ExpiresAt   int64  `json:"expires_at"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
