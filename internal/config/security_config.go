// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
)

const (
	marketplacePrefix = "/farmhub.api.v1.Marketplace/"
	authPrefix        = "/farmhub.api.v1.AuthService/"
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Browsing - Public
	marketplacePrefix + "ListListings":   SecurityPublic,
	marketplacePrefix + "GetListing":     SecurityPublic,
	marketplacePrefix + "GetDownloadUrl": SecurityPublic,

	// Listings - Access Protected
	marketplacePrefix + "CreateListing":  SecurityAccess,
	marketplacePrefix + "ListMyListings": SecurityAccess,
	marketplacePrefix + "DeleteListing":  SecurityAccess,
	marketplacePrefix + "GetUploadUrl":   SecurityAccess,
	marketplacePrefix + "ConfirmImage":   SecurityAccess,

	// Booking - Access Protected
	marketplacePrefix + "RequestBooking":       SecurityAccess,
	marketplacePrefix + "AcceptRequest":        SecurityAccess,
	marketplacePrefix + "RejectRequest":        SecurityAccess,
	marketplacePrefix + "GetRequest":           SecurityAccess,
	marketplacePrefix + "ListIncomingRequests": SecurityAccess,
	marketplacePrefix + "ListOutgoingRequests": SecurityAccess,
	marketplacePrefix + "GetChatEligibility":   SecurityAccess,

	// Negotiation channel - Access Protected
	marketplacePrefix + "PostMessage":  SecurityAccess,
	marketplacePrefix + "ListMessages": SecurityAccess,

	// Notifications - Access Protected
	marketplacePrefix + "GetNotifications":     SecurityAccess,
	marketplacePrefix + "MarkNotificationRead": SecurityAccess,

	// AuthService - Refresh Protected
	authPrefix + "RefreshToken": SecurityRefresh,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
