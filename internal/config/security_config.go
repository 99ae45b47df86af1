package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Any valid access token
	SecurityAdmin                       // Access token carrying the admin role
)

const rentalServicePrefix = "/agrirent.v1.RentalService/"

// EndpointSecurityConfig maps gRPC methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"/grpc.health.v1.Health/Check": SecurityPublic,

	// Farmer and admin
	rentalServicePrefix + "GetAvailability":      SecurityAccess,
	rentalServicePrefix + "ApplySelection":       SecurityAccess,
	rentalServicePrefix + "SubmitRentalRequest":  SecurityAccess,
	rentalServicePrefix + "GetRentalRequest":     SecurityAccess,
	rentalServicePrefix + "CancelRentalRequest":  SecurityAccess,
	rentalServicePrefix + "ListMyRentalRequests": SecurityAccess,

	// Operator only
	rentalServicePrefix + "ApproveRentalRequest": SecurityAdmin,
	rentalServicePrefix + "RejectRentalRequest":  SecurityAdmin,
	rentalServicePrefix + "ConfirmPickup":        SecurityAdmin,
	rentalServicePrefix + "ConfirmReturn":        SecurityAdmin,
	rentalServicePrefix + "ListRentalRequests":   SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
