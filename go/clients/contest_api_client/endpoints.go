package contest_api_client

const (
	// Local development server
	DefaultBaseURL = "http://localhost:8080"

	// API Endpoints
	ContestsEndpoint = "/api/contests"

	// Headers
	UserIDHeader    = "userid"
	JsonHeader      = "Content-Type"
	JsonContentType = "application/json"
)
