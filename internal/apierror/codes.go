package apierror

// Error type URIs following the urn:cradle:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:cradle:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:cradle:error:not_found"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:cradle:error:rate_limit"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:cradle:error:unauthorized"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:cradle:error:internal"

	// TypeInvalidUUID indicates an invalid UUID format in request (400)
	TypeInvalidUUID = "urn:cradle:error:invalid_uuid"

	// TypeFutureTimestamp indicates a timestamp too far in the future (400)
	TypeFutureTimestamp = "urn:cradle:error:future_timestamp"

	// TypeInvalidActivity indicates an activity that breaks a cross-field rule (400)
	TypeInvalidActivity = "urn:cradle:error:invalid_activity"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:cradle:error:bad_request"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation      = "Validation Error"
	TitleNotFound        = "Resource Not Found"
	TitleRateLimit       = "Rate Limit Exceeded"
	TitleUnauthorized    = "Authentication Required"
	TitleInternal        = "Internal Server Error"
	TitleInvalidUUID     = "Invalid UUID Format"
	TitleFutureTimestamp = "Future Timestamp Not Allowed"
	TitleBadRequest      = "Bad Request"
	TitleInvalidActivity = "Invalid Activity"
)
