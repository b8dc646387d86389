package errs

// Markers shared by the usecase layers to categorize failures
var (
	// Lookup errors
	ErrBookingNotFound = New("booking not found")
	ErrCarNotFound     = New("car not found")

	// Authorization errors
	ErrActorNotPermitted = New("actor not permitted for this transition")

	// Idempotency errors
	ErrIdempotencyKeyRequired = New("idempotency key required")
	ErrIdempotencyInProgress  = New("idempotency in progress")
	ErrIdempotencyCheckFailed = New("idempotency check failed")
	ErrDuplicateRequest       = New("idempotency key reused with a different request")

	// Operation errors
	ErrDatabaseOperationFailed = New("database operation failed")
	ErrCacheOperationFailed    = New("cache operation failed")
)
