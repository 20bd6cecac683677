package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Caller errors, raised before any network I/O.
const (
	// ErrCodeInvalidArgument indicates a call parameter violates a precondition.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidConfig indicates a configuration struct failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Exchange errors
const (
	// ErrCodeTransport indicates the HTTP exchange itself failed (connect, reset, DNS).
	ErrCodeTransport ErrorCode = "TRANSPORT_FAILED"
	// ErrCodeTimeout indicates the HTTP exchange exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Proxy errors
const (
	// ErrCodeProduceFailed indicates the proxy rejected a produce call.
	ErrCodeProduceFailed ErrorCode = "PRODUCE_FAILED"
	// ErrCodeConsumeFailed indicates the proxy rejected a consume call.
	ErrCodeConsumeFailed ErrorCode = "CONSUME_FAILED"
	// ErrCodeInvalidResponse indicates the proxy answered with a body that could not be interpreted.
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
)

var transportCodes = map[ErrorCode]bool{
	ErrCodeTransport: true,
	ErrCodeTimeout:   true,
}

// IsTransportCode returns true if the code describes a failed exchange
// rather than an answer from the proxy.
func IsTransportCode(code ErrorCode) bool {
	return transportCodes[code]
}
