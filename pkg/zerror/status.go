package zerror

// Status is the transport-agnostic category of a ZError.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusNotFound
	StatusBadRequest
	StatusValidationFailed
	StatusConflict
	StatusInternalServerError
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusValidationFailed:
		return "VALIDATION_FAILED"
	case StatusConflict:
		return "CONFLICT"
	case StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "UNKNOWN"
	}
}
