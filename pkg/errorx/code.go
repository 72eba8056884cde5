package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Ticket codes
	EventFull      Code = 200001
	TierNotAllowed Code = 200002
	EventNotOpen   Code = 200003
	NotOwner       Code = 200004
	NotPaid        Code = 200005

	// Check-in codes
	InvalidCode      Code = 300001
	InvalidSignature Code = 300002
	Mismatch         Code = 300003
)
