package common

// AuthorizationHeaderName carries the pre-shared secret on HTTP requests and
// gRPC metadata.
const AuthorizationHeaderName = "authorization"

// DateLayout is the calendar date format of an entry's creation day.
const DateLayout = "2006-01-02"
