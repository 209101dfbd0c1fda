// Package device implements the HTTP transport, payload sanitizer, and state
// model for a single Wi-Fi fan device.
//
// # Device Protocol
//
// The fan firmware exposes two plain HTTP GET endpoints on the local network:
//
//	GET {base}/getStatus           full status query
//	GET {base}/?act=speed&arg1=3   command: set one field
//
// Both respond with a JSON object carrying the device's complete state:
//
//	{"power":1,"speed":3,"swing":0}
//
// An HTTP 400 signals a device-side error; the body carries an "errmsg"
// field which this package surfaces through DeviceError.DeviceMessage.
//
// The channel is plain, unauthenticated HTTP; the firmware offers nothing
// stronger.
//
// # Payload Corruption
//
// The firmware's JSON formatter is buggy: responses can contain spurious
// backslash escape sequences (\n, \', \", \&, \r, \t, \b, \f) in positions
// where they are not valid JSON, plus embedded control bytes in the range
// U+0000-U+0019. Sanitize repairs both before parsing; DecodeStatus applies
// it automatically. A body that remains unparsable after sanitization
// produces a parse DeviceError, which callers treat as a recoverable fetch
// failure.
//
// # Errors
//
// All failures are reported as *DeviceError with a typed category (network,
// timeout, connection refused, HTTP, parse, validation, busy). Use the Is*
// predicates or errors.As to branch on the category, and IsRetryable to
// decide whether retrying makes sense.
//
// # Thread Safety
//
// Client is stateless between calls and safe for concurrent use. State is a
// value type; copies are independent.
package device
