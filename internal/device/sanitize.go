package device

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The fan firmware builds its JSON responses with a string formatter that
// leaks backslash escape sequences into positions where encoding/json does
// not accept them, and occasionally embeds raw control bytes in the body.
// A typical corrupted response looks like:
//
//	{"power":1,\n"speed":3,\t"swing":0}
//
// Sanitize repairs the known corruption before the body reaches the JSON
// parser. Callers should always sanitize a raw device body before decoding.

// escapeFixer normalizes the escape sequences the firmware is known to emit:
// \n, \', \", \&, \r, \t, \b, \f.
//
// The whitespace-style sequences (\n, \r, \t, \b, \f) are rewritten to their
// intended literal control character; the control-byte strip pass then
// removes them, which makes the sequences harmless wherever the formatter
// leaked them. The escapes that are simply invalid JSON (\', \&) are
// rewritten to their intended literal, which the parser accepts inside
// strings. \" is already a canonical escape the parser accepts and passes
// through untouched (rewriting it would terminate strings early).
var escapeFixer = strings.NewReplacer(
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\b`, "\b",
	`\f`, "\f",
	`\'`, "'",
	`\&`, "&",
)

// Sanitize repairs a raw response body from the fan firmware.
//
// It applies two passes in order:
//  1. Normalize each known bad escape sequence (see escapeFixer).
//  2. Strip all control bytes in the range U+0000-U+0019 (the firmware
//     embeds these in the body; none of them are meaningful in the payload).
//
// The returned slice is always a fresh copy.
func Sanitize(raw []byte) []byte {
	fixed := escapeFixer.Replace(string(raw))

	out := make([]byte, 0, len(fixed))
	for i := 0; i < len(fixed); i++ {
		if fixed[i] <= 0x19 {
			continue
		}
		out = append(out, fixed[i])
	}
	return out
}

// statusPayload is the raw decoded shape of a device response. On error
// responses (HTTP 400) the firmware sends only errmsg.
type statusPayload struct {
	Power  *int   `json:"power"`
	Speed  *int   `json:"speed"`
	Swing  *int   `json:"swing"`
	ErrMsg string `json:"errmsg"`
}

// DecodeStatus sanitizes and parses a raw device response body into a State.
// Returns a parse DeviceError if the body is unparsable even after
// sanitization, or if the required integer fields are missing.
func DecodeStatus(raw []byte) (State, error) {
	clean := Sanitize(raw)

	var payload statusPayload
	if err := json.Unmarshal(clean, &payload); err != nil {
		return State{}, NewParseError("failed to parse device response", err)
	}

	if payload.Power == nil || payload.Speed == nil || payload.Swing == nil {
		return State{}, NewParseError(
			fmt.Sprintf("device response missing state fields: %s", string(clean)), nil)
	}

	return State{
		Power: *payload.Power,
		Speed: *payload.Speed,
		Swing: *payload.Swing,
	}, nil
}

// DecodeErrorMessage extracts the firmware's errmsg field from an error
// response body. Returns an empty string if the body carries no usable
// message.
func DecodeErrorMessage(raw []byte) string {
	clean := Sanitize(raw)

	var payload statusPayload
	if err := json.Unmarshal(clean, &payload); err != nil {
		return ""
	}
	return payload.ErrMsg
}
