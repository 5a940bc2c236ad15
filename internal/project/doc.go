// Package project maps delivery records to display rows and detail views.
//
// The interesting part is response normalization. The gateway reports the
// webhook endpoint's response body as whatever it received, so a stored
// response may be an object, an array, a JSON-encoded string, plain text, a
// number, a bool, or missing entirely. Classify turns the raw JSON into one
// of four Response variants, and NormalizeResponse renders them with a fixed
// priority: an error message wins over any response, structured values are
// pretty-printed, text that itself contains JSON is parsed and
// pretty-printed, other text is shown verbatim, scalars print as-is and a
// missing response shows "-".
//
// Normalization never fails. Anything unexpected falls back to the raw text
// of the original value.
package project
