package project

import (
	"bytes"
	"encoding/json"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/hookwatch/internal/history"
)

// Response is a sealed interface over the shapes a stored response can take.
// Only Absent, Scalar, Text and Structured implement it.
type Response interface {
	response()
}

// Absent is a missing or null response.
type Absent struct{}

func (Absent) response() {}

// Scalar is a JSON number or bool, kept in its raw form.
type Scalar struct {
	Raw json.RawMessage
}

func (Scalar) response() {}

// Text is a JSON string, already unquoted.
type Text string

func (Text) response() {}

// Structured is a JSON object or array.
type Structured struct {
	Raw json.RawMessage
}

func (Structured) response() {}

// Classify determines the Response variant of a raw JSON value.
// Invalid JSON is classified as Scalar so that it renders as its raw text.
func Classify(raw json.RawMessage) Response {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Absent{}
	}
	switch trimmed[0] {
	case '{', '[':
		return Structured{Raw: trimmed}
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Scalar{Raw: trimmed}
		}
		return Text(s)
	default:
		return Scalar{Raw: trimmed}
	}
}

// NormalizeResponse renders the response cell of the detail view.
//
//	error present                 -> "Error: " + error
//	structured response           -> pretty-printed JSON
//	text that parses as JSON      -> pretty-printed parse result
//	text that does not parse      -> the text unchanged
//	scalar                        -> its textual form
//	absent                        -> "-"
func NormalizeResponse(rec history.DeliveryRecord) string {
	if rec.Error != "" {
		return "Error: " + rec.Error
	}
	switch r := Classify(rec.Response).(type) {
	case Structured:
		if out, ok := prettyJSON(r.Raw); ok {
			return out
		}
		return string(r.Raw)
	case Text:
		if out, ok := prettyJSON([]byte(r)); ok {
			return out
		}
		return norm.NFC.String(string(r))
	case Scalar:
		return string(r.Raw)
	default:
		return Placeholder
	}
}

// NormalizePayload renders the request body: pretty-printed JSON, "{}" when
// absent, or the raw bytes when they are not valid JSON.
func NormalizePayload(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}"
	}
	if out, ok := prettyJSON(trimmed); ok {
		return out
	}
	return string(raw)
}

// prettyJSON indents src by two spaces, preserving key order. Escaped
// string literals are decoded, so "caf\u00e9" prints as "café".
// ok is false when src is not a single valid JSON value.
func prettyJSON(src []byte) (string, bool) {
	src = bytes.TrimSpace(src)
	if len(src) == 0 || !json.Valid(src) {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, src, "", "  "); err != nil {
		return "", false
	}
	return string(unescapeStrings(buf.Bytes())), true
}

// unescapeStrings re-encodes every string literal in valid JSON that carries
// an escape sequence, leaving only the escapes JSON requires.
func unescapeStrings(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		if src[i] != '"' {
			out = append(out, src[i])
			i++
			continue
		}
		end, escaped := i+1, false
		for end < len(src) && src[end] != '"' {
			if src[end] == '\\' {
				escaped = true
				end++
			}
			end++
		}
		if end >= len(src) {
			return append(out, src[i:]...)
		}
		lit := src[i : end+1]
		if escaped {
			if re, ok := reencodeString(lit); ok {
				lit = re
			}
		}
		out = append(out, lit...)
		i = end + 1
	}
	return out
}

func reencodeString(lit []byte) ([]byte, bool) {
	var s string
	if err := json.Unmarshal(lit, &s); err != nil {
		return nil, false
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, false
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), true
}
