// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package assistant

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ErrFormat marks a webhook reply that carried no recognizable text.
// Callers substitute FallbackUnrecognized and keep the conversation going.
var ErrFormat = errors.New("assistant reply format not recognized")

// Canned replies for the two degenerate normalization outcomes.
const (
	FallbackUnrecognized = "I received your message, but the response format was not recognized."
	FallbackEmpty        = "I received your message!"
)

// replyFields are tried in order when extracting text from an object reply.
// Automation flows are inconsistent about which field carries the answer.
var replyFields = []string{"reply", "message", "response", "text", "output", "result"}

// Normalize flattens a decoded webhook reply into displayable text.
//
// Extraction order: the known reply fields, then a bare string value, then
// the nested shapes some flows emit (body, json.reply, data). The extracted
// text is then unwrapped (quotes, braces, brackets, doubly-encoded JSON)
// and unescaped. Returns ErrFormat when nothing text-like is found.
func Normalize(data interface{}) (string, error) {
	text, ok := extractText(data)
	if !ok {
		return "", ErrFormat
	}

	text = strings.TrimSpace(text)
	text = stripQuotes(text)
	text = stripBraces(text)
	text = stripBrackets(text)
	text = unescape(text)

	if text == "" {
		return FallbackEmpty, nil
	}
	return text, nil
}

// extractText pulls the first text-like value out of the reply.
func extractText(data interface{}) (string, bool) {
	switch v := data.(type) {
	case string:
		if v != "" {
			return v, true
		}
	case map[string]interface{}:
		for _, field := range replyFields {
			if s, ok := scalarText(v[field]); ok {
				return s, true
			}
		}
		// Nested shapes: body as string, json.reply, data as string.
		if s, ok := v["body"].(string); ok && s != "" {
			return s, true
		}
		if nested, ok := v["json"].(map[string]interface{}); ok {
			if s, ok := scalarText(nested["reply"]); ok {
				return s, true
			}
		}
		if s, ok := v["data"].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// scalarText renders a scalar reply value as text. Empty strings, zero
// numbers and false are treated as absent, matching how the dashboard
// always skipped falsy fields.
func scalarText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t, true
		}
	case float64:
		if t != 0 {
			return strconv.FormatFloat(t, 'f', -1, 64), true
		}
	case bool:
		if t {
			return "true", true
		}
	}
	return "", false
}

// stripQuotes removes one layer of wrapping double or single quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// stripBraces handles a reply that is itself a JSON object: doubly-encoded
// replies are parsed and re-extracted, anything else loses its braces.
func stripBraces(s string) string {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return s
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		for _, field := range []string{"reply", "message", "response"} {
			if inner, ok := scalarText(parsed[field]); ok {
				return inner
			}
		}
		return s
	}
	return strings.TrimSpace(s[1 : len(s)-1])
}

// stripBrackets handles a reply that is a JSON array: the first element
// wins; malformed arrays just lose their brackets.
func stripBrackets(s string) string {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return s
	}
	var parsed []interface{}
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		if len(parsed) > 0 {
			if inner, ok := scalarText(parsed[0]); ok {
				return inner
			}
		}
		return s
	}
	return strings.TrimSpace(s[1 : len(s)-1])
}

// unescape fixes literal escape sequences that survive double encoding.
var unescaper = strings.NewReplacer(
	`\n`, "\n",
	`\t`, " ",
	`\r`, "",
	`\"`, `"`,
	`\'`, "'",
)

func unescape(s string) string {
	return strings.TrimSpace(unescaper.Replace(s))
}
