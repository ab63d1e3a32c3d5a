package roblox

import "encoding/json"

// Decoded is a tagged response body: JSON when the upstream sent valid
// JSON, raw text otherwise. Decoding never fails.
type Decoded struct {
	JSON json.RawMessage
	Text string
}

// Decode classifies a response body.
func Decode(body []byte) Decoded {
	if len(body) > 0 && json.Valid(body) {
		return Decoded{JSON: json.RawMessage(body)}
	}
	return Decoded{Text: string(body)}
}

// IsJSON reports whether the body decoded as JSON.
func (d Decoded) IsJSON() bool {
	return d.JSON != nil
}

// Value returns the decoded JSON value, or the raw text.
func (d Decoded) Value() interface{} {
	if d.JSON != nil {
		var v interface{}
		if err := json.Unmarshal(d.JSON, &v); err == nil {
			return v
		}
	}
	return d.Text
}
