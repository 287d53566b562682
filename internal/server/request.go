package server

import (
	"bytes"
	"encoding/json"
	"strings"
)

// idValue accepts an id sent either as a JSON string or as a JSON number.
type idValue string

func (v *idValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = idValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = idValue(n.String())
	return nil
}

func (v *idValue) ptr() *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func idStrings(ids []idValue) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
