package utils

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// UnmarshalJSON5 decodes a JSON5 document (comments, trailing commas and unquoted keys allowed)
// into v, honoring the `json` struct tags and json.Unmarshaler implementations of v. Strings must
// be double quoted; single quotes are not supported.
func UnmarshalJSON5(data []byte, v interface{}) error {
	var raw interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return err
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "cannot normalize JSON5 document")
	}
	return json.Unmarshal(normalized, v)
}
