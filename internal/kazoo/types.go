// SPDX-License-Identifier: MIT

package kazoo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Int64Flex handles JSON fields that can be "123" or 123. Crossbar is not
// consistent about numeric encoding across views.
type Int64Flex int64

func (v *Int64Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*v = 0
			return nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("int64flex: invalid string %q", s)
		}
		*v = Int64Flex(i)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("int64flex: invalid json value: %s", string(b))
	}
	i, err := n.Int64()
	if err != nil {
		return fmt.Errorf("int64flex: not int64: %s", n.String())
	}
	*v = Int64Flex(i)
	return nil
}

// Cursor is an opaque continuation token. Crossbar encodes it as a string or
// a number depending on the underlying view key; both forms are normalized
// to their text representation so equality checks stay meaningful.
type Cursor string

func (c *Cursor) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cursor(s)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("cursor: invalid json value: %s", string(b))
	}
	*c = Cursor(n.String())
	return nil
}
