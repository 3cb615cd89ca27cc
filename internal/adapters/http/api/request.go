package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// number accepts a JSON number or a numeric string, as form-driven clients send both.
type number struct {
	set   bool
	value float64
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		n.set, n.value = true, v
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.set, n.value = true, v
	return nil
}

// Int returns the value truncated to an integer and whether it was whole.
func (n number) Int() (int, bool) {
	i := int(n.value)
	return i, float64(i) == n.value
}
