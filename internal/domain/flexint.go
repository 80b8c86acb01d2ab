package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt decodes from either a JSON number or a numeric string. Records
// written by the browser front end carry form values such as "25" verbatim.
// Fractions and values outside the int range are rejected with a
// *ValidationError.
type FlexInt int

func notWhole(raw string) error {
	return &ValidationError{Message: raw + " is not a whole number"}
}

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return notWhole(strconv.Quote(s))
		}
		*n = FlexInt(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f != math.Trunc(f) || f < math.MinInt || f >= -math.MinInt {
		return notWhole(string(b))
	}
	*n = FlexInt(int(f))
	return nil
}

func (n FlexInt) Int() int { return int(n) }
