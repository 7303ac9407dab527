package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The server is loose about numeric types: spreadsheet imports produce
// "3" where the database produces 3. These types accept both.

// FlexInt decodes a JSON number, numeric string or null into an int.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s, null := unquote(b)
	if null || s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = FlexInt(f)
	return nil
}

func (n FlexInt) String() string { return strconv.Itoa(int(n)) }

// FlexFloat decodes a JSON number, numeric string or null into a float64.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s, null := unquote(b)
	if null || s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Float returns the value as a float64.
func (f FlexFloat) Float() float64 { return float64(f) }

// FlexString decodes a JSON string or number into a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(b []byte) error {
	v, null := unquote(b)
	if null {
		*s = ""
		return nil
	}
	*s = FlexString(v)
	return nil
}

func (s FlexString) String() string { return string(s) }

// OptFloat is a float that may be absent. It encodes as null when unset.
type OptFloat struct {
	Value float64
	Valid bool
}

// Float returns an OptFloat holding v.
func Float(v float64) OptFloat { return OptFloat{Value: v, Valid: true} }

// MarshalJSON implements json.Marshaler.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptFloat) UnmarshalJSON(b []byte) error {
	s, null := unquote(b)
	if null || s == "" {
		*o = OptFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*o = OptFloat{Value: v, Valid: true}
	return nil
}

// unquote strips JSON string quotes. The second result reports a JSON null.
func unquote(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", true
	}
	if len(b) >= 2 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return strings.TrimSpace(s), false
		}
	}
	return string(b), false
}
