package config

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

/* ------------------------------------------------------------------ *
|  Timeout                                                            |
* -------------------------------------------------------------------*/

// Timeout is an optional number of seconds.  In TOML it is either a
// non-negative integer or `false`, which disables it.
type Timeout struct {
	seconds uint32
	set     bool
}

// TimeoutSeconds returns an enabled timeout.
func TimeoutSeconds(s uint32) Timeout { return Timeout{seconds: s, set: true} }

// NoTimeout returns a disabled timeout.
func NoTimeout() Timeout { return Timeout{} }

// Seconds reports the value and whether the timeout is enabled.
func (t Timeout) Seconds() (uint32, bool) { return t.seconds, t.set }

// Duration reports the value as a time.Duration and whether it is enabled.
func (t Timeout) Duration() (time.Duration, bool) {
	return time.Duration(t.seconds) * time.Second, t.set
}

func (t Timeout) String() string {
	if !t.set {
		return "false"
	}
	return strconv.FormatUint(uint64(t.seconds), 10)
}

func (t *Timeout) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case bool:
		if v {
			return fmt.Errorf("invalid value: boolean `true`, expected a non-negative integer or false")
		}
		*t = NoTimeout()
		return nil
	case int64:
		if v >= 0 && v <= math.MaxUint32 {
			*t = TimeoutSeconds(uint32(v))
			return nil
		}
	}
	return fmt.Errorf("invalid type: expected a non-negative integer or false")
}

func (t Timeout) MarshalTOML() ([]byte, error) {
	return []byte(t.String()), nil
}

/* ------------------------------------------------------------------ *
|  Interval                                                           |
* -------------------------------------------------------------------*/

// Interval is a positive number of seconds.
type Interval uint32

func (i Interval) Duration() time.Duration {
	return time.Duration(i) * time.Second
}

func (i *Interval) UnmarshalTOML(data any) error {
	v, ok := data.(int64)
	if !ok || v < 0 || v > math.MaxUint32 {
		return fmt.Errorf("invalid type: %s, expected an integer 1 or greater", describe(data))
	}
	if v == 0 {
		return fmt.Errorf("invalid value: integer `0`, expected an integer 1 or greater")
	}
	*i = Interval(v)
	return nil
}

func (i Interval) MarshalTOML() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(i), 10)), nil
}

/* ------------------------------------------------------------------ *
|  StringSet                                                          |
* -------------------------------------------------------------------*/

// StringSet is a sorted set of strings.  The zero value is empty.
type StringSet struct {
	values []string
}

// NewStringSet sorts values and drops duplicates.
func NewStringSet(values ...string) StringSet {
	out := make([]string, len(values))
	copy(out, values)
	slices.Sort(out)
	return StringSet{values: slices.Compact(out)}
}

// Values returns a copy of the members in sorted order.
func (s StringSet) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

func (s StringSet) Contains(v string) bool {
	_, found := slices.BinarySearch(s.values, v)
	return found
}

func (s StringSet) Len() int { return len(s.values) }

func (s *StringSet) UnmarshalTOML(data any) error {
	items, ok := data.([]any)
	if !ok {
		return fmt.Errorf("invalid type: %s, expected a sequence of strings", describe(data))
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return fmt.Errorf("invalid type: %s, expected a string", describe(item))
		}
		values = append(values, str)
	}
	*s = NewStringSet(values...)
	return nil
}

func (s StringSet) MarshalTOML() ([]byte, error) {
	quoted := make([]string, len(s.values))
	for i, v := range s.values {
		quoted[i] = quote(v)
	}
	return []byte("[" + strings.Join(quoted, ", ") + "]"), nil
}

/* ------------------------------------------------------------------ *
|  Helpers                                                            |
* -------------------------------------------------------------------*/

// describe names the TOML type of a decoded value for error messages.
func describe(data any) string {
	switch v := data.(type) {
	case bool:
		return fmt.Sprintf("boolean `%t`", v)
	case int64:
		return fmt.Sprintf("integer `%d`", v)
	case float64:
		return fmt.Sprintf("floating point `%v`", v)
	case string:
		return fmt.Sprintf("string %s", quote(v))
	case []any:
		return "sequence"
	case map[string]any:
		return "map"
	case time.Time:
		return "datetime"
	default:
		return fmt.Sprintf("%T", data)
	}
}

// quote renders s as a TOML basic string.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
