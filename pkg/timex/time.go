// Package timex provides a database and JSON friendly time type
// Package timex 提供适用于数据库与 JSON 的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout is the wire format used for JSON output (RFC 3339 with milliseconds, UTC)
// Layout JSON 输出格式（RFC 3339，毫秒精度，UTC）
const Layout = "2006-01-02T15:04:05.000Z07:00"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time wraps time.Time with gorm Scanner/Valuer and JSON support
// Time 封装 time.Time，实现 gorm Scanner/Valuer 与 JSON
type Time time.Time

// Now returns the current UTC time truncated to milliseconds so it survives a storage round trip
// Now 返回截断到毫秒的当前 UTC 时间，保证存取前后一致
func Now() Time {
	return Time(time.Now().UTC().Truncate(time.Millisecond))
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) String() string {
	return time.Time(t).UTC().Format(Layout)
}

// MarshalJSON writes null for the zero time
// MarshalJSON 零值输出 null
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Time{}
		return nil
	}
	parsed, err := parse(s)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t).UTC(), nil
}

// Scan implements sql.Scanner
func (t *Time) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(v.UTC())
	case string:
		parsed, err := parse(v)
		if err != nil {
			return err
		}
		*t = Time(parsed)
	case []byte:
		parsed, err := parse(string(v))
		if err != nil {
			return err
		}
		*t = Time(parsed)
	case int64:
		*t = Time(time.UnixMilli(v).UTC())
	default:
		return fmt.Errorf("timex: cannot scan %T into Time", value)
	}
	return nil
}

// GormDataType lets each dialect pick its native timestamp column
// GormDataType 由各数据库方言选择原生时间列类型
func (Time) GormDataType() string {
	return "time"
}

func parse(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range parseLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
