package entity

import "time"

// TimestampLayout ISO-8601 con milisegundos en UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp formatea en UTC con precisión de milisegundos.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// TruncateTimestamp lleva t a UTC y descarta lo que esté por debajo del milisegundo.
func TruncateTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ParseTimestamp acepta cualquier instante RFC 3339 (con o sin fracción) y lo normaliza.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return TruncateTimestamp(t), nil
}
