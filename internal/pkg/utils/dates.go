package utils

import (
	"qlinme-service/internal/pkg/constvars"
	"time"
)

var dateLayouts = map[string]string{
	constvars.DateFormatDMY:  "02/01/2006",
	constvars.DateFormatISO:  "2006-01-02",
	constvars.DateFormatRAMQ: "060102",
}

// IsValidDate reports whether value parses with one of the formats and
// formats back to exactly the same text.
func IsValidDate(value string, formats ...string) bool {
	for _, format := range formats {
		if isValidDateFormat(value, format) {
			return true
		}
	}
	return false
}

func isValidDateFormat(value, format string) bool {
	layout, ok := dateLayouts[format]
	if !ok {
		return false
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return false
	}
	return parsed.Format(layout) == value
}

// FormatDate renders t with one of the supported date formats.
func FormatDate(t time.Time, format string) string {
	layout, ok := dateLayouts[format]
	if !ok {
		return ""
	}
	return t.Format(layout)
}
