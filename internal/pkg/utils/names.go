package utils

import (
	"fmt"
	"regexp"
	"strconv"

	"qlinme-service/internal/pkg/constvars"
)

var (
	noSpecialCharactersRegex = regexp.MustCompile(constvars.NamePattern)
	validRAMQRegex           = regexp.MustCompile(constvars.RAMQPattern)
)

func HasNoSpecialCharacters(value string) bool {
	return noSpecialCharactersRegex.MatchString(value)
}

// IsValidRAMQ checks the shape of a health-insurance number and the birth
// date it embeds. Months above 50 mark female holders.
func IsValidRAMQ(value string) bool {
	if !validRAMQRegex.MatchString(value) {
		return false
	}
	dateStr := value[4 : len(value)-2]
	year, _ := strconv.Atoi(dateStr[0:2])
	month, _ := strconv.Atoi(dateStr[2:4])
	day, _ := strconv.Atoi(dateStr[4:6])
	if month > 50 {
		month -= 50
	}
	return IsValidDate(fmt.Sprintf("%02d%02d%02d", year, month, day), constvars.DateFormatRAMQ)
}
