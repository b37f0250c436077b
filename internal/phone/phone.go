package phone

import (
	"regexp"

	"github.com/nyaruka/phonenumbers"
)

// Signup is limited to Indian mobile numbers in E.164 form.
var indianMobile = regexp.MustCompile(`^\+91\d{10}$`)

const InvalidMessage = "Invalid mobile number. Must be an Indian mobile number in E.164 format (e.g. +919876543210)"

// Valid reports whether s is an E.164 Indian number that libphonenumber
// also considers a possible number for the region.
func Valid(s string) bool {
	if !indianMobile.MatchString(s) {
		return false
	}
	num, err := phonenumbers.Parse(s, "IN")
	if err != nil {
		return false
	}
	return num.GetCountryCode() == 91 && phonenumbers.IsPossibleNumber(num)
}
