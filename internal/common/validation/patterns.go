package validation

import (
	"fmt"
	"regexp"
)

const (
	AlphanumericPattern = `^[A-Za-z0-9]+$`
	AlphabeticPattern   = `^[A-Za-z]+$`
	RollNumberPattern   = `^\d{4}[15]A[A-Za-z0-9]{4}$`
	DatePattern         = `^\d{4}-\d{2}-\d{2}$`

	DefaultEmailDomain = "vnrvjiet.in"
)

var rollNumberRe = regexp.MustCompile(RollNumberPattern)

// CollegeEmailPattern returns the address pattern for a college mail domain.
func CollegeEmailPattern(domain string) string {
	return `^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(domain) + `$`
}

// CollegeEmailMessage is the UI copy shown when an address is outside domain.
func CollegeEmailMessage(domain string) string {
	return fmt.Sprintf("Please enter a valid example@%s email.", domain)
}

// IsRollNumber validates roll number format
func IsRollNumber(s string) bool {
	return rollNumberRe.MatchString(s)
}

// IsCollegeEmail validates an address against the college domain
func IsCollegeEmail(email, domain string) bool {
	return regexp.MustCompile(CollegeEmailPattern(domain)).MatchString(email)
}
