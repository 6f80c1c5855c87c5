// File: internal/mailbox/otp.go
package mailbox

import "regexp"

// codePattern matches a verification code as a whole token of 4 to 8 digits.
// The word boundaries keep it from slicing a truncated piece out of a longer
// number such as a phone number.
var codePattern = regexp.MustCompile(`\b\d{4,8}\b`)

// ExtractCode scans message text for a verification code and returns the
// first match, or "" when the text contains none.
func ExtractCode(body string) string {
	return codePattern.FindString(body)
}
