package twitter

import "regexp"

// profileURLRe matches x.com and twitter.com profile URLs. The handle must be
// followed by the end of input or a path, query or fragment separator so that
// "foo-bar" never yields "foo".
var profileURLRe = regexp.MustCompile(`^https?://(?:www\.)?(?:x|twitter)\.com/([A-Za-z0-9_]+)(?:[/?#].*)?$`)

var handleRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ExtractHandle returns the account handle from a profile URL.
func ExtractHandle(profileURL string) (string, bool) {
	m := profileURLRe.FindStringSubmatch(profileURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// validHandle reports whether s matches the provider's handle grammar.
func validHandle(s string) bool {
	return handleRe.MatchString(s)
}
