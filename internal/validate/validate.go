package validate

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"earnhub/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// MaxQuery is the longest search query accepted, in characters.
const MaxQuery = 80

// Q trims a free-text search query. Longer than MaxQuery is rejected rather
// than cut, since a cut query matches more than was asked for.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= MaxQuery
}

// ID validates a record identifier (uuid or slug).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces a length window and mixed character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// CategorySelector returns "all" unless s names a known category.
func CategorySelector(s string) string {
	s = strings.TrimSpace(s)
	if domain.Category(s).Valid() {
		return s
	}
	return "all"
}

// RecommendationSelector returns "all" unless s names a known tier.
func RecommendationSelector(s string) string {
	s = strings.TrimSpace(s)
	if domain.Recommendation(s).Valid() {
		return s
	}
	return "all"
}

// NextPath accepts only local absolute paths so login cannot redirect
// off-site.
func NextPath(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.Contains(s, `\`) {
		return "/"
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return s
}
