package validate

import (
	"strings"
	"testing"
)

func TestNextPath(t *testing.T) {
	cases := map[string]string{
		"":                         "/",
		"/admin":                   "/admin",
		"/opportunity?id=abc":      "/opportunity?id=abc",
		"//evil.example.com":       "/",
		"https://evil.example.com": "/",
		`/\evil.example.com`:       "/",
		"admin":                    "/",
	}
	for in, want := range cases {
		if got := NextPath(in); got != want {
			t.Errorf("NextPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSelectors(t *testing.T) {
	if CategorySelector("online_surveys") != "online_surveys" || CategorySelector("bogus") != "all" || CategorySelector("") != "all" {
		t.Fatal("category selector")
	}
	if RecommendationSelector("decent") != "decent" || RecommendationSelector("<script>") != "all" {
		t.Fatal("recommendation selector")
	}
}

func TestQueryAndID(t *testing.T) {
	if got, ok := Q("  swag  "); got != "swag" || !ok {
		t.Fatalf("Q = %q, %v", got, ok)
	}
	if _, ok := Q(strings.Repeat("é", MaxQuery)); !ok {
		t.Fatal("query at the limit rejected")
	}
	long := strings.Repeat("é", MaxQuery+1)
	if got, ok := Q(long); ok || got != long {
		t.Fatalf("over-long query = %d runes, ok=%v", len([]rune(got)), ok)
	}
	if _, ok := ID("3f2a-b1_c"); !ok {
		t.Fatal("valid id rejected")
	}
	if _, ok := ID("1 OR 1=1"); ok {
		t.Fatal("bad id accepted")
	}
	if !Password("Passw0rd!") || Password("password") {
		t.Fatal("password rules")
	}
}
