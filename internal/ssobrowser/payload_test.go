package ssobrowser

import "testing"

func TestParsePairsFirstTokenWins(t *testing.T) {
	p := ParsePairs([][2]string{{"token", "first"}, {"token", "second"}})
	if p.Token != "first" {
		t.Fatalf("got %q, want %q", p.Token, "first")
	}
}

func TestParsePairsEmptyTokenIgnored(t *testing.T) {
	p := ParsePairs([][2]string{{"token", ""}, {"token", "real"}})
	if p.Token != "real" {
		t.Fatalf("got %q, want %q", p.Token, "real")
	}
}

func TestParsePairsCaseInsensitiveKeys(t *testing.T) {
	p := ParsePairs([][2]string{{"TOKEN", "abc"}, {"Consent", "TRUE"}})
	if p.Token != "abc" {
		t.Fatalf("token = %q", p.Token)
	}
	if p.Consent == nil || !*p.Consent {
		t.Fatalf("consent = %v", p.Consent)
	}
}

func TestParsePairsLatestValidConsentWins(t *testing.T) {
	p := ParsePairs([][2]string{{"consent", "true"}, {"consent", "not-a-bool"}, {"consent", "false"}})
	if p.Consent == nil || *p.Consent {
		t.Fatalf("consent = %v, want false", p.Consent)
	}
}

func TestExtractFromURLQueryOverridesFragmentToken(t *testing.T) {
	p, err := ExtractFromURL("http://localhost/?token=from-query#token=from-fragment")
	if err != nil {
		t.Fatal(err)
	}
	if p.Token != "from-query" {
		t.Fatalf("token = %q, want from-query", p.Token)
	}
}

func TestExtractFromURLFallsBackToFragmentToken(t *testing.T) {
	p, err := ExtractFromURL("http://localhost/#token=from-fragment&consent=true")
	if err != nil {
		t.Fatal(err)
	}
	if p.Token != "from-fragment" {
		t.Fatalf("token = %q, want from-fragment", p.Token)
	}
	if p.Consent == nil || !*p.Consent {
		t.Fatalf("consent = %v, want true", p.Consent)
	}
}

func TestExtractFromURLQueryConsentIndependentOfFragmentToken(t *testing.T) {
	p, err := ExtractFromURL("http://localhost/?consent=false#token=from-fragment&consent=true")
	if err != nil {
		t.Fatal(err)
	}
	if p.Token != "from-fragment" {
		t.Fatalf("token = %q, want from-fragment", p.Token)
	}
	if p.Consent == nil || *p.Consent {
		t.Fatalf("consent = %v, want false (query wins independently)", p.Consent)
	}
}
