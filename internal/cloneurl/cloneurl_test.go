package cloneurl

import "testing"

func TestParseValid(t *testing.T) {
	c, err := Parse("https://github.com/kyledewey/gradr.git")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Username() != "kyledewey" {
		t.Errorf("Username() = %q, want %q", c.Username(), "kyledewey")
	}
	if c.ProjectName() != "gradr" {
		t.Errorf("ProjectName() = %q, want %q", c.ProjectName(), "gradr")
	}
}

func TestParseRejectsWrongSegmentCount(t *testing.T) {
	cases := []string{
		"https://github.com/gradr.git",
		"https://github.com/kyledewey/extra/gradr.git",
		"https://github.com/",
	}
	for _, raw := range cases {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", raw)
		}
	}
}

func TestParseRejectsMissingGitSuffix(t *testing.T) {
	if _, err := Parse("https://github.com/kyledewey/gradr"); err == nil {
		t.Error("Parse succeeded without .git suffix, want error")
	}
}

func TestParseRejectsSpaceInSegment(t *testing.T) {
	cases := []string{
		"https://github.com/kyle dewey/gradr.git",
		"https://github.com/kyledewey/gra dr.git",
	}
	for _, raw := range cases {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", raw)
		}
	}
}

func TestParseRejectsMalformedURL(t *testing.T) {
	if _, err := Parse("://not-a-url"); err == nil {
		t.Error("Parse succeeded on malformed url, want error")
	}
}

func TestStringReturnsOriginal(t *testing.T) {
	raw := "https://github.com/kyledewey/gradr.git"
	c, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.String() != raw {
		t.Errorf("String() = %q, want %q", c.String(), raw)
	}
}
