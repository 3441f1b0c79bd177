package services

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":        "acme-corp",
		"  Spaced  Out  ":  "spaced-out",
		"Already-Slugged":  "already-slugged",
		"Symbols!@#Galore": "symbols-galore",
		"数字123":            "123",
		"!!!":              "",
	}

	for input, expected := range cases {
		if got := slugify(input); got != expected {
			t.Errorf("slugify(%q) = %q, expected %q", input, got, expected)
		}
	}
}
