package escrow

import "testing"

func TestNormalizeHandle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"@Alice", "alice"},
		{"  @Bob_99  ", "bob_99"},
		{"carol", "carol"},
		{"@", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeHandle(c.in); got != c.want {
			t.Fatalf("NormalizeHandle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanTextStripsZeroWidth(t *testing.T) {
	in := "ver​ified‍ badge\uFEFF"
	if got := CleanText(in); got != "verified badge" {
		t.Fatalf("CleanText(%q) = %q", in, got)
	}
}

func TestCleanTextNormalisesCompatibilityForms(t *testing.T) {
	// Fullwidth letters fold to ASCII under NFKC.
	if got := CleanText("ｖｅｒｉｆｉｅｄ"); got != "verified" {
		t.Fatalf("CleanText fullwidth = %q", got)
	}
}
