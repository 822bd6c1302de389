package bot

import "testing"

func TestMaskName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "(unknown)"},
		{"a", "a"},
		{"ab", "a*"},
		{"abc", "a*c"},
		{"abcd", "a**d"},
		{"abcde", "a*cde"},
		{"@longhandle", "l******dle"},
	}
	for _, c := range cases {
		if got := MaskName(c.in); got != c.want {
			t.Fatalf("MaskName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCompactUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0$"},
		{531, "531$"},
		{12.5, "12.5$"},
		{1000, "1k$"},
		{1500, "1.5k$"},
		{2_300_000, "2.3m$"},
		{1_000_000, "1m$"},
		{1_200_000_000, "1.2b$"},
	}
	for _, c := range cases {
		if got := CompactUSD(c.in); got != c.want {
			t.Fatalf("CompactUSD(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInfoCard(t *testing.T) {
	got := infoCard(42, "Alice", 5, 1500, 3, true)
	want := "✅ User Info:\n\nUser ID: 42\nName: Alice\nTotal Escrows: 5\nEscrowed Amount: 1.5k$\nRank: 3"
	if got != want {
		t.Fatalf("ranked card = %q, want %q", got, want)
	}
}

func TestInfoCardOmitsRankWhenUnranked(t *testing.T) {
	got := infoCard(0, "@bob", 0, 0, 0, false)
	want := "✅ User Info:\n\nName: @bob\nTotal Escrows: 0\nEscrowed Amount: 0$"
	if got != want {
		t.Fatalf("unranked card = %q, want %q", got, want)
	}
}

func TestFormLink(t *testing.T) {
	if got := formLink(-1001234567890, 42); got != "https://t.me/c/1234567890/42" {
		t.Fatalf("formLink supergroup = %q", got)
	}
	if got := formLink(987654, 7); got != "https://t.me/c/987654/7" {
		t.Fatalf("formLink plain = %q", got)
	}
}
