package bot

import "testing"

func TestParseFormStrictLines(t *testing.T) {
	text := "Escrow Form\nSeller - @SellerGuy\nBuyer - BuyerGal\nAmount - 100$"
	form, ok := ParseForm(text)
	if !ok {
		t.Fatal("expected form to parse")
	}
	if form.SellerHandle != "sellerguy" {
		t.Fatalf("seller = %q", form.SellerHandle)
	}
	if form.BuyerHandle != "buyergal" {
		t.Fatalf("buyer = %q", form.BuyerHandle)
	}
}

func TestParseFormFallsBackToMentions(t *testing.T) {
	text := "deal between @First_user and @SecondUser please escrow"
	form, ok := ParseForm(text)
	if !ok {
		t.Fatal("expected fallback parse")
	}
	if form.SellerHandle != "first_user" || form.BuyerHandle != "seconduser" {
		t.Fatalf("parsed %+v", form)
	}
}

func TestParseFormRejectsIncomplete(t *testing.T) {
	for _, text := range []string{
		"",
		"Seller - @onlyseller",
		"just one mention @alice here",
		"no handles at all",
	} {
		if _, ok := ParseForm(text); ok {
			t.Fatalf("expected %q to fail", text)
		}
	}
}

func TestLooksLikeForm(t *testing.T) {
	if !LooksLikeForm("Seller - @a\nBuyer - @b") {
		t.Fatal("expected form-like text to match")
	}
	if !LooksLikeForm("BUYER - someone") {
		t.Fatal("expected case-insensitive match")
	}
	if LooksLikeForm("/add 100") {
		t.Fatal("command should not look like a form")
	}
}
