package retrieval

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{name: "trims and lowercases", in: "  Bonjour Le Monde  ", out: "bonjour le monde"},
		{name: "folds accents", in: "Où est mon colis ?", out: "ou est mon colis"},
		{name: "punctuation becomes space", in: "l'été, était-là!", out: "l ete etait la"},
		{name: "collapses whitespace", in: "un   deux\t\ntrois", out: "un deux trois"},
		{name: "empty input", in: "   ", out: ""},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.out {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.out, got)
		}
	}
}

func TestStem(t *testing.T) {
	lex := DefaultLexicon()
	cases := []struct {
		in  string
		out string
	}{
		{"contacter", "contact"},
		{"facturation", "factur"},
		{"delais", "delai"},
		{"conseiller", "conseill"},
		// too short for any suffix once the stem-length guard applies
		{"mes", "mes"},
		{"les", "les"},
		// no matching suffix
		{"colis", "coli"},
		{"support", "support"},
	}

	for _, tc := range cases {
		if got := lex.Stem(tc.in); got != tc.out {
			t.Fatalf("Stem(%q): expected %q got %q", tc.in, tc.out, got)
		}
	}
}

func TestStemIdempotent(t *testing.T) {
	lex := DefaultLexicon()
	once := lex.Stem("contacter")
	if twice := lex.Stem(once); twice != once {
		t.Fatalf("expected stable stem, got %q then %q", once, twice)
	}
}

func TestExtractWords(t *testing.T) {
	lex := DefaultLexicon()
	got := lex.ExtractWords("Comment puis-je contacter le support ?")
	want := []string{"contact", "support"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}
