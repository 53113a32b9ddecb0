package text

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercase", "What Is Dharma", "what is dharma"},
		{"punctuation", "Why do I feel angry?!", "why do i feel angry"},
		{"keeps digits and underscore", "Chapter_2, Verse 47.", "chapter_2 verse 47"},
		{"keeps whitespace", "a\tb\nc", "a\tb\nc"},
		{"symbols dropped", "peace & calm @ home #1", "peace  calm  home 1"},
		{"unicode letters", "Ärger—Zorn", "ärgerzorn"},
		{"devanagari marks", "कर्मण्येवाधिकारस्ते।", "कर्मण्येवाधिकारस्ते"},
		{"only punctuation", "?!...", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"On anger, and the loss of memory!",
		"İstanbul ŞEHİR",
		"कर्मण्येवाधिकारस्ते मा फलेषु कदाचन।",
		"  mixed\tCASE, with (Chapter 2, Verse 47) ",
		"emoji 🙏 and symbols ™ ©",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
