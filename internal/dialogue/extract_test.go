package dialogue

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "HAAN Jee", "haan jee"},
		{"strips punctuation", "haan, bilkul!", "haan bilkul"},
		{"collapses whitespace", "  mera   naam  ", "mera naam"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"digits with spaces", "0 3 0 0 1 1 1 1 1 1 1", "0300-1111111"},
		{"plain digits", "03001111111", "0300-1111111"},
		{"digits in sentence", "mera number 0300 1111111 hai", "0300-1111111"},
		{"too few digits", "0300", ""},
		{"no digits", "mujhe nahi pata", ""},
		{"more than eleven digits kept raw", "030011111112345", "030011111112345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPhone(tt.input, 7); got != tt.want {
				t.Errorf("ExtractPhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mera naam marker", "mera naam ali raza hai", "Ali Raza"},
		{"english marker", "my name is sara ahmed", "Sara Ahmed"},
		{"bare name", "ali raza", "Ali Raza"},
		{"filler stripped", "ali raza hai ji", "Ali Raza"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(tt.input); got != tt.want {
				t.Errorf("ExtractName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  Answer
	}{
		{"haan", AnswerYes},
		{"jee bilkul", AnswerYes},
		{"theek hai", AnswerYes},
		{"nahin", AnswerNo},
		{"no cancel kar dein", AnswerNo},
		{"haan nahi", AnswerAmbiguous},
		{"kya", AnswerAmbiguous},
		{"", AnswerAmbiguous},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DetectYesNo(Normalize(tt.input)); got != tt.want {
				t.Errorf("DetectYesNo(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("ali raza khan"); got != "Ali Raza Khan" {
		t.Errorf("TitleCase = %q, want %q", got, "Ali Raza Khan")
	}
}
