package engine

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ajuda!  ", "ajuda"},
		{"INSPIRAÇÃO", "inspiracao"},
		{"Nova   Carta, por favor", "nova carta por favor"},
		{"quero minha carta!!!", "quero minha carta"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecognizeCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Command
		ok   bool
	}{
		{"exact help", "ajuda", CommandHelp, true},
		{"exact english", "help", CommandHelp, true},
		{"exact with accents", "Inspiração", CommandInspire, true},
		{"exact regenerate", "nova carta", CommandRegenerate, true},
		{"exact end", "encerrar", CommandEnd, true},
		{"keyword in sentence", "pode me dar uma ajuda com isso?", CommandHelp, true},
		{"regenerate beats help on priority", "ajuda, quero regenerar", CommandRegenerate, true},
		{"no partial word match", "ajudante de cozinha", "", false},
		{"plain chatter", "obrigada pela carta", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RecognizeCommand(tt.in)
			if ok != tt.ok {
				t.Fatalf("RecognizeCommand(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("RecognizeCommand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
