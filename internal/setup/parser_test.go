package setup

import (
	"strings"
	"testing"
)

func TestParse_FullConfirmation(t *testing.T) {
	ok, langs := Parse("Thanks! Setup is complete. Now we speak English, Spanish, French.")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if langs != "English, Spanish, French" {
		t.Errorf("expected language list, got %q", langs)
	}
}

func TestParse_RejectsSetupPrompt(t *testing.T) {
	ok, langs := Parse("What languages would you like to use?")
	if ok {
		t.Error("setup prompt must not be treated as confirmation")
	}
	if langs != "" {
		t.Errorf("expected empty languages, got %q", langs)
	}
}

func TestParse_SentinelWhenNoLanguages(t *testing.T) {
	ok, langs := Parse("Setup is complete. Ready for translation.")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if langs != SentinelConfigured {
		t.Errorf("expected sentinel, got %q", langs)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		if ok, _ := Parse(text); ok {
			t.Errorf("empty input %q must be rejected", text)
		}
	}
}

func TestParse_ExtractionVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "now we speak",
			text: "Great! I can now translate. Now we speak English, Russian, Japanese.",
			want: "English, Russian, Japanese",
		},
		{
			name: "translate between list",
			text: "Setup complete. I translate between English, Russian, Japanese for you.",
			want: "English, Russian, Japanese",
		},
		{
			name: "help you with",
			text: "Perfect! Now I can help you with English, French.",
			want: "English, French",
		},
		{
			name: "ready to translate",
			text: "Excellent! I'm ready to translate English, German, Spanish.",
			want: "English, German, Spanish",
		},
		{
			name: "ready for list translation",
			text: "Setup complete. Ready for English, Spanish, Portuguese translation.",
			want: "English, Spanish, Portuguese",
		},
		{
			name: "between two languages",
			text: "Setup is complete. We can chat between English and Spanish.",
			want: "English, Spanish",
		},
		{
			name: "trailing sentence stripped",
			text: "Thanks! Setup is complete. Now we speak English, Spanish. Send your message and I'll translate it.",
			want: "English, Spanish",
		},
		{
			name: "and separator",
			text: "Thanks! Setup is complete. Now we speak English and German",
			want: "English, German",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, langs := Parse(tt.text)
			if !ok {
				t.Fatal("expected confirmation")
			}
			if langs != tt.want {
				t.Errorf("got %q, want %q", langs, tt.want)
			}
		})
	}
}

func TestParse_OrderingMoreSpecificWins(t *testing.T) {
	// Both "now we speak" and "ready for <list> translation" could match;
	// the earlier, more specific pattern must win.
	ok, langs := Parse("Setup is complete. Now we speak English, Spanish. Ready for French translation.")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if langs != "English, Spanish" {
		t.Errorf("expected the earlier pattern's capture, got %q", langs)
	}
}

func TestParse_FirstCandidateWinsEvenWhenFiltered(t *testing.T) {
	// "ready to translate" captures the word "between" here; extraction stops
	// at that first candidate and the filter empties it, so the sentinel is
	// returned rather than falling through to the "between X and Y" pattern.
	ok, langs := Parse("Setup complete. Ready to translate between English and Spanish.")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if langs != SentinelConfigured {
		t.Errorf("expected sentinel, got %q", langs)
	}
}

func TestParse_FiltersCommonWords(t *testing.T) {
	ok, langs := Parse("Setup is complete. Now we speak English, send, Spanish.")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if strings.Contains(langs, "send") {
		t.Errorf("lowercase common word leaked into %q", langs)
	}
	if langs != "English, Spanish" {
		t.Errorf("got %q, want %q", langs, "English, Spanish")
	}
}

func TestParse_TitleCaseSurvivesFilter(t *testing.T) {
	// No canonical language whitelist exists, so a Title-Case token is kept
	// even when it collides with a common word.
	ok, langs := Parse("Setup is complete. Now we speak English, Send, Spanish.")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if langs != "English, Send, Spanish" {
		t.Errorf("got %q, want %q", langs, "English, Send, Spanish")
	}
}

func TestParse_DropsShortTokens(t *testing.T) {
	ok, langs := Parse("Setup is complete. Now we speak English, a, Spanish.")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if langs != "English, Spanish" {
		t.Errorf("got %q, want %q", langs, "English, Spanish")
	}
}

func TestParse_NoLanguagesPhrase(t *testing.T) {
	ok, langs := Parse("Setup is complete. Now we speak no languages yet")
	if !ok {
		t.Fatal("expected confirmation")
	}
	if langs != SentinelConfigured {
		t.Errorf("expected sentinel for 'no languages', got %q", langs)
	}
}
