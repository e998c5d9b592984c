package setup

import "testing"

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		text string
		want MessageType
	}{
		{"/start", StartCommand},
		{"  /start  ", StartCommand},
		{"/reset", ResetCommand},
		{"/help", OtherCommand},
		{"/start now", OtherCommand},
		{"hello world", RegularText},
		{"", RegularText},
		{"translate this / that", RegularText},
	}

	for _, tt := range tests {
		if got := ClassifyMessage(tt.text); got != tt.want {
			t.Errorf("ClassifyMessage(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ResponseType
	}{
		{
			name: "setup prompt",
			text: "What languages would you like to use?",
			want: ResponseSetupPrompt,
		},
		{
			name: "setup confirmation literal",
			text: "Thanks! Setup is complete. Now we speak English, Spanish.",
			want: ResponseSetupConfirmation,
		},
		{
			name: "setup confirmation contextual",
			text: "All done. Now we speak english and russian.",
			want: ResponseSetupConfirmation,
		},
		{
			name: "translation output",
			text: "en: Hello world\nes: Hola mundo",
			want: ResponseTranslationOutput,
		},
		{
			name: "translation output braced",
			text: "{en}: Hello\n{fr}: Bonjour",
			want: ResponseTranslationOutput,
		},
		{
			name: "plain chatter",
			text: "I am not sure what you mean.",
			want: ResponseUnknown,
		},
		{
			name: "empty",
			text: "",
			want: ResponseUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyResponse(tt.text); got != tt.want {
				t.Errorf("ClassifyResponse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifierAndParserAgree(t *testing.T) {
	texts := []string{
		"Thanks! Setup is complete. Now we speak English, Spanish.",
		"What languages would you like to use?",
		"Configuration successful.",
		"en: Hello\nes: Hola",
	}
	for _, text := range texts {
		parsed, _ := Parse(text)
		classified := ClassifyResponse(text) == ResponseSetupConfirmation
		if parsed != classified {
			t.Errorf("Parse and ClassifyResponse disagree on %q", text)
		}
	}
}
