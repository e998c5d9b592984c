// Package setup classifies inbound chat messages and agent replies, and
// extracts confirmed language lists from free-text setup confirmations.
package setup

import (
	"regexp"
	"strings"
)

// MessageType classifies an inbound Telegram message.
type MessageType int

const (
	StartCommand MessageType = iota
	ResetCommand
	OtherCommand
	RegularText
)

// ResponseType classifies a reply from the remote agent.
type ResponseType int

const (
	ResponseUnknown ResponseType = iota
	ResponseSetupPrompt
	ResponseSetupConfirmation
	ResponseTranslationOutput
)

// ClassifyMessage buckets an inbound message by its command shape.
func ClassifyMessage(text string) MessageType {
	text = strings.TrimSpace(text)
	switch {
	case text == "/start":
		return StartCommand
	case text == "/reset":
		return ResetCommand
	case strings.HasPrefix(text, "/"):
		return OtherCommand
	default:
		return RegularText
	}
}

var setupPromptPhrases = []string{
	"what's languages you prefer",
	"what languages would you like",
	"which languages do you want",
	"please choose your languages",
	"tell me your preferred languages",
}

var translationOutputPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^[a-z]{2}:\s*\S`),
	regexp.MustCompile(`(?m)^\{[a-z]{2}\}:\s*\S`),
	regexp.MustCompile(`\n[a-z]{2}:\s*\S`),
	regexp.MustCompile(`\n\{[a-z]{2}\}:\s*\S`),
}

// ClassifyResponse buckets an agent reply. Confirmation detection is shared
// with Parse so the two never disagree.
func ClassifyResponse(text string) ResponseType {
	text = strings.TrimSpace(text)
	if text == "" {
		return ResponseUnknown
	}
	lowered := strings.ToLower(text)

	for _, phrase := range setupPromptPhrases {
		if strings.Contains(lowered, phrase) {
			return ResponseSetupPrompt
		}
	}

	if isConfirmation(lowered) {
		return ResponseSetupConfirmation
	}

	for _, re := range translationOutputPatterns {
		if re.MatchString(text) {
			return ResponseTranslationOutput
		}
	}

	return ResponseUnknown
}
