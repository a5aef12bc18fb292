package extractor

import (
	"regexp"
	"strings"
)

// The guards in this file post-validate the model's output against the raw
// message. The model is never trusted to leave a slot empty on its own: a
// returned title is dropped unless the message actually contains an action
// phrase, and a returned due time is dropped unless the message contains a
// temporal expression.

// fillerPatterns match framing that asks for a reminder without saying what
// it is for. They are stripped before looking for an action phrase so that
// "set a reminder" alone never yields a title.
var fillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:please\s+)?(?:can|could|would)\s+you\b`),
	regexp.MustCompile(`(?i)\b(?:set|create|add|make|schedule)\s+(?:up\s+)?(?:a|the|another)?\s*reminders?\b(?:\s+for\s+me)?`),
	regexp.MustCompile(`(?i)\bremind\s+me\b(?:\s+to\b)?`),
	regexp.MustCompile(`(?i)\bi\s+(?:need|want|would\s+like)\s+(?:a|another)?\s*reminders?\b`),
	regexp.MustCompile(`(?i)\bplease\b`),
	regexp.MustCompile(`(?i)\bthanks?\b`),
}

// actionWords is a lexicon of verbs that signal an actual task. Pet-care
// heavy on purpose; "other" intents still tend to use one of the generic
// entries.
var actionWords = map[string]bool{
	"give": true, "take": true, "bring": true, "feed": true, "walk": true,
	"wash": true, "bathe": true, "brush": true, "groom": true, "trim": true,
	"play": true, "train": true, "exercise": true, "medicate": true,
	"administer": true, "apply": true, "refill": true, "renew": true,
	"buy": true, "order": true, "pick": true, "drop": true, "call": true,
	"book": true, "visit": true, "check": true, "clean": true, "change": true,
	"vaccinate": true, "deworm": true, "weigh": true, "pay": true,
	"send": true, "prepare": true, "pack": true, "go": true, "attend": true,
}

// HasActionPhrase reports whether the message contains something that can
// serve as a reminder title, beyond conversational filler.
func HasActionPhrase(message string) bool {
	text := message
	for _, p := range fillerPatterns {
		text = p.ReplaceAllString(text, " ")
	}
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	}) {
		if actionWords[word] {
			return true
		}
	}
	// A noun phrase like "vet appointment" or "flea treatment" is also
	// actionable even without a verb.
	return nounPhrasePattern.MatchString(text)
}

var nounPhrasePattern = regexp.MustCompile(`(?i)\b(appointment|checkup|check-up|vaccination|vaccine|medication|meds?|pill|dose|treatment|surgery|grooming|bath|walk|session|visit|birthday|shots?)\b`)

// temporalPatterns match the temporal expressions the extractor is allowed
// to act on. If none match, any due time the model produced is a guess and
// is discarded.
var temporalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(today|tomorrow|tonight|noon|midnight|morning|afternoon|evening)\b`),
	regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s*(?:am|pm)\b`),
	regexp.MustCompile(`(?i)\bin\s+(?:a|an|\d+)\s*(?:minute|hour|day|week|month|year)s?\b`),
	regexp.MustCompile(`(?i)\bnext\s+(?:week|month|year|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`),
	regexp.MustCompile(`(?i)\b(?:on\s+)?the\s+\d{1,2}(?:st|nd|rd|th)\b`),
}

// HasTemporalExpression reports whether the message contains any time or
// date wording at all.
func HasTemporalExpression(message string) bool {
	for _, p := range temporalPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

var allEntityPattern = regexp.MustCompile(`(?i)\b(all|both|every|each)\b`)

// MentionsAllEntities reports whether the message explicitly asks for every
// pet ("all my dogs", "both of them"). Absence of an entity mention must
// yield no entity, never ALL.
func MentionsAllEntities(message string) bool {
	return allEntityPattern.MatchString(message)
}

var nextYearPattern = regexp.MustCompile(`(?i)\bnext\s+year\b`)

// MentionsNextYear reports whether a year-less date should roll into the
// next calendar year.
func MentionsNextYear(message string) bool {
	return nextYearPattern.MatchString(message)
}
