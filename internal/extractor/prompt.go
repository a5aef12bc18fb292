package extractor

import (
	"fmt"
	"strings"
	"time"

	"pawpal/internal/petcatalog"
)

// The extraction prompt only ever sees the current turn's message. Prior
// turns are merged at the draft level; feeding them back into the model
// would let an earlier "tomorrow" leak into a later turn.

const systemPromptHeader = `You extract reminder fields from a single chat message sent to a pet-care assistant.
Return ONLY a JSON object with exactly these keys:
{
  "title": string or null,       // short imperative label of the task, e.g. "give Luna her heartworm pill"
  "description": string or null, // extra detail beyond the title, if any
  "date": string or null,        // local calendar date: "2006-01-02", or "01-02" when the year is not stated
  "time": string or null,        // local 24-hour clock time: "15:04"
  "kind": string or null,        // one of: medication, appointment, grooming, feeding, training, exercise, play, other
  "entity": string or null,      // the pet's name exactly as listed below, or "all" when every pet is meant
  "recurrence": string or null,  // one of: once, daily, weekly, monthly
  "confidence": string           // one of: high, medium, low
}

Rules:
- Use null for anything the message does not state. Never invent a value.
- If the message has no actionable task, title MUST be null. "Set a reminder" alone is not a task.
- If the message has no time or date wording, date and time MUST both be null. Never default to tomorrow.
- Resolve relative expressions ("in 2 hours", "next Friday") against the current local time given below and emit the resulting local date and time.
- A bare clock time with no date: emit only "time".
- A date with no stated year: emit the "01-02" form.
- entity: only when the message names a listed pet or explicitly says all/both. Never pick a pet the message did not name.`

// BuildPrompt renders the system prompt for one extraction call.
func BuildPrompt(catalog []petcatalog.Pet, nowLocal time.Time) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)
	b.WriteString("\n\nCurrent local time: ")
	b.WriteString(nowLocal.Format(time.RFC3339))
	fmt.Fprintf(&b, " (%s, %s)", nowLocal.Weekday(), nowLocal.Location())
	b.WriteString("\nPets:")
	if len(catalog) == 0 {
		b.WriteString(" (none)")
	}
	for _, p := range catalog {
		fmt.Fprintf(&b, "\n- %s", p.Name)
		if p.Species != "" {
			fmt.Fprintf(&b, " (%s)", p.Species)
		}
	}
	return b.String()
}
