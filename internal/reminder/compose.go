package reminder

import (
	"fmt"
	"strings"
	"time"

	"pawpal/internal/petcatalog"
)

// Outcome is the post-turn end state handed to the composer. Exactly one of
// the terminal shapes applies; Compose maps it to the user-facing message.
type Outcome struct {
	Draft    Draft
	Catalog  []petcatalog.Pet
	Location *time.Location
	// Broadcast is set when the reminder fanned out to more than one pet.
	Broadcast *BroadcastResult
	// PersistFailed marks a single-entity creation that could not be saved.
	PersistFailed bool
	// Internal marks an unexpected failure; everything else is ignored.
	Internal bool
}

const displayTimeFormat = "Monday, Jan 2 2006 at 3:04 PM"

// Compose is a pure function from the post-turn state to the response text.
func Compose(o Outcome) string {
	switch {
	case o.Internal:
		return "Sorry, something went wrong on my end. Please try again."
	case o.PersistFailed:
		return "I couldn't save that reminder just now. Please try again in a moment."
	case o.Draft.Completed && o.Broadcast != nil:
		return composeBroadcast(o)
	case o.Draft.Completed:
		return composeSuccess(o)
	case len(o.Draft.ValidationErrors) > 0:
		return composeValidationErrors(o.Draft)
	default:
		return composeMissingPrompt(o.Draft, o.Catalog)
	}
}

func composeSuccess(o Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Done! I'll remind you to %s on %s", *o.Draft.Title, displayTime(o.Draft, o.Location))
	if o.Draft.EntityDisplayName != "" {
		fmt.Fprintf(&b, " for %s", o.Draft.EntityDisplayName)
	}
	b.WriteString(".")
	if rec := o.Draft.RecurrenceOrDefault(); rec != RecurrenceOnce {
		fmt.Fprintf(&b, " This repeats %s.", recurrenceAdverb(rec))
	}
	return b.String()
}

func composeBroadcast(o Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Done! I'll remind you to %s on %s for %s.",
		*o.Draft.Title, displayTime(o.Draft, o.Location), joinNames(o.Broadcast.Succeeded))
	if len(o.Broadcast.Failed) > 0 {
		fmt.Fprintf(&b, " Heads up: I couldn't save the reminder for %s. You may want to set those again.",
			joinNames(o.Broadcast.Failed))
	}
	return b.String()
}

func composeValidationErrors(d Draft) string {
	var b strings.Builder
	b.WriteString("That time doesn't work: ")
	b.WriteString(strings.Join(d.ValidationErrors, "; "))
	b.WriteString(". Could you give me a different time?")
	return b.String()
}

// composeMissingPrompt asks only for what is still missing. When the entity
// is among the missing fields the catalog names are enumerated along with an
// "all" option.
func composeMissingPrompt(d Draft, catalog []petcatalog.Pet) string {
	var wants []string
	if d.Missing(FieldTitle) {
		wants = append(wants, "what the reminder is for")
	}
	if d.Missing(FieldDueAt) {
		wants = append(wants, "when it should fire")
	}

	var b strings.Builder
	if len(wants) > 0 {
		fmt.Fprintf(&b, "Got it. Could you tell me %s?", strings.Join(wants, " and "))
	}
	if d.Missing(FieldEntity) {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		names := make([]string, 0, len(catalog))
		for _, p := range catalog {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&b, "Which pet is this for: %s, or all of them?", strings.Join(names, ", "))
	}
	if b.Len() == 0 {
		// Nothing missing and nothing terminal: shouldn't happen, but never
		// leave the user without a prompt.
		b.WriteString("Could you tell me a bit more about the reminder?")
	}
	return b.String()
}

// ComposeAbandoned is the terminal message once the correction turn cap is
// exhausted.
func ComposeAbandoned() string {
	return "I couldn't pin that reminder down, so I've set it aside for now. Feel free to start over whenever you're ready."
}

func displayTime(d Draft, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	if d.DueAt == nil {
		return "the scheduled time"
	}
	return d.DueAt.In(loc).Format(displayTimeFormat)
}

func recurrenceAdverb(r Recurrence) string {
	switch r {
	case RecurrenceDaily:
		return "daily"
	case RecurrenceWeekly:
		return "weekly"
	case RecurrenceMonthly:
		return "monthly"
	default:
		return string(r)
	}
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
