package extractor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"pawpal/internal/llm"
	"pawpal/internal/logging"
	"pawpal/internal/petcatalog"
	"pawpal/internal/reminder"
)

// Extractor turns one turn's message into candidate reminder fields. The
// message text is the only conversational input; the catalog and current
// local time exist solely to ground entity names and relative dates.
type Extractor interface {
	ExtractFields(ctx context.Context, message string, catalog []petcatalog.Pet, nowLocal time.Time) (reminder.ExtractedFields, error)
}

// LLMExtractor calls a chat model and post-validates everything it returns.
type LLMExtractor struct {
	client llm.Client
	logger logging.Logger
}

// NewLLMExtractor constructs an extractor over the given model client.
func NewLLMExtractor(client llm.Client, logger logging.Logger) *LLMExtractor {
	return &LLMExtractor{
		client: client,
		logger: logging.OrNop(logger),
	}
}

// rawResult mirrors the JSON schema the prompt demands.
type rawResult struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Kind        *string `json:"kind"`
	Entity      *string `json:"entity"`
	Recurrence  *string `json:"recurrence"`
	Confidence  string  `json:"confidence"`
}

// ExtractFields runs one extraction call. A model or parse failure returns
// an error; callers degrade that to "no fields this turn" rather than
// failing the turn.
func (e *LLMExtractor) ExtractFields(ctx context.Context, message string, catalog []petcatalog.Pet, nowLocal time.Time) (reminder.ExtractedFields, error) {
	resp, err := e.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: BuildPrompt(catalog, nowLocal)},
			{Role: llm.RoleUser, Content: message},
		},
		Temperature: 0,
		MaxTokens:   512,
		JSONMode:    true,
	})
	if err != nil {
		return reminder.ExtractedFields{}, err
	}

	raw, ok := e.parse(resp.Content)
	if !ok {
		e.logger.Warn("extraction output unparseable, treating turn as empty")
		return reminder.ExtractedFields{}, nil
	}
	return e.applyGuards(raw, message, catalog, nowLocal), nil
}

// parse decodes the model output, repairing near-JSON when the strict decode
// fails.
func (e *LLMExtractor) parse(content string) (rawResult, bool) {
	text := stripCodeFence(content)
	var raw rawResult
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		return raw, true
	}
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return rawResult{}, false
	}
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return rawResult{}, false
	}
	e.logger.Debug("extraction JSON needed repair")
	return raw, true
}

// applyGuards enforces the extraction contract on whatever the model
// produced. Each slot is independently dropped when the raw message cannot
// support it.
func (e *LLMExtractor) applyGuards(raw rawResult, message string, catalog []petcatalog.Pet, nowLocal time.Time) reminder.ExtractedFields {
	out := reminder.ExtractedFields{Confidence: raw.Confidence}

	if raw.Title != nil && strings.TrimSpace(*raw.Title) != "" {
		if HasActionPhrase(message) {
			title := strings.TrimSpace(*raw.Title)
			out.Title = &title
		} else {
			e.logger.Debug("dropping title %q: no action phrase in message", *raw.Title)
		}
	}

	if raw.Description != nil && strings.TrimSpace(*raw.Description) != "" {
		desc := strings.TrimSpace(*raw.Description)
		out.Description = &desc
	}

	if HasTemporalExpression(message) {
		due, err := resolveDueAt(raw.Date, raw.Time, message, nowLocal)
		if err != nil {
			e.logger.Warn("dropping due time: %v", err)
		} else {
			out.DueAt = due
		}
	} else if raw.Date != nil || raw.Time != nil {
		e.logger.Debug("dropping due time: no temporal expression in message")
	}

	out.Entity, out.EntityDisplayName = resolveEntity(raw.Entity, message, catalog)

	if raw.Kind != nil {
		if k := reminder.Kind(strings.ToLower(*raw.Kind)); k.IsValid() {
			out.Kind = &k
		}
	}
	if raw.Recurrence != nil {
		if r := reminder.Recurrence(strings.ToLower(*raw.Recurrence)); r.IsValid() {
			out.Recurrence = &r
		}
	}
	return out
}

// resolveEntity maps the model's entity string onto the catalog. ALL
// requires explicit all/both wording in the message; a name must match a
// catalog entry; anything else resolves to no entity.
func resolveEntity(entity *string, message string, catalog []petcatalog.Pet) (*reminder.EntityRef, string) {
	if entity == nil {
		return nil, ""
	}
	name := strings.TrimSpace(*entity)
	if name == "" {
		return nil, ""
	}
	if strings.EqualFold(name, "all") {
		if MentionsAllEntities(message) {
			return &reminder.EntityRef{All: true}, ""
		}
		return nil, ""
	}
	lowerMsg := strings.ToLower(message)
	for _, p := range catalog {
		if strings.EqualFold(p.Name, name) && strings.Contains(lowerMsg, strings.ToLower(p.Name)) {
			return &reminder.EntityRef{ID: p.ID}, p.Name
		}
	}
	return nil, ""
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
