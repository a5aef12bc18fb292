package dialogue

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pawpal/internal/draftstore"
	"pawpal/internal/extractor"
	"pawpal/internal/logging"
	"pawpal/internal/petcatalog"
	"pawpal/internal/reminder"
	"pawpal/internal/reminderstore"
)

// Config tunes the turn handler.
type Config struct {
	// MaxTurns caps correction round-trips before the flow is abandoned.
	MaxTurns int
	// ExtractTimeout bounds one extraction call. A timed-out extraction
	// degrades to asking for the missing fields.
	ExtractTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxTurns <= 0 {
		c.MaxTurns = 10
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = 20 * time.Second
	}
	return c
}

// TimezoneLookup resolves a user's IANA timezone identifier. Failures fall
// back to UTC.
type TimezoneLookup interface {
	GetUserTimezone(ctx context.Context, userID string) (string, error)
}

// TimezoneLookupFunc adapts a function to TimezoneLookup.
type TimezoneLookupFunc func(ctx context.Context, userID string) (string, error)

func (f TimezoneLookupFunc) GetUserTimezone(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}

// Result is the outcome of one processed turn. A nil ContinuationState
// tells the caller the flow is finished and later turns should not be
// routed here.
type Result struct {
	ResponseText      string `json:"response_text"`
	ContinuationState []byte `json:"continuation_state,omitempty"`
	Completed         bool   `json:"completed"`
}

// Service drives the slot-filling reminder flow: extract the current turn's
// fields, merge them into the draft, then validate, resolve, create and
// compose. Turns for the same conversation are serialized; different
// conversations run independently.
type Service struct {
	catalog   petcatalog.Reader
	extract   extractor.Extractor
	reminders reminderstore.Store
	drafts    draftstore.Store
	tz        TimezoneLookup
	cfg       Config
	logger    logging.Logger
	tracer    trace.Tracer
	locks     *conversationLocks
	now       func() time.Time
}

// NewService wires the turn handler. tz may be nil; every lookup then
// resolves to UTC.
func NewService(catalog petcatalog.Reader, extract extractor.Extractor, reminders reminderstore.Store, drafts draftstore.Store, tz TimezoneLookup, cfg Config, logger logging.Logger) *Service {
	return &Service{
		catalog:   catalog,
		extract:   extract,
		reminders: reminders,
		drafts:    drafts,
		tz:        tz,
		cfg:       cfg.withDefaults(),
		logger:    logging.OrNop(logger),
		tracer:    otel.Tracer("pawpal/dialogue"),
		locks:     newConversationLocks(),
		now:       time.Now,
	}
}

// Process handles one conversation turn. priorState is the continuation
// state the caller got back from the previous turn; the draft store's copy
// wins when both exist, since it reflects the last completed write.
func (s *Service) Process(ctx context.Context, userID, conversationID, message string, priorState []byte) (result Result, err error) {
	unlock := s.locks.lock(conversationID)
	defer unlock()

	ctx, span := s.tracer.Start(ctx, "dialogue.turn",
		trace.WithAttributes(attribute.String("conversation.id", conversationID)))
	defer span.End()

	// An unexpected panic must degrade to a generic retry response without
	// corrupting the accumulated state: the prior continuation is handed
	// back untouched.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in turn for conversation %s: %v", conversationID, r)
			turnsFailed.Inc()
			result = Result{
				ResponseText:      reminder.Compose(reminder.Outcome{Internal: true}),
				ContinuationState: priorState,
			}
			err = nil
		}
	}()

	turnsTotal.Inc()

	draft := s.loadDraft(ctx, userID, conversationID, priorState)
	draft.Turn++

	if draft.Turn > s.cfg.MaxTurns {
		s.logger.Warn("conversation %s exceeded %d turns, abandoning flow", conversationID, s.cfg.MaxTurns)
		flowsAbandoned.Inc()
		_ = s.drafts.Delete(ctx, conversationID)
		return Result{ResponseText: reminder.ComposeAbandoned()}, nil
	}

	loc := s.userLocation(ctx, userID)
	nowLocal := s.now().In(loc)

	catalog, err := s.catalog.GetSchedulableEntities(ctx, userID)
	if err != nil {
		s.logger.Error("catalog lookup failed for user %s: %v", userID, err)
		catalog = nil
	}

	fields := s.extractTurn(ctx, message, catalog, nowLocal)
	draft = reminder.Merge(draft, fields, len(catalog))
	draft.UpdatedAt = s.now().UTC()

	if len(draft.MissingFields) > 0 {
		return s.keepCollecting(ctx, draft, catalog)
	}

	if draft.ValidationErrors = reminder.Validate(draft, s.now()); len(draft.ValidationErrors) > 0 {
		// Validation failures are user-correctable, never terminal; the
		// flow loops back to collecting.
		draft.State = reminder.StateCollecting
		return s.respondAndSave(ctx, draft, reminder.Outcome{Draft: draft, Catalog: catalog, Location: loc})
	}

	return s.createReminders(ctx, draft, catalog, loc)
}

// loadDraft restores the conversation's draft, preferring the store over
// the caller's echo, and starting fresh when neither exists.
func (s *Service) loadDraft(ctx context.Context, userID, conversationID string, priorState []byte) reminder.Draft {
	draft, err := s.drafts.Load(ctx, conversationID)
	if err == nil {
		return draft
	}
	if !errors.Is(err, draftstore.ErrDraftNotFound) {
		s.logger.Error("draft load failed for conversation %s: %v", conversationID, err)
	}
	if len(priorState) > 0 {
		if decoded, decErr := reminder.DecodeDraft(priorState); decErr == nil {
			return decoded
		}
		s.logger.Warn("unreadable prior state for conversation %s, starting fresh", conversationID)
	}
	return reminder.NewDraft(userID, conversationID)
}

// extractTurn runs the bounded extraction call. Any failure is degraded to
// "no fields this turn" so the flow falls back to asking for what's missing.
func (s *Service) extractTurn(ctx context.Context, message string, catalog []petcatalog.Pet, nowLocal time.Time) reminder.ExtractedFields {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "dialogue.extract")
	defer span.End()

	fields, err := s.extract.ExtractFields(ctx, message, catalog, nowLocal)
	if err != nil {
		s.logger.Warn("field extraction failed, treating turn as empty: %v", err)
		extractionFailures.Inc()
		return reminder.ExtractedFields{}
	}
	return fields
}

func (s *Service) keepCollecting(ctx context.Context, draft reminder.Draft, catalog []petcatalog.Pet) (Result, error) {
	return s.respondAndSave(ctx, draft, reminder.Outcome{Draft: draft, Catalog: catalog})
}

// respondAndSave persists the in-progress draft and hands it back as the
// continuation state.
func (s *Service) respondAndSave(ctx context.Context, draft reminder.Draft, outcome reminder.Outcome) (Result, error) {
	if err := s.drafts.Save(ctx, draft); err != nil {
		s.logger.Error("draft save failed for conversation %s: %v", draft.ConversationID, err)
	}
	state, err := reminder.EncodeDraft(draft)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ResponseText:      reminder.Compose(outcome),
		ContinuationState: state,
	}, nil
}

func (s *Service) userLocation(ctx context.Context, userID string) *time.Location {
	if s.tz == nil {
		return time.UTC
	}
	zone, err := s.tz.GetUserTimezone(ctx, userID)
	if err != nil || zone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		s.logger.Warn("unknown timezone %q for user %s, using UTC", zone, userID)
		return time.UTC
	}
	return loc
}
