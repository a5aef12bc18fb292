package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pawpal/internal/draftstore"
	"pawpal/internal/petcatalog"
	"pawpal/internal/reminder"
	"pawpal/internal/reminderstore"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// scriptedExtractor returns queued results, one per turn.
type scriptedExtractor struct {
	mu    sync.Mutex
	steps []scriptStep
	calls int
}

type scriptStep struct {
	fields reminder.ExtractedFields
	err    error
}

func (e *scriptedExtractor) ExtractFields(_ context.Context, _ string, _ []petcatalog.Pet, _ time.Time) (reminder.ExtractedFields, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if len(e.steps) == 0 {
		return reminder.ExtractedFields{}, nil
	}
	step := e.steps[0]
	e.steps = e.steps[1:]
	return step.fields, step.err
}

type fixture struct {
	svc    *Service
	store  *reminderstore.MemoryStore
	drafts *draftstore.MemoryStore
	ex     *scriptedExtractor
}

func newFixture(pets []petcatalog.Pet, steps []scriptStep, cfg Config) *fixture {
	store := reminderstore.NewMemoryStore()
	drafts := draftstore.NewMemoryStore()
	ex := &scriptedExtractor{steps: steps}
	catalog := &petcatalog.StaticReader{Pets: map[string][]petcatalog.Pet{"user-1": pets}}

	svc := NewService(catalog, ex, store, drafts, nil, cfg, nil)
	svc.now = func() time.Time { return fixedNow }
	return &fixture{svc: svc, store: store, drafts: drafts, ex: ex}
}

func strPtr(s string) *string { return &s }

func futureDue() *time.Time {
	due := fixedNow.Add(8 * time.Hour)
	return &due
}

func TestProcess_TwoTurnSlotFill(t *testing.T) {
	f := newFixture(
		[]petcatalog.Pet{{ID: "p1", Name: "Luna"}},
		[]scriptStep{
			{fields: reminder.ExtractedFields{Title: strPtr("give Luna her pill")}},
			{fields: reminder.ExtractedFields{DueAt: futureDue()}},
		}, Config{})
	ctx := context.Background()

	res, err := f.svc.Process(ctx, "user-1", "conv-1", "remind me to give Luna her pill", nil)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if res.Completed || res.ContinuationState == nil {
		t.Fatalf("turn 1 should keep collecting: %+v", res)
	}
	if !strings.Contains(res.ResponseText, "when") {
		t.Errorf("turn 1 response %q should ask for the time", res.ResponseText)
	}

	res, err = f.svc.Process(ctx, "user-1", "conv-1", "at 8pm", res.ContinuationState)
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !res.Completed || res.ContinuationState != nil {
		t.Fatalf("turn 2 should complete the flow: %+v", res)
	}

	records := f.store.All()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Title != "give Luna her pill" {
		t.Errorf("title %q was re-derived instead of preserved", rec.Title)
	}
	if rec.Kind != reminder.KindOther || rec.Recurrence != reminder.RecurrenceOnce {
		t.Errorf("kind/recurrence should default silently: %+v", rec)
	}
	if rec.Source != reminder.SourceConversational {
		t.Errorf("source = %q, want conversational", rec.Source)
	}

	// Draft must be discarded once complete.
	if _, err := f.drafts.Load(ctx, "conv-1"); !errors.Is(err, draftstore.ErrDraftNotFound) {
		t.Errorf("draft should be deleted after completion, got %v", err)
	}
}

func TestProcess_EntityAmbiguityNeverCompletesSilently(t *testing.T) {
	pets := []petcatalog.Pet{{ID: "p1", Name: "Luna"}, {ID: "p2", Name: "Rex"}}
	f := newFixture(pets, []scriptStep{
		{fields: reminder.ExtractedFields{Title: strPtr("flea treatment"), DueAt: futureDue()}},
		{fields: reminder.ExtractedFields{}},
		{fields: reminder.ExtractedFields{Entity: &reminder.EntityRef{All: true}}},
	}, Config{})
	ctx := context.Background()

	res, err := f.svc.Process(ctx, "user-1", "conv-1", "flea treatment tomorrow", nil)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if res.Completed {
		t.Fatalf("must not complete with two pets and no entity")
	}
	for _, want := range []string{"Luna", "Rex", "all"} {
		if !strings.Contains(res.ResponseText, want) {
			t.Errorf("prompt %q should enumerate %q", res.ResponseText, want)
		}
	}

	// A turn that still names no pet keeps asking.
	res, err = f.svc.Process(ctx, "user-1", "conv-1", "hmm", res.ContinuationState)
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if res.Completed || len(f.store.All()) != 0 {
		t.Fatalf("still must not complete: %+v", res)
	}

	// Explicit "all" resolves it.
	res, err = f.svc.Process(ctx, "user-1", "conv-1", "all of them", res.ContinuationState)
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected completion after entity resolved")
	}
	if len(f.store.All()) != 2 {
		t.Errorf("broadcast should create one record per pet, got %d", len(f.store.All()))
	}
}

func TestProcess_BroadcastAllSuccess(t *testing.T) {
	pets := []petcatalog.Pet{{ID: "p1", Name: "Luna"}, {ID: "p2", Name: "Rex"}, {ID: "p3", Name: "Milo"}}
	f := newFixture(pets, []scriptStep{
		{fields: reminder.ExtractedFields{
			Title:  strPtr("flea treatment"),
			DueAt:  futureDue(),
			Entity: &reminder.EntityRef{All: true},
		}},
	}, Config{})

	res, err := f.svc.Process(context.Background(), "user-1", "conv-1", "flea treatment for all my pets tomorrow", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected completion: %+v", res)
	}
	records := f.store.All()
	if len(records) != 3 {
		t.Fatalf("records = %d, want one per pet", len(records))
	}
	seen := map[string]bool{}
	for _, r := range records {
		seen[r.PetID] = true
	}
	if !seen["p1"] || !seen["p2"] || !seen["p3"] {
		t.Errorf("each pet should get its own record: %v", seen)
	}
	if !strings.Contains(res.ResponseText, "Luna, Rex, and Milo") {
		t.Errorf("response %q should list every pet", res.ResponseText)
	}
}

func TestProcess_BroadcastPartialFailureNamesFailedPets(t *testing.T) {
	pets := []petcatalog.Pet{{ID: "p1", Name: "Luna"}, {ID: "p2", Name: "Rex"}, {ID: "p3", Name: "Milo"}}
	f := newFixture(pets, []scriptStep{
		{fields: reminder.ExtractedFields{
			Title:  strPtr("flea treatment"),
			DueAt:  futureDue(),
			Entity: &reminder.EntityRef{All: true},
		}},
	}, Config{})
	f.store.FailPetIDs = map[string]bool{"p2": true}

	res, err := f.svc.Process(context.Background(), "user-1", "conv-1", "flea treatment for all my pets tomorrow", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.Completed {
		t.Fatalf("partial success still completes the flow: %+v", res)
	}
	if len(f.store.All()) != 2 {
		t.Errorf("records = %d, want 2 (one pet failed, no rollback)", len(f.store.All()))
	}
	if !strings.Contains(res.ResponseText, "couldn't save") || !strings.Contains(res.ResponseText, "Rex") {
		t.Errorf("response %q must warn about exactly the failed pet", res.ResponseText)
	}
	if strings.Contains(res.ResponseText, "couldn't save the reminder for Luna") {
		t.Errorf("response %q must not blame a pet that succeeded", res.ResponseText)
	}
}

func TestProcess_PastDueLoopsBackToCollecting(t *testing.T) {
	past := fixedNow.Add(-2 * time.Hour)
	f := newFixture(
		[]petcatalog.Pet{{ID: "p1", Name: "Luna"}},
		[]scriptStep{
			{fields: reminder.ExtractedFields{Title: strPtr("vet visit"), DueAt: &past}},
			{fields: reminder.ExtractedFields{DueAt: futureDue()}},
		}, Config{})
	ctx := context.Background()

	res, err := f.svc.Process(ctx, "user-1", "conv-1", "vet visit at 10am", nil)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if res.Completed {
		t.Fatalf("a past due time must never complete")
	}
	if !strings.Contains(res.ResponseText, reminder.ErrMsgPast) {
		t.Errorf("response %q must carry the past error verbatim", res.ResponseText)
	}
	if len(f.store.All()) != 0 {
		t.Errorf("nothing may be persisted on a validation failure")
	}

	// Correction turn succeeds without re-deriving the title.
	res, err = f.svc.Process(ctx, "user-1", "conv-1", "make it 8pm", res.ContinuationState)
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !res.Completed {
		t.Fatalf("corrected time should complete: %+v", res)
	}
	if f.store.All()[0].Title != "vet visit" {
		t.Errorf("title changed across the correction loop")
	}
}

func TestProcess_ExtractionFailureDegradesToPrompt(t *testing.T) {
	f := newFixture(
		[]petcatalog.Pet{{ID: "p1", Name: "Luna"}},
		[]scriptStep{{err: errors.New("model timeout")}},
		Config{})

	res, err := f.svc.Process(context.Background(), "user-1", "conv-1", "remind me about something", nil)
	if err != nil {
		t.Fatalf("an extraction failure must not fail the turn: %v", err)
	}
	if res.Completed {
		t.Fatalf("nothing extracted, nothing to complete")
	}
	if !strings.Contains(res.ResponseText, "what the reminder is for") || !strings.Contains(res.ResponseText, "when") {
		t.Errorf("response %q should fall back to asking for title and time", res.ResponseText)
	}
}

func TestProcess_SinglePersistFailureIsRetryable(t *testing.T) {
	f := newFixture(
		[]petcatalog.Pet{{ID: "p1", Name: "Luna"}},
		[]scriptStep{
			{fields: reminder.ExtractedFields{Title: strPtr("walk Luna"), DueAt: futureDue()}},
			{fields: reminder.ExtractedFields{}},
		}, Config{})
	f.store.Err = errors.New("db down")
	ctx := context.Background()

	res, err := f.svc.Process(ctx, "user-1", "conv-1", "walk Luna at 8pm", nil)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if res.Completed || res.ContinuationState == nil {
		t.Fatalf("persist failure must keep the draft alive: %+v", res)
	}
	if !strings.Contains(res.ResponseText, "try again") {
		t.Errorf("response %q should invite a retry", res.ResponseText)
	}

	// The store recovers; an empty follow-up turn retries the creation.
	f.store.Err = nil
	res, err = f.svc.Process(ctx, "user-1", "conv-1", "please try again", res.ContinuationState)
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !res.Completed || len(f.store.All()) != 1 {
		t.Fatalf("retry should complete: %+v, records=%d", res, len(f.store.All()))
	}
}

func TestProcess_TurnCapAbandonsFlow(t *testing.T) {
	f := newFixture(
		[]petcatalog.Pet{{ID: "p1", Name: "Luna"}},
		nil, // extractor always returns nothing
		Config{MaxTurns: 2})
	ctx := context.Background()

	var res Result
	var err error
	for i := 0; i < 2; i++ {
		res, err = f.svc.Process(ctx, "user-1", "conv-1", "um", res.ContinuationState)
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
		if res.ContinuationState == nil {
			t.Fatalf("turn %d should keep the flow alive", i+1)
		}
	}

	res, err = f.svc.Process(ctx, "user-1", "conv-1", "um", res.ContinuationState)
	if err != nil {
		t.Fatalf("final turn: %v", err)
	}
	if res.ContinuationState != nil || res.Completed {
		t.Fatalf("exhausted flow must end without completion: %+v", res)
	}
	if !strings.Contains(res.ResponseText, "start over") {
		t.Errorf("response %q should tell the user the flow was set aside", res.ResponseText)
	}
}

func TestProcess_PriorStateRestoresDraft(t *testing.T) {
	f := newFixture(
		[]petcatalog.Pet{{ID: "p1", Name: "Luna"}},
		[]scriptStep{{fields: reminder.ExtractedFields{DueAt: futureDue()}}},
		Config{})

	// Simulate a caller holding continuation state the store no longer has.
	prior := reminder.NewDraft("user-1", "conv-1")
	title := "give Luna her pill"
	prior.Title = &title
	prior.MissingFields = []reminder.FieldName{reminder.FieldDueAt}
	state, err := reminder.EncodeDraft(prior)
	if err != nil {
		t.Fatalf("encode prior: %v", err)
	}

	res, err := f.svc.Process(context.Background(), "user-1", "conv-1", "at 8pm", state)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected completion from restored state: %+v", res)
	}
	if f.store.All()[0].Title != "give Luna her pill" {
		t.Errorf("restored title lost: %+v", f.store.All()[0])
	}
}

func TestProcess_SingleNamedPetCreatesOneRecord(t *testing.T) {
	pets := []petcatalog.Pet{{ID: "p1", Name: "Luna"}, {ID: "p2", Name: "Rex"}}
	f := newFixture(pets, []scriptStep{
		{fields: reminder.ExtractedFields{
			Title:             strPtr("give Luna her pill"),
			DueAt:             futureDue(),
			Entity:            &reminder.EntityRef{ID: "p1"},
			EntityDisplayName: "Luna",
		}},
	}, Config{})

	res, err := f.svc.Process(context.Background(), "user-1", "conv-1", "give Luna her pill at 8pm", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected completion: %+v", res)
	}
	records := f.store.All()
	if len(records) != 1 || records[0].PetID != "p1" {
		t.Fatalf("expected exactly one record for p1, got %+v", records)
	}
	if !strings.Contains(res.ResponseText, "for Luna") {
		t.Errorf("response %q should name the pet", res.ResponseText)
	}
}

func TestProcess_ConcurrentConversationsAreIndependent(t *testing.T) {
	f := newFixture(
		[]petcatalog.Pet{{ID: "p1", Name: "Luna"}},
		nil,
		Config{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conv := string(rune('a' + n))
			if _, err := f.svc.Process(ctx, "user-1", conv, "hello", nil); err != nil {
				t.Errorf("conversation %s: %v", conv, err)
			}
		}(i)
	}
	wg.Wait()
}
