package dialogue

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pawpal/internal/petcatalog"
	"pawpal/internal/reminder"
)

// target is one pet a completed draft fans out to. An empty petID means an
// entity-agnostic reminder.
type target struct {
	petID string
	name  string
}

// resolveTargets maps the draft's entity reference onto concrete pets.
func resolveTargets(draft reminder.Draft, catalog []petcatalog.Pet) []target {
	switch {
	case draft.Entity == nil:
		return []target{{}}
	case draft.Entity.All:
		if len(catalog) == 0 {
			return []target{{}}
		}
		targets := make([]target, 0, len(catalog))
		for _, p := range catalog {
			targets = append(targets, target{petID: p.ID, name: p.Name})
		}
		return targets
	default:
		return []target{{petID: draft.Entity.ID, name: draft.EntityDisplayName}}
	}
}

// createReminders runs the resolve → create → compose tail of the state
// machine. Broadcast creations are independent writes to independent
// records: they run concurrently, are never retried, and failures never
// roll back siblings.
func (s *Service) createReminders(ctx context.Context, draft reminder.Draft, catalog []petcatalog.Pet, loc *time.Location) (Result, error) {
	draft.State = reminder.StateResolving
	targets := resolveTargets(draft, catalog)
	broadcast := draft.Entity != nil && draft.Entity.All && len(targets) > 1

	ctx, span := s.tracer.Start(ctx, "dialogue.create")
	defer span.End()
	draft.State = reminder.StateCreating

	base := reminder.Reminder{
		UserID:     draft.UserID,
		Title:      *draft.Title,
		DueAt:      draft.DueAt.UTC(),
		Recurrence: draft.RecurrenceOrDefault(),
		Kind:       draft.KindOrDefault(),
		Status:     reminder.StatusPending,
		Source:     reminder.SourceConversational,
		CreatedAt:  s.now().UTC(),
	}
	if draft.Description != nil {
		base.Description = *draft.Description
	}

	var (
		mu       sync.Mutex
		outcome  reminder.BroadcastResult
		recordID string
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			rec := base
			rec.PetID = t.petID
			id, err := s.reminders.Create(gctx, rec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("reminder create failed for pet %q: %v", t.name, err)
				outcome.Failed = append(outcome.Failed, t.name)
				return nil
			}
			if recordID == "" {
				recordID = id
			}
			outcome.Succeeded = append(outcome.Succeeded, t.name)
			return nil
		})
	}
	// Goroutines report per-pet outcomes instead of errors, so Wait cannot
	// fail.
	_ = g.Wait()
	sortByCatalogOrder(outcome.Succeeded, targets)
	sortByCatalogOrder(outcome.Failed, targets)

	if len(outcome.Succeeded) == 0 {
		// Nothing persisted: the draft stays alive so the user can retry.
		draft.State = reminder.StateCollecting
		return s.respondAndSave(ctx, draft, reminder.Outcome{
			Draft:         draft,
			Catalog:       catalog,
			Location:      loc,
			PersistFailed: true,
		})
	}

	draft.Completed = true
	draft.CreatedRecordID = recordID
	draft.State = reminder.StateComplete
	remindersCreated.Add(float64(len(outcome.Succeeded)))
	if outcome.Partial() {
		broadcastPartial.Inc()
	}
	if err := s.drafts.Delete(ctx, draft.ConversationID); err != nil {
		s.logger.Warn("draft cleanup failed for conversation %s: %v", draft.ConversationID, err)
	}

	o := reminder.Outcome{Draft: draft, Catalog: catalog, Location: loc}
	if broadcast {
		o.Broadcast = &outcome
	}
	return Result{
		ResponseText: reminder.Compose(o),
		Completed:    true,
	}, nil
}

// sortByCatalogOrder orders collected names by their target order so
// responses read the same way the catalog lists pets.
func sortByCatalogOrder(names []string, targets []target) {
	rank := make(map[string]int, len(targets))
	for i, t := range targets {
		rank[t.name] = i
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && rank[names[j]] < rank[names[j-1]]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
