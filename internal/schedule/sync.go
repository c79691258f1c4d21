// Package schedule keeps a show's calendar consistent with the logistics
// records that imply events on it. The writer replaces, per provenance tag,
// the full set of auto-generated items each time a source record changes.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	errMissingStore      = errors.New("item store is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingTag        = errors.New("source tag is required")
	noOpLogger           = zap.NewNop()
)

const (
	opSyncerNew   = "schedule.syncer.new"
	opSyncDerived = "schedule.sync_derived_events"
)

// SyncError carries a dotted operation.reason code and the underlying cause.
type SyncError struct {
	code string
	err  error
}

func (e *SyncError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *SyncError) Unwrap() error {
	return e.err
}

func (e *SyncError) Code() string {
	return e.code
}

func newSyncError(operation, reason string, cause error) error {
	return &SyncError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// ItemStore is the slice of the record store the writer needs.
type ItemStore interface {
	ListByTag(ctx context.Context, tag SourceTag) ([]Item, error)
	DeleteByID(ctx context.Context, id string) error
	Insert(ctx context.Context, item *Item) error
}

// IDProvider issues identifiers for newly created items.
type IDProvider interface {
	NewID() (string, error)
}

// SyncerConfig describes the writer's dependencies.
type SyncerConfig struct {
	Store      ItemStore
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Syncer reconciles auto-generated schedule items against the events a
// logistics record currently implies.
type Syncer struct {
	store      ItemStore
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewSyncer validates dependencies and constructs a Syncer.
func NewSyncer(cfg SyncerConfig) (*Syncer, error) {
	if cfg.Store == nil {
		return nil, newSyncError(opSyncerNew, "missing_store", errMissingStore)
	}
	if cfg.IDProvider == nil {
		return nil, newSyncError(opSyncerNew, "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Syncer{store: cfg.Store, clock: clock, idProvider: cfg.IDProvider, logger: logger}, nil
}

// Outcome summarizes one sync run.
type Outcome struct {
	Unchanged     bool
	Deleted       int
	Created       int
	Skipped       int
	FailedDeletes int
}

// SyncDerivedEvents makes the stored item set for the tag equal to the set
// desired implies. Existing items are deleted one by one and replacements
// created; when the stored set already matches, the round trip is skipped
// entirely (which also preserves ids in the steady state). Specs without a
// resolvable timestamp are skipped silently. The delete/create sequence is
// not transactional; a failure in between leaves fewer events until the
// next edit of the source record re-triggers the sync.
func (s *Syncer) SyncDerivedEvents(ctx context.Context, showID string, tag SourceTag, desired []EventSpec) (Outcome, error) {
	if tag.Source == "" || tag.SourceRef == "" {
		s.logError(opSyncDerived, "missing_tag", errMissingTag, zap.String("show_id", showID))
		return Outcome{}, newSyncError(opSyncDerived, "missing_tag", errMissingTag)
	}

	resolvable := make([]EventSpec, 0, len(desired))
	skipped := 0
	for _, spec := range desired {
		if !spec.Resolvable() {
			skipped++
			continue
		}
		resolvable = append(resolvable, spec)
	}

	existing, err := s.store.ListByTag(ctx, tag)
	if err != nil {
		s.logError(opSyncDerived, "list_failed", err, tagFields(showID, tag)...)
		return Outcome{}, newSyncError(opSyncDerived, "list_failed", err)
	}

	if setsMatch(existing, resolvable) {
		return Outcome{Unchanged: true, Skipped: skipped}, nil
	}

	outcome := Outcome{Skipped: skipped}
	for _, item := range existing {
		if err := s.store.DeleteByID(ctx, item.ID); err != nil {
			outcome.FailedDeletes++
			s.logError(opSyncDerived, "delete_failed", err, append(tagFields(showID, tag), zap.String("item_id", item.ID))...)
			continue
		}
		outcome.Deleted++
	}
	if outcome.FailedDeletes > 0 {
		return outcome, newSyncError(opSyncDerived, "delete_failed",
			fmt.Errorf("%d of %d deletions failed", outcome.FailedDeletes, len(existing)))
	}

	now := s.clock().UTC()
	for _, spec := range resolvable {
		id, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opSyncDerived, "id_generation_failed", err, tagFields(showID, tag)...)
			return outcome, newSyncError(opSyncDerived, "id_generation_failed", err)
		}
		item := Item{
			ID:            id,
			ShowID:        showID,
			Title:         spec.Title,
			StartsAt:      spec.StartsAt,
			EndsAt:        spec.EndsAt,
			Location:      spec.Location,
			Notes:         spec.Notes,
			ItemType:      spec.ItemType,
			Visibility:    VisibilityAll,
			AutoGenerated: true,
			Source:        tag.Source,
			SourceRef:     tag.SourceRef,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.store.Insert(ctx, &item); err != nil {
			s.logError(opSyncDerived, "insert_failed", err, append(tagFields(showID, tag), zap.String("title", spec.Title))...)
			return outcome, newSyncError(opSyncDerived, "insert_failed", err)
		}
		outcome.Created++
	}

	return outcome, nil
}

// setsMatch reports whether existing already embodies desired: same
// cardinality, and every spec claims a distinct matching item.
func setsMatch(existing []Item, desired []EventSpec) bool {
	if len(existing) != len(desired) {
		return false
	}
	claimed := make([]bool, len(existing))
	for _, spec := range desired {
		found := false
		for i, item := range existing {
			if claimed[i] || !spec.matches(item) {
				continue
			}
			claimed[i] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

func tagFields(showID string, tag SourceTag) []zap.Field {
	return []zap.Field{
		zap.String("show_id", showID),
		zap.String("source", tag.Source),
		zap.String("source_ref", tag.SourceRef),
	}
}

func (s *Syncer) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("schedule sync error", attrs...)
}
