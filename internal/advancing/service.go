package advancing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
	"github.com/DataflowSolutions/Oncore-sub001/internal/shows"
	"github.com/DataflowSolutions/Oncore-sub001/internal/timetext"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	errMissingSyncer   = errors.New("schedule syncer is required")
	errMissingShows    = errors.New("show loader is required")
	noOpLogger         = zap.NewNop()

	// ErrSessionNotFound indicates a session id that does not exist.
	ErrSessionNotFound = errors.New("advancing: session not found")
)

const (
	opServiceNew  = "advancing.service.new"
	opSaveGrid    = "advancing.save_grid"
	opLoadGrid    = "advancing.load_grid"
	opSyncSession = "advancing.sync_session_events"

	updateChunkSize = 10
)

// ServiceError carries a dotted operation.reason code and the underlying cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// EventSyncer replaces the schedule items derived from this session's fields.
type EventSyncer interface {
	SyncDerivedEvents(ctx context.Context, showID string, tag schedule.SourceTag, desired []schedule.EventSpec) (schedule.Outcome, error)
}

// ShowLoader resolves the show a session belongs to.
type ShowLoader interface {
	Get(ctx context.Context, id string) (shows.Show, error)
}

// ServiceConfig describes the service dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	Syncer     EventSyncer
	Shows      ShowLoader
	IDProvider schedule.IDProvider
	Logger     *zap.Logger
}

// Service persists advancing sessions and fields, translates grid-backed
// sections through the codec, and runs the session-wide schedule derivation
// batch.
type Service struct {
	db         *gorm.DB
	syncer     EventSyncer
	shows      ShowLoader
	idProvider schedule.IDProvider
	logger     *zap.Logger
	updateCell func(ctx context.Context, field Field) error
}

// NewService validates dependencies and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.Syncer == nil {
		return nil, newServiceError(opServiceNew, "missing_syncer", errMissingSyncer)
	}
	if cfg.Shows == nil {
		return nil, newServiceError(opServiceNew, "missing_shows", errMissingShows)
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = schedule.NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	service := &Service{
		db:         cfg.Database,
		syncer:     cfg.Syncer,
		shows:      cfg.Shows,
		idProvider: idProvider,
		logger:     logger,
	}
	service.updateCell = service.updateCellValue
	return service, nil
}

// SaveSession creates or updates a session, assigning an id when absent.
func (s *Service) SaveSession(ctx context.Context, session *Session) error {
	if session.ID == "" {
		id, err := s.idProvider.NewID()
		if err != nil {
			return err
		}
		session.ID = id
	}
	return s.db.WithContext(ctx).Save(session).Error
}

// GetSession loads one session by id.
func (s *Service) GetSession(ctx context.Context, id string) (Session, error) {
	var session Session
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

// LoadGrid decodes the stored cells of one grid type into rows, one per
// known row id.
func (s *Service) LoadGrid(ctx context.Context, sessionID, gridType string, knownRowIDs []string) ([]GridRow, error) {
	fields, err := s.listByPrefix(ctx, sessionID, gridType+fieldSeparator)
	if err != nil {
		s.logError(opLoadGrid, "query_failed", err, zap.String("session_id", sessionID), zap.String("grid_type", gridType))
		return nil, newServiceError(opLoadGrid, "query_failed", err)
	}
	return DecodeGrid(gridType, fields, knownRowIDs), nil
}

// SaveOutcome reports a grid save in aggregate. Succeeded writes are never
// rolled back when others fail.
type SaveOutcome struct {
	Inserted      int
	Updated       int
	FailedUpdates int
}

// SaveGrid encodes rows and writes them with one round trip per batch:
// field names already present become updates (issued in parallel, in fixed
// size chunks, one per changed cell), new names become a single bulk insert.
func (s *Service) SaveGrid(ctx context.Context, sessionID, gridType, partyType string, rows []GridRow) (SaveOutcome, error) {
	writes, err := EncodeGrid(gridType, rows)
	if err != nil {
		return SaveOutcome{}, newServiceError(opSaveGrid, "encode_failed", err)
	}

	existing, err := s.listByPrefix(ctx, sessionID, gridType+fieldSeparator)
	if err != nil {
		s.logError(opSaveGrid, "query_failed", err, zap.String("session_id", sessionID), zap.String("grid_type", gridType))
		return SaveOutcome{}, newServiceError(opSaveGrid, "query_failed", err)
	}
	byName := make(map[string]Field, len(existing))
	for _, field := range existing {
		byName[field.FieldName] = field
	}

	inserts := make([]Field, 0)
	updates := make([]Field, 0)
	for _, write := range writes {
		current, present := byName[write.FieldName]
		if !present {
			id, err := s.idProvider.NewID()
			if err != nil {
				return SaveOutcome{}, newServiceError(opSaveGrid, "id_generation_failed", err)
			}
			inserts = append(inserts, Field{
				ID:        id,
				SessionID: sessionID,
				Section:   write.Section,
				FieldName: write.FieldName,
				FieldType: FieldTypeText,
				Value:     write.Value,
				PartyType: partyType,
				Status:    StatusPending,
				SortOrder: write.SortOrder,
			})
			continue
		}
		if current.Value == write.Value {
			continue
		}
		current.Value = write.Value
		updates = append(updates, current)
	}

	outcome := SaveOutcome{}
	if len(inserts) > 0 {
		if err := s.db.WithContext(ctx).Create(&inserts).Error; err != nil {
			s.logError(opSaveGrid, "insert_failed", err, zap.String("session_id", sessionID), zap.Int("cells", len(inserts)))
			return outcome, newServiceError(opSaveGrid, "insert_failed", err)
		}
		outcome.Inserted = len(inserts)
	}

	outcome.Updated, outcome.FailedUpdates = s.applyUpdates(ctx, updates)
	if outcome.FailedUpdates > 0 {
		err := fmt.Errorf("%d of %d cell updates failed", outcome.FailedUpdates, len(updates))
		s.logError(opSaveGrid, "partial_update_failure", err, zap.String("session_id", sessionID))
		return outcome, newServiceError(opSaveGrid, "partial_update_failure", err)
	}
	return outcome, nil
}

// applyUpdates issues one update per changed cell, chunked and parallel
// within each chunk. Failures are counted, not rolled back.
func (s *Service) applyUpdates(ctx context.Context, updates []Field) (succeeded, failed int) {
	for start := 0; start < len(updates); start += updateChunkSize {
		end := start + updateChunkSize
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]

		results := make([]error, len(chunk))
		var wg sync.WaitGroup
		for i, field := range chunk {
			wg.Add(1)
			go func(i int, field Field) {
				defer wg.Done()
				results[i] = s.updateCell(ctx, field)
			}(i, field)
		}
		wg.Wait()

		for _, err := range results {
			if err != nil {
				failed++
				continue
			}
			succeeded++
		}
	}
	return succeeded, failed
}

func (s *Service) updateCellValue(ctx context.Context, field Field) error {
	return s.db.WithContext(ctx).
		Model(&Field{}).
		Where("id = ?", field.ID).
		Update("value", field.Value).Error
}

// SyncSessionEvents scans the session's time- and text-typed fields for clock
// times and replaces the schedule items tagged to this session. Items derived
// from other sources are untouched.
func (s *Service) SyncSessionEvents(ctx context.Context, sessionID string) (schedule.Outcome, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		s.logError(opSyncSession, "session_load_failed", err, zap.String("session_id", sessionID))
		return schedule.Outcome{}, newServiceError(opSyncSession, "session_load_failed", err)
	}

	show, err := s.shows.Get(ctx, session.ShowID)
	if err != nil {
		s.logError(opSyncSession, "show_load_failed", err, zap.String("session_id", sessionID))
		return schedule.Outcome{}, newServiceError(opSyncSession, "show_load_failed", err)
	}
	loc, err := show.Location()
	if err != nil {
		s.logError(opSyncSession, "bad_timezone", err, zap.String("show_id", show.ID))
		return schedule.Outcome{}, newServiceError(opSyncSession, "bad_timezone", err)
	}
	showDate, err := time.ParseInLocation("2006-01-02", show.Date, loc)
	if err != nil {
		s.logError(opSyncSession, "bad_show_date", err, zap.String("show_id", show.ID))
		return schedule.Outcome{}, newServiceError(opSyncSession, "bad_show_date", err)
	}

	var fields []Field
	err = s.db.WithContext(ctx).
		Where("session_id = ? AND field_type IN ? AND value <> ''", sessionID, []string{FieldTypeTime, FieldTypeText}).
		Order("sort_order ASC, field_name ASC").
		Find(&fields).Error
	if err != nil {
		s.logError(opSyncSession, "fields_query_failed", err, zap.String("session_id", sessionID))
		return schedule.Outcome{}, newServiceError(opSyncSession, "fields_query_failed", err)
	}

	specs := make([]schedule.EventSpec, 0, len(fields))
	for _, field := range fields {
		clock, ok := fieldClock(field)
		if !ok {
			continue
		}
		starts := time.Date(showDate.Year(), showDate.Month(), showDate.Day(), clock.Hour, clock.Minute, 0, 0, loc)
		specs = append(specs, schedule.EventSpec{
			Title:    field.FieldName,
			StartsAt: starts,
			Notes:    sectionNote(field),
			ItemType: schedule.SourceAdvancing,
		})
	}

	tag := schedule.SourceTag{Source: schedule.SourceAdvancing, SourceRef: sessionID}
	outcome, err := s.syncer.SyncDerivedEvents(ctx, show.ID, tag, specs)
	if err != nil {
		s.logError(opSyncSession, "sync_failed", err, zap.String("session_id", sessionID))
		return outcome, newServiceError(opSyncSession, "sync_failed", err)
	}
	return outcome, nil
}

func fieldClock(field Field) (timetext.TimeOfDay, bool) {
	if field.FieldType == FieldTypeTime {
		return timetext.ParseClock(field.Value)
	}
	return timetext.Extract(field.Value)
}

func sectionNote(field Field) string {
	parts := make([]string, 0, 2)
	if field.Section != "" {
		parts = append(parts, field.Section)
	}
	if field.PartyType != "" {
		parts = append(parts, field.PartyType)
	}
	return strings.Join(parts, " · ")
}

func (s *Service) listByPrefix(ctx context.Context, sessionID, prefix string) ([]Field, error) {
	// LIKE treats "_" as a single-character wildcard, and grid prefixes are
	// full of underscores, so the prefix match happens in Go instead.
	var all []Field
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sort_order ASC, field_name ASC").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	matched := make([]Field, 0, len(all))
	for _, field := range all {
		if strings.HasPrefix(field.FieldName, prefix) {
			matched = append(matched, field)
		}
	}
	return matched, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("advancing service error", attrs...)
}
