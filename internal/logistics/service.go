package logistics

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	errMissingSyncer   = errors.New("schedule syncer is required")
	errMissingShowID   = errors.New("show identifier is required")
	noOpLogger         = zap.NewNop()

	// ErrNotFound indicates a logistics record id that does not exist.
	ErrNotFound = errors.New("logistics: record not found")
)

const (
	opServiceNew = "logistics.service.new"
	opSave       = "logistics.save"
	opDelete     = "logistics.delete"
	opList       = "logistics.list"
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

// EventSyncer re-derives a record's calendar footprint after a write.
type EventSyncer interface {
	SyncDerivedEvents(ctx context.Context, showID string, tag schedule.SourceTag, desired []schedule.EventSpec) (schedule.Outcome, error)
}

// ServiceConfig describes the service dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	Syncer     EventSyncer
	IDProvider schedule.IDProvider
	Logger     *zap.Logger
}

// Service persists logistics records and keeps their derived schedule items
// consistent on every create, update, and delete.
type Service struct {
	db         *gorm.DB
	syncer     EventSyncer
	idProvider schedule.IDProvider
	logger     *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.Syncer == nil {
		return nil, newServiceError(opServiceNew, "missing_syncer", errMissingSyncer)
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = schedule.NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, syncer: cfg.Syncer, idProvider: idProvider, logger: logger}, nil
}

// SaveFlight creates or updates a flight and re-derives its footprint.
func (s *Service) SaveFlight(ctx context.Context, flight *Flight) error {
	if flight.ShowID == "" {
		return newServiceError(opSave, "missing_show_id", errMissingShowID)
	}
	if err := s.saveRecord(ctx, &flight.ID, flight); err != nil {
		return err
	}
	return s.resync(ctx, flight.ShowID, flight.Tag(), flight.EventSpecs())
}

// DeleteFlight removes a flight and cascades the deletion to its derived items.
func (s *Service) DeleteFlight(ctx context.Context, id string) error {
	var flight Flight
	if err := s.loadRecord(ctx, id, &flight); err != nil {
		return err
	}
	if err := s.deleteRecord(ctx, id, &Flight{}); err != nil {
		return err
	}
	return s.resync(ctx, flight.ShowID, flight.Tag(), nil)
}

// ListFlights returns a show's flights ordered by departure.
func (s *Service) ListFlights(ctx context.Context, showID string) ([]Flight, error) {
	var flights []Flight
	err := s.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("departs_at ASC").
		Find(&flights).Error
	if err != nil {
		s.logError(opList, "flights_query_failed", err, zap.String("show_id", showID))
		return nil, newServiceError(opList, "flights_query_failed", err)
	}
	return flights, nil
}

// SaveLodging creates or updates a lodging record and re-derives its footprint.
func (s *Service) SaveLodging(ctx context.Context, lodging *Lodging) error {
	if lodging.ShowID == "" {
		return newServiceError(opSave, "missing_show_id", errMissingShowID)
	}
	if err := s.saveRecord(ctx, &lodging.ID, lodging); err != nil {
		return err
	}
	return s.resync(ctx, lodging.ShowID, lodging.Tag(), lodging.EventSpecs())
}

// DeleteLodging removes a lodging record and its derived items.
func (s *Service) DeleteLodging(ctx context.Context, id string) error {
	var lodging Lodging
	if err := s.loadRecord(ctx, id, &lodging); err != nil {
		return err
	}
	if err := s.deleteRecord(ctx, id, &Lodging{}); err != nil {
		return err
	}
	return s.resync(ctx, lodging.ShowID, lodging.Tag(), nil)
}

// SaveCatering creates or updates a catering record and re-derives its footprint.
func (s *Service) SaveCatering(ctx context.Context, catering *Catering) error {
	if catering.ShowID == "" {
		return newServiceError(opSave, "missing_show_id", errMissingShowID)
	}
	if err := s.saveRecord(ctx, &catering.ID, catering); err != nil {
		return err
	}
	return s.resync(ctx, catering.ShowID, catering.Tag(), catering.EventSpecs())
}

// DeleteCatering removes a catering record and its derived items.
func (s *Service) DeleteCatering(ctx context.Context, id string) error {
	var catering Catering
	if err := s.loadRecord(ctx, id, &catering); err != nil {
		return err
	}
	if err := s.deleteRecord(ctx, id, &Catering{}); err != nil {
		return err
	}
	return s.resync(ctx, catering.ShowID, catering.Tag(), nil)
}

// saveRecord assigns an id to new records. A preset id is an update and the
// row must already exist; Save alone would upsert and mint phantom records.
func (s *Service) saveRecord(ctx context.Context, id *string, record interface{}) error {
	if *id == "" {
		newID, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opSave, "id_generation_failed", err)
			return newServiceError(opSave, "id_generation_failed", err)
		}
		*id = newID
	} else {
		var count int64
		if err := s.db.WithContext(ctx).Model(record).Where("id = ?", *id).Count(&count).Error; err != nil {
			s.logError(opSave, "load_failed", err, zap.String("record_id", *id))
			return newServiceError(opSave, "load_failed", err)
		}
		if count == 0 {
			return newServiceError(opSave, "not_found", fmt.Errorf("%w: %s", ErrNotFound, *id))
		}
	}
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		s.logError(opSave, "save_failed", err, zap.String("record_id", *id))
		return newServiceError(opSave, "save_failed", err)
	}
	return nil
}

func (s *Service) loadRecord(ctx context.Context, id string, record interface{}) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newServiceError(opDelete, "not_found", fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if err != nil {
		s.logError(opDelete, "load_failed", err, zap.String("record_id", id))
		return newServiceError(opDelete, "load_failed", err)
	}
	return nil
}

func (s *Service) deleteRecord(ctx context.Context, id string, model interface{}) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(model).Error; err != nil {
		s.logError(opDelete, "delete_failed", err, zap.String("record_id", id))
		return newServiceError(opDelete, "delete_failed", err)
	}
	return nil
}

func (s *Service) resync(ctx context.Context, showID string, tag schedule.SourceTag, specs []schedule.EventSpec) error {
	if _, err := s.syncer.SyncDerivedEvents(ctx, showID, tag, specs); err != nil {
		s.logError(opSave, "sync_failed", err,
			zap.String("show_id", showID),
			zap.String("source", tag.Source),
			zap.String("source_ref", tag.SourceRef))
		return newServiceError(opSave, "sync_failed", err)
	}
	return nil
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
	s.logger.Error("logistics service error", attrs...)
}
