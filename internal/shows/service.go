package shows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
)

var (
	// ErrNotFound indicates a show id that does not exist.
	ErrNotFound = errors.New("shows: show not found")
	// ErrInvalidDate indicates a show date that is not a 2006-01-02 civil date.
	ErrInvalidDate = errors.New("shows: invalid date")

	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceConfig describes the service dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	IDProvider schedule.IDProvider
	Logger     *zap.Logger
}

// Service persists shows.
type Service struct {
	db         *gorm.DB
	idProvider schedule.IDProvider
	logger     *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("shows: %w", errMissingDatabase)
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = schedule.NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, idProvider: idProvider, logger: logger}, nil
}

// Save creates or updates a show, assigning an id when absent.
func (s *Service) Save(ctx context.Context, show *Show) error {
	if _, err := time.Parse("2006-01-02", show.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, show.Date)
	}
	if show.Timezone != "" {
		if _, err := time.LoadLocation(show.Timezone); err != nil {
			return fmt.Errorf("shows: unknown timezone %q: %w", show.Timezone, err)
		}
	}
	if show.ID == "" {
		id, err := s.idProvider.NewID()
		if err != nil {
			s.logger.Error("show id generation failed", zap.Error(err))
			return err
		}
		show.ID = id
	}
	if err := s.db.WithContext(ctx).Save(show).Error; err != nil {
		s.logger.Error("show save failed", zap.Error(err), zap.String("show_id", show.ID))
		return err
	}
	return nil
}

// Get loads one show by id.
func (s *Service) Get(ctx context.Context, id string) (Show, error) {
	var show Show
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&show).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Show{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		s.logger.Error("show query failed", zap.Error(err), zap.String("show_id", id))
		return Show{}, err
	}
	return show, nil
}

// List returns all shows ordered by date.
func (s *Service) List(ctx context.Context) ([]Show, error) {
	var all []Show
	if err := s.db.WithContext(ctx).Order("date ASC").Find(&all).Error; err != nil {
		s.logger.Error("show list failed", zap.Error(err))
		return nil, err
	}
	return all, nil
}
