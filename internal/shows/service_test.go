package shows

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:oncore_shows_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Show{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func TestSaveAssignsIDAndRoundTrips(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	show := Show{Title: "Red Rocks", Date: "2024-05-01", Timezone: "America/Denver"}
	if err := service.Save(ctx, &show); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if show.ID == "" {
		t.Fatalf("expected an assigned id")
	}

	loaded, err := service.Get(ctx, show.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.Title != "Red Rocks" || loaded.Timezone != "America/Denver" {
		t.Fatalf("unexpected show: %+v", loaded)
	}
}

func TestSaveRejectsBadDateAndTimezone(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	err := service.Save(ctx, &Show{Title: "Bad", Date: "05/01/2024"})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	if err := service.Save(ctx, &Show{Title: "Bad", Date: "2024-05-01", Timezone: "Mars/Olympus"}); err == nil {
		t.Fatalf("expected unknown timezone error")
	}
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimeEventsOrdering(t *testing.T) {
	doors := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)
	set := time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC)
	show := Show{ID: "show-1", DoorsAt: &doors, SetTime: &set}

	events := show.TimeEvents()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "Doors" || events[1].Title != "Set Time" {
		t.Fatalf("unexpected order: %s, %s", events[0].Title, events[1].Title)
	}

	if events := (Show{ID: "show-2"}).TimeEvents(); len(events) != 0 {
		t.Fatalf("show without times must produce no events")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	loc, err := (Show{}).Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC fallback, got %v, %v", loc, err)
	}
}
