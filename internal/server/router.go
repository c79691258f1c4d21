package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DataflowSolutions/Oncore-sub001/internal/advancing"
	"github.com/DataflowSolutions/Oncore-sub001/internal/logistics"
	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
	"github.com/DataflowSolutions/Oncore-sub001/internal/shows"
	"github.com/DataflowSolutions/Oncore-sub001/internal/timeline"
)

const userIDContextKey = "oncore_user_id"

var (
	errMissingTokenManager = errors.New("token manager dependency required")
	errMissingShows        = errors.New("shows service dependency required")
	errMissingLogistics    = errors.New("logistics service dependency required")
	errMissingAdvancing    = errors.New("advancing service dependency required")
	errMissingSchedule     = errors.New("schedule store dependency required")
	errInvalidAuth         = errors.New("authorization header missing or invalid")
)

// TokenManager validates the bearer tokens minted by the identity collaborator.
type TokenManager interface {
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP surface to the domain services.
type Dependencies struct {
	TokenManager TokenManager
	Shows        *shows.Service
	Logistics    *logistics.Service
	Advancing    *advancing.Service
	Schedule     *schedule.Store
	IDProvider   schedule.IDProvider
	Logger       *zap.Logger
}

// NewHTTPHandler validates dependencies and builds the router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Shows == nil {
		return nil, errMissingShows
	}
	if deps.Logistics == nil {
		return nil, errMissingLogistics
	}
	if deps.Advancing == nil {
		return nil, errMissingAdvancing
	}
	if deps.Schedule == nil {
		return nil, errMissingSchedule
	}
	idProvider := deps.IDProvider
	if idProvider == nil {
		idProvider = schedule.NewUUIDProvider()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:     deps.TokenManager,
		shows:      deps.Shows,
		logistics:  deps.Logistics,
		advancing:  deps.Advancing,
		schedule:   deps.Schedule,
		idProvider: idProvider,
		logger:     logger,
	}

	router.GET("/health", handler.handleHealth)

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)

	protected.POST("/shows", handler.handleSaveShow)
	protected.GET("/shows", handler.handleListShows)
	protected.GET("/shows/:id", handler.handleGetShow)
	protected.GET("/shows/:id/schedule", handler.handleListSchedule)
	protected.POST("/shows/:id/schedule", handler.handleCreateScheduleItem)
	protected.GET("/shows/:id/timeline", handler.handleDayTimeline)
	protected.GET("/shows/:id/dates", handler.handleEventDates)

	protected.GET("/shows/:id/flights", handler.handleListFlights)
	protected.POST("/shows/:id/flights", handler.handleSaveFlight)
	protected.PUT("/flights/:id", handler.handleUpdateFlight)
	protected.DELETE("/flights/:id", handler.handleDeleteFlight)

	protected.POST("/shows/:id/lodging", handler.handleSaveLodging)
	protected.PUT("/lodging/:id", handler.handleUpdateLodging)
	protected.DELETE("/lodging/:id", handler.handleDeleteLodging)

	protected.POST("/shows/:id/catering", handler.handleSaveCatering)
	protected.PUT("/catering/:id", handler.handleUpdateCatering)
	protected.DELETE("/catering/:id", handler.handleDeleteCatering)

	protected.POST("/sessions", handler.handleSaveSession)
	protected.GET("/sessions/:id/grids/:gridType", handler.handleLoadGrid)
	protected.PUT("/sessions/:id/grids/:gridType", handler.handleSaveGrid)
	protected.POST("/sessions/:id/schedule-sync", handler.handleSessionScheduleSync)

	return router, nil
}

type httpHandler struct {
	tokens     TokenManager
	shows      *shows.Service
	logistics  *logistics.Service
	advancing  *advancing.Service
	schedule   *schedule.Store
	idProvider schedule.IDProvider
	logger     *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuth.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuth.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, subject)
	c.Next()
}

type showPayload struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Date     string     `json:"date"`
	Venue    string     `json:"venue"`
	City     string     `json:"city"`
	Timezone string     `json:"timezone"`
	DoorsAt  *time.Time `json:"doors_at"`
	SetTime  *time.Time `json:"set_time"`
}

func (h *httpHandler) handleSaveShow(c *gin.Context) {
	var request showPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	show := shows.Show{
		ID:       request.ID,
		Title:    request.Title,
		Date:     request.Date,
		Venue:    request.Venue,
		City:     request.City,
		Timezone: request.Timezone,
		DoorsAt:  request.DoorsAt,
		SetTime:  request.SetTime,
	}
	if err := h.shows.Save(c.Request.Context(), &show); err != nil {
		if errors.Is(err, shows.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
			return
		}
		h.logger.Error("failed to save show", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}
	c.JSON(http.StatusOK, show)
}

func (h *httpHandler) handleListShows(c *gin.Context) {
	all, err := h.shows.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list shows", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shows": all})
}

func (h *httpHandler) handleGetShow(c *gin.Context) {
	show, err := h.shows.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shows.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		h.logger.Error("failed to load show", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load_failed"})
		return
	}
	c.JSON(http.StatusOK, show)
}

func (h *httpHandler) handleListSchedule(c *gin.Context) {
	items, err := h.schedule.ListForShow(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("failed to list schedule items", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type scheduleItemPayload struct {
	Title      string     `json:"title"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	Location   string     `json:"location"`
	Notes      string     `json:"notes"`
	ItemType   string     `json:"item_type"`
	Visibility string     `json:"visibility"`
}

// handleCreateScheduleItem creates a manual item. Manual items never carry a
// provenance tag and are invisible to the sync writer.
func (h *httpHandler) handleCreateScheduleItem(c *gin.Context) {
	var request scheduleItemPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Title) == "" || request.StartsAt.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	id, err := h.idProvider.NewID()
	if err != nil {
		h.logger.Error("failed to generate item id", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}
	visibility := request.Visibility
	if visibility == "" {
		visibility = schedule.VisibilityAll
	}
	item := schedule.Item{
		ID:         id,
		ShowID:     c.Param("id"),
		Title:      request.Title,
		StartsAt:   request.StartsAt,
		EndsAt:     request.EndsAt,
		Location:   request.Location,
		Notes:      request.Notes,
		ItemType:   request.ItemType,
		Visibility: visibility,
	}
	if err := h.schedule.Insert(c.Request.Context(), &item); err != nil {
		h.logger.Error("failed to create schedule item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type slotPayload struct {
	Label  string           `json:"label"`
	Events []timeline.Event `json:"events"`
}

type timelinePayload struct {
	Date        string        `json:"date"`
	Slots       []slotPayload `json:"slots"`
	FullDayGrid []slotPayload `json:"full_day_grid"`
}

// handleDayTimeline projects one local calendar day of the show into time
// slots. The day defaults to the show's own date.
func (h *httpHandler) handleDayTimeline(c *gin.Context) {
	ctx := c.Request.Context()
	show, err := h.shows.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, shows.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		h.logger.Error("failed to load show", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load_failed"})
		return
	}
	loc, err := show.Location()
	if err != nil {
		h.logger.Error("show has invalid timezone", zap.Error(err), zap.String("show_id", show.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bad_timezone"})
		return
	}

	date := c.DefaultQuery("date", show.Date)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}

	events, err := h.collectShowEvents(c, show)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	projection := timeline.Project(timeline.FilterToDay(events, day, loc), loc)
	c.JSON(http.StatusOK, timelinePayload{
		Date:        date,
		Slots:       toSlotPayloads(projection.Slots),
		FullDayGrid: toSlotPayloads(projection.FullDayGrid),
	})
}

// handleEventDates returns the distinct local dates with at least one event:
// the show's own date (when it carries doors or set time), every schedule
// item's date, and every flight's date.
func (h *httpHandler) handleEventDates(c *gin.Context) {
	ctx := c.Request.Context()
	show, err := h.shows.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, shows.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		h.logger.Error("failed to load show", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load_failed"})
		return
	}
	loc, err := show.Location()
	if err != nil {
		h.logger.Error("show has invalid timezone", zap.Error(err), zap.String("show_id", show.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bad_timezone"})
		return
	}

	events, err := h.collectShowEvents(c, show)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	for _, flight := range h.listFlightEvents(c, show.ID) {
		events = append(events, flight)
	}

	c.JSON(http.StatusOK, gin.H{"dates": timeline.EventDates(events, loc)})
}

// collectShowEvents gathers the projector input in discovery order: show
// times first, then persisted schedule items.
func (h *httpHandler) collectShowEvents(c *gin.Context, show shows.Show) ([]timeline.Event, error) {
	events := show.TimeEvents()

	items, err := h.schedule.ListForShow(c.Request.Context(), show.ID)
	if err != nil {
		h.logger.Error("failed to list schedule items", zap.Error(err), zap.String("show_id", show.ID))
		return nil, err
	}
	for _, item := range items {
		kind := "schedule"
		if item.AutoGenerated {
			kind = item.Source
		}
		events = append(events, timeline.Event{
			ID:       item.ID,
			Title:    item.Title,
			Kind:     kind,
			Time:     item.StartsAt,
			EndTime:  item.EndsAt,
			Location: item.Location,
		})
	}
	return events, nil
}

// listFlightEvents exposes flight records directly as dated events for the
// date picker; unresolvable departures are skipped.
func (h *httpHandler) listFlightEvents(c *gin.Context, showID string) []timeline.Event {
	flights, err := h.logistics.ListFlights(c.Request.Context(), showID)
	if err != nil {
		h.logger.Warn("failed to list flights for dates", zap.Error(err), zap.String("show_id", showID))
		return nil
	}
	events := make([]timeline.Event, 0, len(flights))
	for _, flight := range flights {
		if flight.DepartsAt == nil {
			continue
		}
		events = append(events, timeline.Event{
			ID:      flight.ID,
			Title:   flight.FlightNumber,
			Kind:    "flight",
			Time:    *flight.DepartsAt,
			EndTime: flight.ArrivesAt,
		})
	}
	return events
}

func toSlotPayloads(slots []timeline.Slot) []slotPayload {
	payloads := make([]slotPayload, 0, len(slots))
	for _, slot := range slots {
		events := slot.Events
		if events == nil {
			events = []timeline.Event{}
		}
		payloads = append(payloads, slotPayload{Label: slot.Label, Events: events})
	}
	return payloads
}
