package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DataflowSolutions/Oncore-sub001/internal/logistics"
)

type flightPayload struct {
	ID               string     `json:"id"`
	ShowID           string     `json:"show_id"`
	PersonID         *string    `json:"person_id"`
	Airline          string     `json:"airline"`
	FlightNumber     string     `json:"flight_number"`
	DepartureAirport string     `json:"departure_airport"`
	ArrivalAirport   string     `json:"arrival_airport"`
	Direction        string     `json:"direction"`
	DepartsAt        *time.Time `json:"departs_at"`
	ArrivesAt        *time.Time `json:"arrives_at"`
	Notes            string     `json:"notes"`
}

func (p flightPayload) toRecord(showID string) logistics.Flight {
	return logistics.Flight{
		ID:               p.ID,
		ShowID:           showID,
		PersonID:         p.PersonID,
		Airline:          p.Airline,
		FlightNumber:     p.FlightNumber,
		DepartureAirport: p.DepartureAirport,
		ArrivalAirport:   p.ArrivalAirport,
		Direction:        p.Direction,
		DepartsAt:        p.DepartsAt,
		ArrivesAt:        p.ArrivesAt,
		Notes:            p.Notes,
	}
}

func (h *httpHandler) handleListFlights(c *gin.Context) {
	flights, err := h.logistics.ListFlights(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("failed to list flights", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flights": flights})
}

func (h *httpHandler) handleSaveFlight(c *gin.Context) {
	var request flightPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	flight := request.toRecord(c.Param("id"))
	flight.ID = ""
	if err := h.logistics.SaveFlight(c.Request.Context(), &flight); err != nil {
		h.respondLogisticsError(c, "failed to save flight", err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *httpHandler) handleUpdateFlight(c *gin.Context) {
	var request flightPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.ShowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	flight := request.toRecord(request.ShowID)
	flight.ID = c.Param("id")
	if err := h.logistics.SaveFlight(c.Request.Context(), &flight); err != nil {
		h.respondLogisticsError(c, "failed to update flight", err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *httpHandler) handleDeleteFlight(c *gin.Context) {
	if err := h.logistics.DeleteFlight(c.Request.Context(), c.Param("id")); err != nil {
		h.respondLogisticsError(c, "failed to delete flight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type lodgingPayload struct {
	ID         string     `json:"id"`
	ShowID     string     `json:"show_id"`
	PersonID   *string    `json:"person_id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	CheckInAt  *time.Time `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at"`
	Notes      string     `json:"notes"`
}

func (h *httpHandler) handleSaveLodging(c *gin.Context) {
	var request lodgingPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	lodging := logistics.Lodging{
		ShowID:     c.Param("id"),
		PersonID:   request.PersonID,
		Name:       request.Name,
		Address:    request.Address,
		CheckInAt:  request.CheckInAt,
		CheckOutAt: request.CheckOutAt,
		Notes:      request.Notes,
	}
	if err := h.logistics.SaveLodging(c.Request.Context(), &lodging); err != nil {
		h.respondLogisticsError(c, "failed to save lodging", err)
		return
	}
	c.JSON(http.StatusOK, lodging)
}

func (h *httpHandler) handleUpdateLodging(c *gin.Context) {
	var request lodgingPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.ShowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	lodging := logistics.Lodging{
		ID:         c.Param("id"),
		ShowID:     request.ShowID,
		PersonID:   request.PersonID,
		Name:       request.Name,
		Address:    request.Address,
		CheckInAt:  request.CheckInAt,
		CheckOutAt: request.CheckOutAt,
		Notes:      request.Notes,
	}
	if err := h.logistics.SaveLodging(c.Request.Context(), &lodging); err != nil {
		h.respondLogisticsError(c, "failed to update lodging", err)
		return
	}
	c.JSON(http.StatusOK, lodging)
}

func (h *httpHandler) handleDeleteLodging(c *gin.Context) {
	if err := h.logistics.DeleteLodging(c.Request.Context(), c.Param("id")); err != nil {
		h.respondLogisticsError(c, "failed to delete lodging", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type cateringPayload struct {
	ID        string     `json:"id"`
	ShowID    string     `json:"show_id"`
	Provider  string     `json:"provider"`
	MealType  string     `json:"meal_type"`
	ServesAt  *time.Time `json:"serves_at"`
	Headcount int        `json:"headcount"`
	Notes     string     `json:"notes"`
}

func (h *httpHandler) handleSaveCatering(c *gin.Context) {
	var request cateringPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	catering := logistics.Catering{
		ShowID:    c.Param("id"),
		Provider:  request.Provider,
		MealType:  request.MealType,
		ServesAt:  request.ServesAt,
		Headcount: request.Headcount,
		Notes:     request.Notes,
	}
	if err := h.logistics.SaveCatering(c.Request.Context(), &catering); err != nil {
		h.respondLogisticsError(c, "failed to save catering", err)
		return
	}
	c.JSON(http.StatusOK, catering)
}

func (h *httpHandler) handleUpdateCatering(c *gin.Context) {
	var request cateringPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.ShowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	catering := logistics.Catering{
		ID:        c.Param("id"),
		ShowID:    request.ShowID,
		Provider:  request.Provider,
		MealType:  request.MealType,
		ServesAt:  request.ServesAt,
		Headcount: request.Headcount,
		Notes:     request.Notes,
	}
	if err := h.logistics.SaveCatering(c.Request.Context(), &catering); err != nil {
		h.respondLogisticsError(c, "failed to update catering", err)
		return
	}
	c.JSON(http.StatusOK, catering)
}

func (h *httpHandler) handleDeleteCatering(c *gin.Context) {
	if err := h.logistics.DeleteCatering(c.Request.Context(), c.Param("id")); err != nil {
		h.respondLogisticsError(c, "failed to delete catering", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *httpHandler) respondLogisticsError(c *gin.Context, message string, err error) {
	if errors.Is(err, logistics.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	var serviceErr *logistics.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Code() == "logistics.save.missing_show_id" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_show_id"})
		return
	}
	h.logger.Error(message, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "logistics_failed"})
}
