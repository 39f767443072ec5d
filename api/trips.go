package api

import (
	"net/http"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/saga"
	"github.com/Domenick1991/tripsaga/internal/service/trips"
	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	saga  saga.SagaUseCase
	trips trips.TripUseCase
}

type tripSummary struct {
	TripID domain.TripID `json:"trip_id"`
}

type tripListResponse struct {
	Trips []tripSummary `json:"trips"`
	Count int           `json:"count"`
}

func NewTripHandler(sagaSvc saga.SagaUseCase, tripSvc trips.TripUseCase) *TripHandler {
	return &TripHandler{saga: sagaSvc, trips: tripSvc}
}

func (h *TripHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:tripId", h.get)
}

// create runs the booking saga synchronously. A saga that ends in a failure
// marker is reported with 422 and the full execution.
func (h *TripHandler) create(c *gin.Context) {
	var req saga.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	exec, err := h.saga.Run(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if !exec.Succeeded() {
		c.JSON(http.StatusUnprocessableEntity, exec)
		return
	}
	c.JSON(http.StatusOK, exec)
}

func (h *TripHandler) get(c *gin.Context) {
	view, err := h.trips.GetTrip(c.Request.Context(), domain.TripID(c.Param("tripId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TripHandler) list(c *gin.Context) {
	ids, err := h.trips.ListTrips(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := tripListResponse{Trips: make([]tripSummary, 0, len(ids)), Count: len(ids)}
	for _, id := range ids {
		resp.Trips = append(resp.Trips, tripSummary{TripID: id})
	}
	c.JSON(http.StatusOK, resp)
}
