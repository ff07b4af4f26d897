package controllers

import (
	"net/http"
	"time"

	"calorietracker/models"
	"calorietracker/services"

	"github.com/gin-gonic/gin"
)

type SummaryController struct {
	Summaries *services.SummaryService
}

func NewSummaryController(svc *services.SummaryService) *SummaryController {
	return &SummaryController{Summaries: svc}
}

// GET /api/summary/:date
func (h *SummaryController) Daily(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	out, err := h.Summaries.Daily(c.Request.Context(), uid, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/reports/:range?end=YYYY-MM-DD
func (h *SummaryController) Report(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	end := time.Now()
	if v := c.Query("end"); v != "" {
		t, err := time.ParseInLocation(models.DateLayout, v, end.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date. Use YYYY-MM-DD"})
			return
		}
		end = t
	}

	days, err := h.Summaries.Report(c.Request.Context(), uid, c.Param("range"), end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"range": c.Param("range"), "days": days})
}

// GET /api/progress/history
func (h *SummaryController) History(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	rows, err := h.Summaries.History(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
