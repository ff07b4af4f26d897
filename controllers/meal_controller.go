package controllers

import (
	"net/http"

	"calorietracker/models"
	"calorietracker/services"
	"calorietracker/utils"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals *services.MealService
}

func NewMealController(meals *services.MealService) *MealController {
	return &MealController{Meals: meals}
}

// GET /api/meals?date=YYYY-MM-DD (defaults to today)
func (h *MealController) List(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	date := c.DefaultQuery("date", utils.Today())
	if !utils.ValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD"})
		return
	}

	entries, err := h.Meals.List(c.Request.Context(), uid, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views(entries))
}

func (h *MealController) Log(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var input services.LogMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.Meals.Log(c.Request.Context(), uid, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry.View())
}

func (h *MealController) Update(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.UpdateMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.Meals.Update(c.Request.Context(), uid, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry.View())
}

func (h *MealController) Delete(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Meals.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func views(entries []models.MealEntry) []models.EntryView {
	out := make([]models.EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.View())
	}
	return out
}
