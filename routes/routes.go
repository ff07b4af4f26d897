package routes

import (
	"net/http"

	"calorietracker/controllers"
	"calorietracker/middlewares"
	"calorietracker/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Deps are the services the router exposes.
type Deps struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Foods     *services.FoodService
	Meals     *services.MealService
	Summaries *services.SummaryService
	Hub       *services.RealtimeHub
	Log       *logrus.Logger

	// Registry receives the HTTP metrics; nil disables /metrics.
	Registry *prometheus.Registry
	// AuthLimiter throttles the public auth routes; nil disables it.
	AuthLimiter *middlewares.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Log))

	if d.Registry != nil {
		r.Use(middlewares.NewMetrics(d.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	authCtl := controllers.NewAuthController(d.Auth)
	userCtl := controllers.NewUserController(d.Users)
	foodCtl := controllers.NewFoodController(d.Foods)
	mealCtl := controllers.NewMealController(d.Meals)
	summaryCtl := controllers.NewSummaryController(d.Summaries)
	rtCtl := controllers.NewRealtimeController(d.Hub)

	api := r.Group("/api")
	requireAuth := middlewares.AuthMiddleware(d.Auth)

	// Public auth routes
	auth := api.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter.Handler())
	}
	{
		auth.POST("/signup", authCtl.Signup)
		auth.POST("/login", authCtl.Login)
	}

	profile := api.Group("/auth/profile", requireAuth)
	{
		profile.GET("", userCtl.GetProfile)
		profile.PUT("", userCtl.UpdateProfile)
	}

	protected := api.Group("", requireAuth)
	{
		protected.GET("/foods", foodCtl.List)
		protected.GET("/food-items", foodCtl.List)
		protected.POST("/foods", foodCtl.Create)
		protected.PUT("/foods/:id", foodCtl.Update)
		protected.DELETE("/foods/:id", foodCtl.Delete)

		protected.GET("/meals", mealCtl.List)
		protected.POST("/meals", mealCtl.Log)
		protected.PUT("/meals/:id", mealCtl.Update)
		protected.DELETE("/meals/:id", mealCtl.Delete)

		protected.GET("/summary/:date", summaryCtl.Daily)
		protected.GET("/reports/:range", summaryCtl.Report)
		protected.GET("/progress/history", summaryCtl.History)

		protected.GET("/ws", rtCtl.SummaryWS)
	}

	return r
}
