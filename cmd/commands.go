package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calorietracker/config"
	"calorietracker/middlewares"
	"calorietracker/routes"
	"calorietracker/services"
	"calorietracker/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "calorietracker",
	Short:         "calorietracker serves the calorie tracking API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, snapshotCmd, sessionCmd)
	snapshotCmd.Flags().String("date", "", "Date to snapshot (YYYY-MM-DD, defaults to yesterday)")
}

// app is the process-wide wiring shared by the commands.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		if err := config.Migrate(a.db); err != nil {
			return err
		}
		a.log.Info("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the food catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		n, err := services.NewFoodService(a.db).SeedCatalog(cmd.Context())
		if err != nil {
			return err
		}
		a.log.WithField("created", n).Info("catalog seeded")
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Materialize daily progress for one date",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		}
		svc := a.newServices(nil)
		n, err := svc.summaries.SnapshotDay(cmd.Context(), date)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snapshotted %d user(s) for %s\n", n, date)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		return a.serve(cmd.Context())
	},
}

type serviceSet struct {
	auth      *services.AuthService
	users     *services.UserService
	foods     *services.FoodService
	meals     *services.MealService
	summaries *services.SummaryService
}

func (a *app) newServices(hub *services.RealtimeHub) serviceSet {
	users := services.NewUserService(a.db)
	foods := services.NewFoodService(a.db)
	meals := services.NewMealService(a.db, foods, hub, a.log)
	return serviceSet{
		auth:      services.NewAuthService(a.db, a.cfg.JWTSecret, a.cfg.JWTTTL, a.log),
		users:     users,
		foods:     foods,
		meals:     meals,
		summaries: services.NewSummaryService(a.db, meals, users, a.log),
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := config.Migrate(a.db); err != nil {
		return err
	}

	hub := services.NewRealtimeHub(a.log)
	svc := a.newServices(hub)
	if n, err := svc.foods.SeedCatalog(ctx); err != nil {
		return err
	} else if n > 0 {
		a.log.WithField("created", n).Info("catalog seeded")
	}

	sched, err := services.NewScheduler(a.cfg.SnapshotCron, svc.summaries, a.log)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(a.cfg.GinMode)
	r := routes.SetupRouter(routes.Deps{
		Auth:        svc.auth,
		Users:       svc.users,
		Foods:       svc.foods,
		Meals:       svc.meals,
		Summaries:   svc.summaries,
		Hub:         hub,
		Log:         a.log,
		Registry:    reg,
		AuthLimiter: middlewares.NewRateLimiter(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
