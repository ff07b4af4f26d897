package main

import (
	"context"
	"fmt"

	"calorietracker/client"
	"calorietracker/config"
	"calorietracker/store"
	"calorietracker/utils"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Sign in to a tracker API and inspect the saved session",
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
	signupCmd.Flags().String("name", "", "Display name")
	signupCmd.Flags().String("email", "", "Account email")
	signupCmd.Flags().String("password", "", "Account password")
	statusCmd.Flags().String("date", "", "Date to summarize (YYYY-MM-DD, defaults to the store's current date)")

	sessionCmd.AddCommand(loginCmd, signupCmd, statusCmd, logoutCmd)
}

// openSession builds a store backed by the configured KV and restores the
// saved state and session.
func openSession(ctx context.Context) (*store.Store, *client.Client, error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, nil, err
	}
	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	kv, err := store.OpenKV(ctx, store.Backend{
		Kind:          cfg.Backend,
		KeyPrefix:     cfg.KeyPrefix,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		S3Bucket:      cfg.S3.Bucket,
		S3Region:      cfg.S3.Region,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Backend == "memory" {
		log.Warn("STORE_BACKEND=memory: the session is lost when this command exits")
	}

	api := client.New(cfg.APIURL, nil)
	st := store.New(kv, log, store.WithAPI(api))
	if err := st.Initialize(ctx); err != nil {
		return nil, nil, err
	}
	api.SetToken(st.Auth().Token)
	return st, api, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		a, err := st.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", a.User.Email)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		a, err := st.Signup(cmd.Context(), name, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", a.User.Email)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session and the day's summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, api, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		a := st.Auth()
		if !a.Authenticated() {
			fmt.Fprintln(out, "not signed in")
			return nil
		}

		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date = st.CurrentDate()
		}
		rep, err := api.DailySummary(cmd.Context(), date)
		if err != nil {
			return err
		}
		if a.User != nil {
			fmt.Fprintf(out, "signed in as %s\n", a.User.Email)
		}
		fmt.Fprintf(out, "%s: %d / %d kcal, protein %dg, carbs %dg, fat %dg\n",
			rep.Date, rep.TotalCalories, rep.Goals.DailyCalorieGoal,
			rep.TotalProtein, rep.TotalCarbs, rep.TotalFat)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		if err := st.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}
