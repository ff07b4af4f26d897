// Package client is a typed HTTP client for the tracker API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"calorietracker/models"
	"calorietracker/services"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

type Report struct {
	Range string               `json:"range"`
	Days  []services.ReportDay `json:"days"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Signup registers a user and keeps the returned token.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in services.ProfileInput) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/profile", in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Foods(ctx context.Context) ([]models.FoodItem, error) {
	var out []models.FoodItem
	if err := c.do(ctx, http.MethodGet, "/food-items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateFood(ctx context.Context, in services.FoodInput) (*models.FoodItem, error) {
	var out models.FoodItem
	if err := c.do(ctx, http.MethodPost, "/foods", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Meals lists the entries for date. An empty date means today on the server.
func (c *Client) Meals(ctx context.Context, date string) ([]models.EntryView, error) {
	p := "/meals"
	if date != "" {
		p += "?" + url.Values{"date": {date}}.Encode()
	}
	var out []models.EntryView
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddMeal(ctx context.Context, in services.LogMealInput) (*models.EntryView, error) {
	var out models.EntryView
	if err := c.do(ctx, http.MethodPost, "/meals", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMeal(ctx context.Context, id uint, in services.UpdateMealInput) (*models.EntryView, error) {
	var out models.EntryView
	if err := c.do(ctx, http.MethodPut, "/meals/"+strconv.FormatUint(uint64(id), 10), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMeal(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/meals/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

func (c *Client) DailySummary(ctx context.Context, date string) (*services.DailyReport, error) {
	var out services.DailyReport
	if err := c.do(ctx, http.MethodGet, "/summary/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report fetches the "weekly" or "monthly" calorie report.
func (c *Client) Report(ctx context.Context, rangeName string) (*Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodGet, "/reports/"+url.PathEscape(rangeName), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
