// Package barberapi is the HTTP client for the remote booking API. The
// remote API owns the truth about services, schedules and appointments;
// this client only reads snapshots and forwards submissions.
package barberapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"barberia/internal/models"
)

// Client talks to the booking API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for the given base URL
// (e.g. "http://localhost:8000/api").
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseRateLimit throttles outgoing calls with a token bucket.
func (c *Client) UseRateLimit(limiter *RateLimiter) {
	c.limiter = limiter
}

// Services fetches the service catalog.
func (c *Client) Services(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	if err := c.cachedGet(ctx, "/service/", "services", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Weekdays fetches the per-weekday open/closed rules.
func (c *Client) Weekdays(ctx context.Context) ([]models.Weekday, error) {
	var out []models.Weekday
	if err := c.cachedGet(ctx, "/weekday/", "weekdays", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WorkingHours fetches the working-hours windows.
func (c *Client) WorkingHours(ctx context.Context) ([]models.WorkingHours, error) {
	var out []models.WorkingHours
	if err := c.cachedGet(ctx, "/workinghours/", "workinghours", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Schedule fetches the committed appointments. Never cached: this is the
// collection whose staleness causes booking conflicts.
func (c *Client) Schedule(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.doGet(ctx, c.baseURL+"/schedule/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

type blockedDatesResponse struct {
	Success      bool                 `json:"success"`
	BlockedDates []models.BlockedDate `json:"blocked_dates"`
}

// BlockedDates fetches the holiday dates for a calendar year.
func (c *Client) BlockedDates(ctx context.Context, year int) ([]models.BlockedDate, error) {
	endpoint := fmt.Sprintf("%s/blocked-dates/?year=%d", c.baseURL, year)
	cacheKey := fmt.Sprintf("blocked-dates:%d", year)

	var resp blockedDatesResponse
	if c.readCache(ctx, cacheKey, &resp) {
		return resp.BlockedDates, nil
	}
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, resp)
	return resp.BlockedDates, nil
}

// Breaks fetches the recurring staff breaks.
func (c *Client) Breaks(ctx context.Context) ([]models.Break, error) {
	var out []models.Break
	if err := c.cachedGet(ctx, "/breaks/", "breaks", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppointmentRequest is the POST /schedule/ body.
type AppointmentRequest struct {
	Date         string `json:"date"` // "YYYY-MM-DD"
	Time         string `json:"time"` // "HH:MM:SS"
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Description  string `json:"description"`
	Service      int64  `json:"service"`
	CaptchaToken string `json:"captchaToken"`
	PromoCode    string `json:"promo_code_text,omitempty"`
}

// CreateAppointment submits a booking. Validation failures and slot
// conflicts come back as *SubmitError; transport failures as plain errors.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*models.Appointment, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/schedule/", strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var created models.Appointment
		if err := json.Unmarshal(body, &created); err != nil {
			return nil, fmt.Errorf("decode created appointment: %w", err)
		}
		return &created, nil
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, parseSubmitError(resp.StatusCode, body)
	}

	return nil, fmt.Errorf("booking api: http %d", resp.StatusCode)
}

func (c *Client) cachedGet(ctx context.Context, path, cacheKey string, out any) error {
	if c.readCache(ctx, cacheKey, out) {
		return nil
	}
	if err := c.doGet(ctx, c.baseURL+path, out); err != nil {
		return err
	}
	c.writeCache(ctx, cacheKey, out)
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("booking api: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
