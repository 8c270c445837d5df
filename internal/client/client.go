// Package client is the Go consumer of the admin API: a thin HTTP client,
// a session manager holding the bearer token, and a polling synchronizer
// the presentation surfaces read from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Syed-Shayan-ALi33/company-plus/internal/analytics"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/store"
)

type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
	} `json:"user"`
}

type DashboardSnapshot struct {
	Orders    []store.Order      `json:"orders"`
	ChartData []store.ChartPoint `json:"chartData"`
	Metrics   analytics.Metrics  `json:"metrics"`
}

type OrderRequest struct {
	Customer   string  `json:"customer"`
	Phone      string  `json:"phone,omitempty"`
	Product    string  `json:"product"`
	Amount     float64 `json:"amount"`
	Visibility string  `json:"visibility,omitempty"`
}

type MutationResponse struct {
	Order   *store.Order      `json:"order,omitempty"`
	Success bool              `json:"success,omitempty"`
	Metrics analytics.Metrics `json:"metrics"`
}

func (a *API) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := a.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Validate(ctx context.Context, token string) (string, error) {
	var out struct {
		Username string `json:"username"`
	}
	if err := a.do(ctx, http.MethodGet, "/auth/validate", token, nil, &out); err != nil {
		return "", err
	}
	return out.Username, nil
}

func (a *API) Logout(ctx context.Context, token string) error {
	return a.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (a *API) Dashboard(ctx context.Context) (*DashboardSnapshot, error) {
	var out DashboardSnapshot
	if err := a.do(ctx, http.MethodGet, "/dashboard", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) CreateOrder(ctx context.Context, order OrderRequest) (*MutationResponse, error) {
	var out MutationResponse
	if err := a.do(ctx, http.MethodPost, "/orders", "", order, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UpdateOrderStatus(ctx context.Context, id string, status store.OrderStatus) (*MutationResponse, error) {
	var out MutationResponse
	body := map[string]string{"status": string(status)}
	if err := a.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteOrder(ctx context.Context, id string) (*MutationResponse, error) {
	var out MutationResponse
	if err := a.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one JSON request. Non-2xx responses become errors carrying the
// server's message so callers can surface it verbatim.
func (a *API) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Message != "" {
			return errors.New(errBody.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
