// Package bunq implements the ledger source over a bunq-style REST API.
//
// List endpoints return newest-first pages wrapped in a Response envelope;
// the client follows Pagination.older_url until the history is exhausted or
// the page cap is reached. Envelope items are tagged objects ({"Payment":
// {...}}), so decoding dispatches on the tag.
package bunq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kasboek/internal/core"
	"kasboek/internal/ledger"
)

var _ ledger.Source = (*Client)(nil)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxPages = 10
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// maxPages bounds depagination; the billpay report only ever needs two
	// months of history, so unbounded listing would just burn rate limit.
	maxPages int
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxPages:   defaultMaxPages,
	}
}

// envelope is the common bunq response wrapper.
type envelope struct {
	Response   []map[string]json.RawMessage `json:"Response"`
	Pagination *pagination                  `json:"Pagination"`
}

type pagination struct {
	OlderURL string `json:"older_url"`
}

type amountPayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type accountPayload struct {
	ID          int64         `json:"id"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Balance     amountPayload `json:"balance"`
}

type paymentPayload struct {
	Created           string        `json:"created"`
	Amount            amountPayload `json:"amount"`
	Description       string        `json:"description"`
	CounterpartyAlias struct {
		DisplayName string `json:"display_name"`
	} `json:"counterparty_alias"`
}

type schedulePayload struct {
	Status   string `json:"status"`
	Schedule struct {
		RecurrenceUnit string `json:"recurrence_unit"`
		TimeStart      string `json:"time_start"`
		TimeEnd        string `json:"time_end"`
	} `json:"schedule"`
	Payment struct {
		Amount amountPayload `json:"amount"`
	} `json:"payment"`
}

func (c *Client) get(ctx context.Context, path string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Bunq-Client-Authentication", c.apiKey)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &env, nil
}

// depaginate walks a list endpoint newest-first, invoking visit for every
// tagged item until the pages run out or visit returns false.
func (c *Client) depaginate(ctx context.Context, path string, visit func(tag string, raw json.RawMessage) (bool, error)) error {
	for page := 0; page < c.maxPages && path != ""; page++ {
		env, err := c.get(ctx, path)
		if err != nil {
			return err
		}
		for _, item := range env.Response {
			for tag, raw := range item {
				more, err := visit(tag, raw)
				if err != nil {
					return err
				}
				if !more {
					return nil
				}
			}
		}
		path = ""
		if env.Pagination != nil && env.Pagination.OlderURL != "" {
			older, err := url.Parse(env.Pagination.OlderURL)
			if err != nil {
				return fmt.Errorf("parse older_url: %w", err)
			}
			path = older.Path
			if older.RawQuery != "" {
				path += "?" + older.RawQuery
			}
		}
	}
	return nil
}

func decodeAccount(raw json.RawMessage) (core.Account, error) {
	var payload accountPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.Account{}, fmt.Errorf("decode account: %w", err)
	}
	balance, err := core.ParseAmount(payload.Balance.Currency, payload.Balance.Value)
	if err != nil {
		return core.Account{}, fmt.Errorf("account %d balance: %w", payload.ID, err)
	}
	return core.Account{ID: payload.ID, Description: payload.Description, Balance: balance}, nil
}

// AccountByName scans the account listing for an ACTIVE account whose
// description matches, mirroring how the bank names accounts.
func (c *Client) AccountByName(ctx context.Context, name string) (core.Account, error) {
	var found *core.Account
	err := c.depaginate(ctx, "/v1/monetary-account-bank", func(tag string, raw json.RawMessage) (bool, error) {
		if tag != "MonetaryAccountBank" {
			return true, nil
		}
		var payload accountPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return false, fmt.Errorf("decode account: %w", err)
		}
		if payload.Status != "ACTIVE" || payload.Description != name {
			return true, nil
		}
		account, err := decodeAccount(raw)
		if err != nil {
			return false, err
		}
		found = &account
		return false, nil
	})
	if err != nil {
		return core.Account{}, err
	}
	if found == nil {
		return core.Account{}, fmt.Errorf("account %q: %w", name, core.ErrAccountNotFound)
	}
	return *found, nil
}

func (c *Client) AccountByID(ctx context.Context, id int64) (core.Account, error) {
	env, err := c.get(ctx, fmt.Sprintf("/v1/monetary-account-bank/%d", id))
	if err != nil {
		return core.Account{}, err
	}
	for _, item := range env.Response {
		if raw, ok := item["MonetaryAccountBank"]; ok {
			return decodeAccount(raw)
		}
	}
	return core.Account{}, fmt.Errorf("account id %d: %w", id, core.ErrAccountNotFound)
}

// ListPayments returns booked payments newest-first across pages.
func (c *Client) ListPayments(ctx context.Context, accountID int64) ([]core.Payment, error) {
	var payments []core.Payment
	path := fmt.Sprintf("/v1/monetary-account/%d/payment", accountID)
	err := c.depaginate(ctx, path, func(tag string, raw json.RawMessage) (bool, error) {
		if tag != "Payment" {
			return true, nil
		}
		var payload paymentPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return false, fmt.Errorf("decode payment: %w", err)
		}
		amount, err := core.ParseAmount(payload.Amount.Currency, payload.Amount.Value)
		if err != nil {
			return false, fmt.Errorf("payment amount: %w", err)
		}
		payments = append(payments, core.Payment{
			CreatedAt:    payload.Created,
			Amount:       amount,
			Description:  payload.Description,
			Counterparty: payload.CounterpartyAlias.DisplayName,
		})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// ListScheduledPayments returns the account's ACTIVE standing orders.
func (c *Client) ListScheduledPayments(ctx context.Context, accountID int64) ([]core.ScheduledPayment, error) {
	var scheduled []core.ScheduledPayment
	path := fmt.Sprintf("/v1/monetary-account/%d/schedule-payment", accountID)
	err := c.depaginate(ctx, path, func(tag string, raw json.RawMessage) (bool, error) {
		if tag != "ScheduledPayment" {
			return true, nil
		}
		var payload schedulePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return false, fmt.Errorf("decode scheduled payment: %w", err)
		}
		if payload.Status != "" && payload.Status != "ACTIVE" {
			return true, nil
		}
		amount, err := core.ParseAmount(payload.Payment.Amount.Currency, payload.Payment.Amount.Value)
		if err != nil {
			return false, fmt.Errorf("scheduled payment amount: %w", err)
		}
		scheduled = append(scheduled, core.ScheduledPayment{
			Amount:     amount,
			Recurrence: core.RecurrenceUnit(payload.Schedule.RecurrenceUnit),
			Start:      payload.Schedule.TimeStart,
			End:        payload.Schedule.TimeEnd,
		})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return scheduled, nil
}
