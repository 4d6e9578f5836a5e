package bunq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kasboek/internal/core"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Bunq-Client-Authentication") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		body, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"Error":[{"error_description":"not found"}]}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAccountByName(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/v1/monetary-account-bank": `{"Response":[
			{"MonetaryAccountBank":{"id":1,"description":"savings","status":"CANCELLED","balance":{"value":"0.00","currency":"EUR"}}},
			{"MonetaryAccountBank":{"id":2,"description":"kasboek","status":"ACTIVE","balance":{"value":"123.45","currency":"EUR"}}}
		]}`,
	})
	client := NewClient(srv.URL, "key")

	account, err := client.AccountByName(context.Background(), "kasboek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != 2 || account.Balance.Cents != 12345 || account.Balance.Currency != "EUR" {
		t.Fatalf("unexpected account: %+v", account)
	}

	if _, err := client.AccountByName(context.Background(), "savings"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("cancelled account must not match, got %v", err)
	}
}

func TestListPaymentsDepaginates(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/v1/monetary-account/2/payment": `{"Response":[
			{"Payment":{"created":"2024-05-20 12:30:00.000000","amount":{"value":"-5.00","currency":"EUR"},"description":"lunch","counterparty_alias":{"display_name":"Cafe"}}}
		],"Pagination":{"older_url":"/v1/monetary-account/2/payment?older_id=10"}}`,
		"/v1/monetary-account/2/payment?older_id=10": `{"Response":[
			{"Payment":{"created":"2024-05-19 09:00:00.000000","amount":{"value":"10.00","currency":"EUR"},"description":"gift","counterparty_alias":{"display_name":"Friend"}}}
		]}`,
	})
	client := NewClient(srv.URL, "key")

	payments, err := client.ListPayments(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments across pages, got %d", len(payments))
	}
	if payments[0].Amount.Cents != -500 || payments[0].Counterparty != "Cafe" {
		t.Fatalf("unexpected first payment: %+v", payments[0])
	}
	if payments[1].Description != "gift" {
		t.Fatalf("unexpected second payment: %+v", payments[1])
	}
}

func TestListScheduledPaymentsSkipsInactive(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/v1/monetary-account/2/schedule-payment": `{"Response":[
			{"ScheduledPayment":{"status":"ACTIVE","schedule":{"recurrence_unit":"MONTHLY","time_start":"2023-01-01 00:00:00.000000","time_end":""},"payment":{"amount":{"value":"-8.00","currency":"EUR"}}}},
			{"ScheduledPayment":{"status":"FINISHED","schedule":{"recurrence_unit":"ONCE","time_start":"2023-06-01 00:00:00.000000","time_end":""},"payment":{"amount":{"value":"-1.00","currency":"EUR"}}}}
		]}`,
	})
	client := NewClient(srv.URL, "key")

	scheduled, err := client.ListScheduledPayments(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scheduled) != 1 {
		t.Fatalf("expected only the ACTIVE schedule, got %d", len(scheduled))
	}
	if scheduled[0].Recurrence != core.Monthly || scheduled[0].Amount.Cents != -800 {
		t.Fatalf("unexpected schedule: %+v", scheduled[0])
	}
}

func TestGetErrorStatus(t *testing.T) {
	srv := newTestServer(t, nil)
	client := NewClient(srv.URL, "key")
	if _, err := client.AccountByID(context.Background(), 99); err == nil {
		t.Fatalf("expected error for missing route")
	}
}
