package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"kasboek/internal/core"
	"kasboek/internal/log"
)

// fetchTimeout bounds a single trip to the ledger source so a slow bank
// API cannot hang a page load.
const fetchTimeout = 7 * time.Second

// renderCached serves the page from the cache when fresh, otherwise builds
// it via build and stores the rendered bytes.
func (s *Server) renderCached(w http.ResponseWriter, r *http.Request, key string, build func(ctx context.Context) ([]byte, error)) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if page, found := s.pageCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "Page cache hit", log.FieldPage, key)
		_, _ = w.Write(page)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	page, err := build(ctx)
	if err != nil {
		status := http.StatusBadGateway
		errorType := log.ErrorTypeNetwork
		if errors.Is(err, core.ErrAccountNotFound) {
			status = http.StatusNotFound
			errorType = log.ErrorTypeNotFound
		}
		s.logger.ErrorContext(r.Context(), "Page build failed",
			log.FieldPage, key,
			log.FieldError, err,
			"error_type", errorType)
		http.Error(w, "report unavailable", status)
		return
	}

	s.pageCache.Set(key, page)
	_, _ = w.Write(page)
}

func (s *Server) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	s.renderCached(w, r, "balance", func(ctx context.Context) ([]byte, error) {
		account, err := s.resolver.Account(ctx, s.cfg.IncomeAccount)
		if err != nil {
			return nil, err
		}

		var recent []core.Payment
		if s.cfg.ShowTransactions {
			payments, err := s.source.ListPayments(ctx, account.ID)
			if err != nil {
				return nil, err
			}
			if len(payments) > s.cfg.RecentTransactions {
				payments = payments[:s.cfg.RecentTransactions]
			}
			recent = payments
		}

		report, err := core.BuildBalanceReport(account, recent, s.cfg.ShowTransactions)
		if err != nil {
			return nil, err
		}

		return s.render("balance.html", struct {
			Account          string
			Report           core.BalanceReport
			ShowTransactions bool
		}{Account: account.Description, Report: report, ShowTransactions: s.cfg.ShowTransactions})
	})
}

func (s *Server) handleScheduled(w http.ResponseWriter, r *http.Request) {
	s.renderCached(w, r, "scheduled", func(ctx context.Context) ([]byte, error) {
		income, err := s.resolver.Account(ctx, s.cfg.IncomeAccount)
		if err != nil {
			return nil, err
		}

		var avail *core.Account
		if s.cfg.AvailAccount != "" {
			account, err := s.resolver.Account(ctx, s.cfg.AvailAccount)
			if err != nil {
				return nil, err
			}
			avail = &account
		}

		scheduled, err := s.source.ListScheduledPayments(ctx, income.ID)
		if err != nil {
			return nil, err
		}

		report, err := core.BuildScheduledReport(income, avail, scheduled, s.cfg.AvailTargetCents, time.Now())
		if err != nil {
			return nil, err
		}

		return s.render("scheduled.html", struct {
			Account string
			Report  core.ScheduledReport
		}{Account: income.Description, Report: report})
	})
}

func (s *Server) handleBillpay(w http.ResponseWriter, r *http.Request) {
	if s.cfg.BillpayAccount == "" {
		http.Error(w, "billpay account not configured", http.StatusNotFound)
		return
	}

	// An optional ?month=YYYY-MM pins the reference month, defaulting to now.
	var refMonth *time.Time
	key := "billpay"
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		parsed, err := time.Parse("2006-01", v)
		if err != nil {
			http.Error(w, "invalid month, want YYYY-MM", http.StatusBadRequest)
			return
		}
		refMonth = &parsed
		key = "billpay:" + v
	}

	s.renderCached(w, r, key, func(ctx context.Context) ([]byte, error) {
		account, err := s.resolver.Account(ctx, s.cfg.BillpayAccount)
		if err != nil {
			return nil, err
		}

		payments, err := s.source.ListPayments(ctx, account.ID)
		if err != nil {
			return nil, err
		}

		report, err := core.BuildBillpayReport(account, payments, refMonth, time.Now())
		if err != nil {
			return nil, err
		}

		return s.render("billpay.html", struct {
			Account string
			Report  core.BillpayReport
		}{Account: account.Description, Report: report})
	})
}
