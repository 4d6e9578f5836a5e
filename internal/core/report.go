package core

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	// BalanceReport backs the balance page: current balance, the received
	// and spent totals over the recent activity, and one rendered line per
	// transaction.
	BalanceReport struct {
		Balance      Money
		Received     Money
		Spent        Money
		Transactions []string
	}

	// ScheduledReport projects next month's standing orders against the
	// income account and the optional available-funds reserve.
	ScheduledReport struct {
		Outgoing     Money
		NumOutgoing  int
		NumAll       int
		NeededIncome Money
		NeededAvail  *Money
		Withdraw     Money
	}

	// BillpayLine is one rendered last-month payment with its signed
	// minor-unit amount, kept separate so templates can color by sign.
	BillpayLine struct {
		Line  string
		Cents int64
	}

	// BillpayReport summarizes last month's bill-pay activity.
	BillpayReport struct {
		Balance             Money
		NetThisMonth        Money
		NetLastMonth        Money
		EndBalanceLastMonth Money
		LastMonthPayments   []BillpayLine
	}
)

// timePrefix trims a raw ledger timestamp to minute precision for display.
func timePrefix(createdAt string) string {
	if len(createdAt) > 16 {
		return createdAt[:16]
	}
	return createdAt
}

// BuildBalanceReport renders the balance page data. With showTransactions
// off only the balance is reported; Received then mirrors the balance and
// no totals are computed.
func BuildBalanceReport(account Account, recent []Payment, showTransactions bool) (BalanceReport, error) {
	report := BalanceReport{Balance: account.Balance}
	if !showTransactions {
		report.Received = account.Balance
		report.Spent = FromCents(account.Balance.Currency, 0)
		return report, nil
	}

	var received, spent []Money
	for _, p := range recent {
		if p.Outgoing() {
			spent = append(spent, p.Amount)
			report.Transactions = append(report.Transactions,
				fmt.Sprintf("%s: spent %s for %q", timePrefix(p.CreatedAt), p.Amount.Abs(), p.Description))
		} else {
			received = append(received, p.Amount)
			report.Transactions = append(report.Transactions,
				fmt.Sprintf("%s: someone donated %s, thanks!", timePrefix(p.CreatedAt), p.Amount.Abs()))
		}
	}

	var err error
	if report.Received, err = Sum(received, account.Balance.Currency); err != nil {
		return BalanceReport{}, err
	}
	outgoing, err := Sum(spent, account.Balance.Currency)
	if err != nil {
		return BalanceReport{}, err
	}
	report.Spent = outgoing.Negate()
	return report, nil
}

// BuildScheduledReport filters the standing orders down to those in next
// month's window and works out the shortfall. NeededIncome is the extra
// income required so that balance + neededIncome + outgoing nets to zero;
// when an available-funds account is configured, Withdraw additionally
// covers topping its reserve up to availTargetCents.
func BuildScheduledReport(income Account, avail *Account, allScheduled []ScheduledPayment, availTargetCents int64, now time.Time) (ScheduledReport, error) {
	currency := income.Balance.Currency

	var upcoming []Money
	for _, s := range allScheduled {
		in, err := InUpcomingMonthWindow(s, now)
		if err != nil {
			return ScheduledReport{}, err
		}
		if in {
			upcoming = append(upcoming, s.Amount)
		}
	}

	outgoing, err := Sum(upcoming, currency)
	if err != nil {
		return ScheduledReport{}, err
	}

	report := ScheduledReport{
		Outgoing:     outgoing,
		NumOutgoing:  len(upcoming),
		NumAll:       len(allScheduled),
		NeededIncome: FromCents(currency, -(outgoing.Cents + income.Balance.Cents)),
	}

	withdraw := report.NeededIncome.Cents
	if avail != nil {
		if avail.Balance.Currency != currency {
			return ScheduledReport{}, fmt.Errorf("available-funds account in %s, income in %s: %w",
				avail.Balance.Currency, currency, ErrCurrencyMismatch)
		}
		needed := FromCents(currency, availTargetCents-avail.Balance.Cents)
		report.NeededAvail = &needed
		withdraw += needed.Cents
	}
	report.Withdraw = FromCents(currency, withdraw)
	return report, nil
}

// BuildBillpayReport summarizes last month's bill-pay activity. The payment
// stream is most-recent-first, so the scan takes the prefix newer than the
// start of last month and stops at the first older payment instead of
// walking the whole history. A month with no payments counts as zero.
func BuildBillpayReport(billpay Account, payments []Payment, referenceMonth *time.Time, now time.Time) (BillpayReport, error) {
	ref := now
	if referenceMonth != nil {
		ref = *referenceMonth
	}
	currency := billpay.Balance.Currency

	thisKey := MonthKey(ref)
	lastMonthStart := StartOfPreviousMonth(ref)
	lastKey := MonthKey(lastMonthStart)

	var window []Payment
	for _, p := range payments {
		created, err := ParseTimestamp(p.CreatedAt)
		if err != nil {
			return BillpayReport{}, err
		}
		if !created.After(lastMonthStart) {
			break
		}
		window = append(window, p)
	}

	groups, err := GroupByMonth(window)
	if err != nil {
		return BillpayReport{}, err
	}

	byKey := func(key string) []Payment {
		for _, g := range groups {
			if g.Key == key {
				return g.Payments
			}
		}
		return nil
	}

	netThis, err := sumPayments(byKey(thisKey), currency)
	if err != nil {
		return BillpayReport{}, err
	}
	lastMonth := byKey(lastKey)
	netLast, err := sumPayments(lastMonth, currency)
	if err != nil {
		return BillpayReport{}, err
	}

	report := BillpayReport{
		Balance:             billpay.Balance,
		NetThisMonth:        netThis,
		NetLastMonth:        netLast,
		EndBalanceLastMonth: FromCents(currency, billpay.Balance.Cents-netThis.Cents),
	}
	for _, p := range lastMonth {
		report.LastMonthPayments = append(report.LastMonthPayments, BillpayLine{
			Line:  fmt.Sprintf("%s by %s for %q", p.Amount, HumanizeLabel(p.Counterparty), p.Description),
			Cents: p.Amount.Cents,
		})
	}
	return report, nil
}

var labelCaser = cases.Title(language.Und)

// HumanizeLabel title-cases the all-caps labels banks attach to card
// merchants. Labels that already contain lowercase are left alone.
func HumanizeLabel(s string) string {
	if strings.ContainsFunc(s, unicode.IsLower) {
		return s
	}
	return labelCaser.String(s)
}

func sumPayments(payments []Payment, fallback string) (Money, error) {
	amounts := make([]Money, 0, len(payments))
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	return Sum(amounts, fallback)
}
