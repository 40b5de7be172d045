// Package features defines the transaction feature set accepted for scoring.
//
// Raw input is validated against hard bounds before any downstream use, then
// flattened into a fixed-order numeric vector. The vector order is part of the
// predictor's contract: the model was trained against exactly this layout and
// neither side may reorder independently.
package features

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/mbd888/riskscore/internal/validation"
)

// Hard input bounds. Amounts above MaxAmountUSD are rejected outright rather
// than scored — the business does not auto-approve seven-figure transfers.
const (
	MaxAmountUSD       = 1_000_000
	MaxTransactions24h = 1000
	NumFeatures        = 7
)

// TransactionFeatures is the validated input to the risk model.
// Immutable once constructed; all bounds checked via Validate before use.
type TransactionFeatures struct {
	AmountUSD              float64 `json:"amountUsd"`
	SenderAgeDays          int     `json:"senderAgeDays"`
	TransactionsLast24h    int     `json:"transactionsLast24h"`
	AvgTransactionAmount   float64 `json:"avgTransactionAmount"`
	SenderCountryRiskScore float64 `json:"senderCountryRiskScore"`
	IsNewRecipient         bool    `json:"isNewRecipient"`
	HourOfDay              int     `json:"hourOfDay"`
}

// Payload is the wire form of TransactionFeatures. Pointer fields make
// omitted keys detectable: a zero amount is a legal value, an absent one is
// not, and the two must not be conflated after decoding.
type Payload struct {
	AmountUSD              *float64 `json:"amountUsd"`
	SenderAgeDays          *int     `json:"senderAgeDays"`
	TransactionsLast24h    *int     `json:"transactionsLast24h"`
	AvgTransactionAmount   *float64 `json:"avgTransactionAmount"`
	SenderCountryRiskScore *float64 `json:"senderCountryRiskScore"`
	IsNewRecipient         *bool    `json:"isNewRecipient"`
	HourOfDay              *int     `json:"hourOfDay"`
}

// Validate reports every omitted field; once all fields are present it
// delegates to the bounds checks.
func (p *Payload) Validate() validation.ValidationErrors {
	var errs validation.ValidationErrors
	for _, f := range []struct {
		name    string
		present bool
	}{
		{"amountUsd", p.AmountUSD != nil},
		{"senderAgeDays", p.SenderAgeDays != nil},
		{"transactionsLast24h", p.TransactionsLast24h != nil},
		{"avgTransactionAmount", p.AvgTransactionAmount != nil},
		{"senderCountryRiskScore", p.SenderCountryRiskScore != nil},
		{"isNewRecipient", p.IsNewRecipient != nil},
		{"hourOfDay", p.HourOfDay != nil},
	} {
		if !f.present {
			errs = append(errs, validation.ValidationError{
				Field: f.name, Message: "is required",
			})
		}
	}
	if len(errs) != 0 {
		return errs
	}
	f := p.Features()
	return f.Validate()
}

// Features materializes the payload. Only valid after Validate has passed.
func (p *Payload) Features() TransactionFeatures {
	return TransactionFeatures{
		AmountUSD:              *p.AmountUSD,
		SenderAgeDays:          *p.SenderAgeDays,
		TransactionsLast24h:    *p.TransactionsLast24h,
		AvgTransactionAmount:   *p.AvgTransactionAmount,
		SenderCountryRiskScore: *p.SenderCountryRiskScore,
		IsNewRecipient:         *p.IsNewRecipient,
		HourOfDay:              *p.HourOfDay,
	}
}

// Validate checks every field against its bounds and reports all violations.
func (f *TransactionFeatures) Validate() validation.ValidationErrors {
	var errs validation.ValidationErrors

	if f.AmountUSD < 0 {
		errs = append(errs, validation.ValidationError{
			Field: "amountUsd", Message: "must not be negative",
		})
	} else if f.AmountUSD > MaxAmountUSD {
		errs = append(errs, validation.ValidationError{
			Field: "amountUsd", Message: "exceeds maximum transaction limit",
		})
	}

	if f.SenderAgeDays < 0 {
		errs = append(errs, validation.ValidationError{
			Field: "senderAgeDays", Message: "must not be negative",
		})
	}

	if f.TransactionsLast24h < 0 || f.TransactionsLast24h > MaxTransactions24h {
		errs = append(errs, validation.ValidationError{
			Field: "transactionsLast24h", Message: "must be between 0 and 1000",
		})
	}

	if f.AvgTransactionAmount < 0 {
		errs = append(errs, validation.ValidationError{
			Field: "avgTransactionAmount", Message: "must not be negative",
		})
	}

	if f.SenderCountryRiskScore < 0 || f.SenderCountryRiskScore > 1 {
		errs = append(errs, validation.ValidationError{
			Field: "senderCountryRiskScore", Message: "must be between 0 and 1",
		})
	}

	if f.HourOfDay < 0 || f.HourOfDay > 23 {
		errs = append(errs, validation.ValidationError{
			Field: "hourOfDay", Message: "must be between 0 and 23",
		})
	}

	return errs
}

// Vector flattens the features into the model's fixed input order:
// amount, sender age, 24h frequency, average amount, country risk,
// new-recipient flag (0/1), hour of day.
func (f *TransactionFeatures) Vector() []float64 {
	newRecipient := 0.0
	if f.IsNewRecipient {
		newRecipient = 1.0
	}
	return []float64{
		f.AmountUSD,
		float64(f.SenderAgeDays),
		float64(f.TransactionsLast24h),
		f.AvgTransactionAmount,
		f.SenderCountryRiskScore,
		newRecipient,
		float64(f.HourOfDay),
	}
}

// Hash returns the SHA-256 hex digest of the canonical feature rendering.
// Field-for-field equal features always produce the same digest, which is
// what lets the audit trail detect tampering and duplicate submissions.
func (f *TransactionFeatures) Hash() string {
	canonical := fmt.Sprintf(
		"amount_usd=%s|sender_age_days=%d|transactions_last_24h=%d|avg_transaction_amount=%s|sender_country_risk_score=%s|is_new_recipient=%t|hour_of_day=%d",
		formatFloat(f.AmountUSD),
		f.SenderAgeDays,
		f.TransactionsLast24h,
		formatFloat(f.AvgTransactionAmount),
		formatFloat(f.SenderCountryRiskScore),
		f.IsNewRecipient,
		f.HourOfDay,
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// formatFloat renders a float with the shortest exact representation so the
// canonical string never depends on formatting width.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
