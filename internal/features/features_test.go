package features

import (
	"testing"
)

func validFeatures() TransactionFeatures {
	return TransactionFeatures{
		AmountUSD:              50000,
		SenderAgeDays:          2,
		TransactionsLast24h:    15,
		AvgTransactionAmount:   200,
		SenderCountryRiskScore: 0.9,
		IsNewRecipient:         true,
		HourOfDay:              3,
	}
}

func TestValidateAccepts(t *testing.T) {
	f := validFeatures()
	if errs := f.Validate(); len(errs) != 0 {
		t.Fatalf("valid features rejected: %v", errs)
	}
}

func TestAmountBoundary(t *testing.T) {
	f := validFeatures()

	f.AmountUSD = MaxAmountUSD // 1,000,000 is inclusive
	if errs := f.Validate(); len(errs) != 0 {
		t.Errorf("amount at ceiling should be accepted: %v", errs)
	}

	f.AmountUSD = MaxAmountUSD + 1
	errs := f.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error for amount above ceiling, got %d", len(errs))
	}
	if errs[0].Field != "amountUsd" {
		t.Errorf("expected amountUsd error, got %s", errs[0].Field)
	}

	f.AmountUSD = -0.01
	if errs := f.Validate(); len(errs) != 1 {
		t.Errorf("negative amount should be rejected: %v", errs)
	}
}

func TestHourOfDayBoundary(t *testing.T) {
	f := validFeatures()

	for _, hour := range []int{0, 23} {
		f.HourOfDay = hour
		if errs := f.Validate(); len(errs) != 0 {
			t.Errorf("hour %d should be accepted: %v", hour, errs)
		}
	}

	for _, hour := range []int{-1, 24} {
		f.HourOfDay = hour
		if errs := f.Validate(); len(errs) != 1 {
			t.Errorf("hour %d should be rejected, got %v", hour, errs)
		}
	}
}

func TestCountryRiskBounds(t *testing.T) {
	f := validFeatures()

	for _, score := range []float64{0, 0.5, 1} {
		f.SenderCountryRiskScore = score
		if errs := f.Validate(); len(errs) != 0 {
			t.Errorf("country risk %v should be accepted: %v", score, errs)
		}
	}

	for _, score := range []float64{-0.1, 1.1} {
		f.SenderCountryRiskScore = score
		if errs := f.Validate(); len(errs) != 1 {
			t.Errorf("country risk %v should be rejected, got %v", score, errs)
		}
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	f := TransactionFeatures{
		AmountUSD:              -1,
		SenderAgeDays:          -5,
		TransactionsLast24h:    1001,
		AvgTransactionAmount:   -2,
		SenderCountryRiskScore: 2,
		HourOfDay:              25,
	}
	errs := f.Validate()
	if len(errs) != 6 {
		t.Errorf("expected 6 violations, got %d: %v", len(errs), errs)
	}
}

func validPayload() *Payload {
	f := validFeatures()
	return &Payload{
		AmountUSD:              &f.AmountUSD,
		SenderAgeDays:          &f.SenderAgeDays,
		TransactionsLast24h:    &f.TransactionsLast24h,
		AvgTransactionAmount:   &f.AvgTransactionAmount,
		SenderCountryRiskScore: &f.SenderCountryRiskScore,
		IsNewRecipient:         &f.IsNewRecipient,
		HourOfDay:              &f.HourOfDay,
	}
}

func TestPayloadValidateAccepts(t *testing.T) {
	p := validPayload()
	if errs := p.Validate(); len(errs) != 0 {
		t.Fatalf("complete payload rejected: %v", errs)
	}
	if got := p.Features(); got != validFeatures() {
		t.Errorf("materialized features mismatch: %+v", got)
	}
}

func TestPayloadReportsOmittedFields(t *testing.T) {
	p := validPayload()
	p.AmountUSD = nil
	p.IsNewRecipient = nil

	errs := p.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 required-field violations, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "amountUsd" || errs[0].Message != "is required" {
		t.Errorf("expected amountUsd required, got %+v", errs[0])
	}
	if errs[1].Field != "isNewRecipient" {
		t.Errorf("expected isNewRecipient required, got %+v", errs[1])
	}
}

func TestPayloadEmptyRejectsEveryField(t *testing.T) {
	var p Payload
	if errs := p.Validate(); len(errs) != NumFeatures {
		t.Errorf("expected %d required-field violations, got %d", NumFeatures, len(errs))
	}
}

func TestPayloadZeroValuesAreNotOmitted(t *testing.T) {
	// A present zero is data, not an omission: amount 0 at hour 0 is valid.
	p := validPayload()
	*p.AmountUSD = 0
	*p.HourOfDay = 0
	if errs := p.Validate(); len(errs) != 0 {
		t.Errorf("explicit zero values rejected: %v", errs)
	}
}

func TestPayloadDelegatesBoundsChecks(t *testing.T) {
	p := validPayload()
	*p.SenderCountryRiskScore = 1.5

	errs := p.Validate()
	if len(errs) != 1 || errs[0].Field != "senderCountryRiskScore" {
		t.Errorf("expected bounds violation for senderCountryRiskScore, got %v", errs)
	}
}

func TestVectorOrder(t *testing.T) {
	f := validFeatures()
	v := f.Vector()

	if len(v) != NumFeatures {
		t.Fatalf("expected %d-slot vector, got %d", NumFeatures, len(v))
	}

	want := []float64{50000, 2, 15, 200, 0.9, 1, 3}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("vector[%d] = %v, want %v", i, v[i], want[i])
		}
	}

	f.IsNewRecipient = false
	if f.Vector()[5] != 0 {
		t.Error("new-recipient flag should encode false as 0")
	}
}

func TestHashDeterministic(t *testing.T) {
	a := validFeatures()
	b := validFeatures()

	if a.Hash() != b.Hash() {
		t.Error("field-for-field equal features must hash identically")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a.Hash()))
	}

	b.AmountUSD = 50000.01
	if a.Hash() == b.Hash() {
		t.Error("different feature values must produce different hashes")
	}
}
