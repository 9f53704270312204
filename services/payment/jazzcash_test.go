package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	svc := NewService(Config{
		MerchantID:    "MC12345",
		Password:      "merchant-password",
		IntegritySalt: "test-salt",
		ReturnURL:     "https://example.com/payment/return",
		PaymentURL:    "https://sandbox.jazzcash.com.pk/CustomerPortal/transactionmanagement/merchantform",
	})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestBuildCoursePayload(t *testing.T) {
	svc := newTestService()

	payload := svc.BuildCoursePayload(3, 42, 200000)

	wantRef := fmt.Sprintf("COURSE3_42_%d", time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC).Unix())
	assert.Equal(t, wantRef, payload.TxnRef)
	assert.Equal(t, svc.cfg.PaymentURL, payload.PaymentURL)

	fields := payload.Fields
	assert.Equal(t, "1.1", fields["pp_Version"])
	assert.Equal(t, "MWALLET", fields["pp_TxnType"])
	assert.Equal(t, "EN", fields["pp_Language"])
	assert.Equal(t, "MC12345", fields["pp_MerchantID"])
	assert.Equal(t, wantRef, fields["pp_TxnRefNo"])
	assert.Equal(t, "200000", fields["pp_Amount"])
	assert.Equal(t, "PKR", fields["pp_TxnCurrency"])
	assert.Equal(t, "20260310183000", fields["pp_TxnDateTime"])
	assert.NotEmpty(t, fields["pp_SecureHash"])
}

func TestBuildCoursePayloadHashMatchesFields(t *testing.T) {
	svc := newTestService()

	payload := svc.BuildCoursePayload(3, 42, 200000)

	// Recomputing the hash over the returned fields must reproduce the
	// embedded signature.
	want := GenerateSecureHash(payload.Fields, "test-salt")
	assert.Equal(t, want, payload.Fields["pp_SecureHash"])
}

func TestGenerateSecureHashDeterministic(t *testing.T) {
	data := map[string]string{
		"pp_MerchantID": "MC12345",
		"pp_Amount":     "200000",
		"pp_TxnRefNo":   "COURSE1_2_3",
	}

	h1 := GenerateSecureHash(data, "salt")
	h2 := GenerateSecureHash(data, "salt")

	require.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // sha256 hex
}

func TestGenerateSecureHashIgnoresEmptyAndOwnField(t *testing.T) {
	base := map[string]string{
		"pp_MerchantID": "MC12345",
		"pp_Amount":     "200000",
	}
	baseHash := GenerateSecureHash(base, "salt")

	withNoise := map[string]string{
		"pp_MerchantID": "MC12345",
		"pp_Amount":     "200000",
		"pp_BankID":     "",
		"pp_SecureHash": "whatever-was-here",
	}

	assert.Equal(t, baseHash, GenerateSecureHash(withNoise, "salt"))
}

func TestGenerateSecureHashSensitivity(t *testing.T) {
	data := map[string]string{
		"pp_MerchantID": "MC12345",
		"pp_Amount":     "200000",
	}
	baseHash := GenerateSecureHash(data, "salt")

	changedValue := map[string]string{
		"pp_MerchantID": "MC12345",
		"pp_Amount":     "200001",
	}
	assert.NotEqual(t, baseHash, GenerateSecureHash(changedValue, "salt"))

	assert.NotEqual(t, baseHash, GenerateSecureHash(data, "other-salt"))
}
