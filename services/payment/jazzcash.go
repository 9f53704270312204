package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds the JazzCash merchant credentials and endpoints
type Config struct {
	MerchantID    string
	Password      string
	IntegritySalt string
	ReturnURL     string
	PaymentURL    string
}

// Service builds signed JazzCash wallet payloads. It never contacts the
// gateway; the client posts the payload itself.
type Service struct {
	cfg Config
	now func() time.Time
}

// NewService creates a payment service
func NewService(cfg Config) *Service {
	return &Service{
		cfg: cfg,
		now: time.Now,
	}
}

// Payload is the result handed back to the caller
type Payload struct {
	TxnRef     string            `json:"txn_ref"`
	Fields     map[string]string `json:"payload"`
	PaymentURL string            `json:"payment_url"`
}

const txnTimeLayout = "20060102150405"

// BuildCoursePayload assembles the signed transaction fields for buying a
// course through the mobile wallet.
func (s *Service) BuildCoursePayload(courseID, userID uint, amountPaisa int64) Payload {
	now := s.now().UTC()
	txnRef := fmt.Sprintf("COURSE%d_%d_%d", courseID, userID, now.Unix())

	data := map[string]string{
		"pp_Version":           "1.1",
		"pp_TxnType":           "MWALLET",
		"pp_Language":          "EN",
		"pp_MerchantID":        s.cfg.MerchantID,
		"pp_Password":          s.cfg.Password,
		"pp_TxnRefNo":          txnRef,
		"pp_Amount":            strconv.FormatInt(amountPaisa, 10),
		"pp_TxnCurrency":       "PKR",
		"pp_TxnDateTime":       now.Format(txnTimeLayout),
		"pp_ReturnURL":         s.cfg.ReturnURL,
		"pp_TxnExpiryDateTime": now.Format(txnTimeLayout),
	}

	data["pp_SecureHash"] = GenerateSecureHash(data, s.cfg.IntegritySalt)

	return Payload{
		TxnRef:     txnRef,
		Fields:     data,
		PaymentURL: s.cfg.PaymentURL,
	}
}

// GenerateSecureHash computes the JazzCash integrity signature: the salt
// followed by every non-empty field as "key=value", sorted by field name and
// joined with "&", hashed with SHA-256. The hash input must not include the
// pp_SecureHash field itself.
func GenerateSecureHash(data map[string]string, integritySalt string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k == "pp_SecureHash" || data[k] == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+data[k])
	}

	sum := sha256.Sum256([]byte(integritySalt + "&" + strings.Join(parts, "&")))
	return hex.EncodeToString(sum[:])
}
