package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook event types the subscription flow reacts to.
const (
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "invoice.payment_succeeded"
	EventPaymentFailed       = "invoice.payment_failed"
)

// DefaultWebhookTolerance rejects signatures whose timestamp drifts further
// than this from the server clock, limiting replay windows.
const DefaultWebhookTolerance = 5 * time.Minute

var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
)

// Event is the verified, decoded webhook payload.
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SubscriptionEventData is the Data payload of subscription events.
type SubscriptionEventData struct {
	SubscriptionID   string `json:"subscription_id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// InvoiceEventData is the Data payload of invoice events.
type InvoiceEventData struct {
	SubscriptionID string `json:"subscription_id"`
	InvoiceID      string `json:"invoice_id"`
	AmountPaid     int64  `json:"amount_paid"` // minor units
	AmountDue      int64  `json:"amount_due"`
}

// ConstructEvent verifies the signature header against the raw payload and
// decodes the event. The header format is "t=<unix>,v1=<hex hmac>" where
// the MAC is HMAC-SHA256 of "<unix>.<payload>" under the shared secret.
// Nothing in the payload may be trusted before this check passes.
func ConstructEvent(payload []byte, sigHeader, secret string, now time.Time) (Event, error) {
	var event Event

	timestamp, signature, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	drift := now.Sub(time.Unix(timestamp, 0))
	if drift < -DefaultWebhookTolerance || drift > DefaultWebhookTolerance {
		return event, ErrStaleTimestamp
	}

	expected := computeSignature(timestamp, payload, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return event, ErrInvalidSignature
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("decoding webhook payload: %w", err)
	}
	return event, nil
}

// Sign produces a valid signature header for a payload. Used by tests and
// by the simulated gateway.
func Sign(payload []byte, secret string, now time.Time) string {
	ts := now.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeSignature(ts, payload, secret))
}

func parseSignatureHeader(header string) (timestamp int64, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", ErrInvalidSignature
			}
		case "v1":
			signature = value
		}
	}
	if timestamp == 0 || signature == "" {
		return 0, "", ErrInvalidSignature
	}
	return timestamp, signature, nil
}

func computeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
