package cca

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMalformedCard      = errors.New("credit card number must match DDDD-DDDD-DDDD-DDDD")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrServiceUnavailable = errors.New("credit card authorizer unavailable")
)

var cardNumberPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{4}-[0-9]{4}-[0-9]{4}$`)

type authorizationRequest struct {
	CreditCardNumber string `json:"credit_card_number"`
}

// Client calls the credit-card-authorizer service. The authorization decision
// itself is opaque: the client only maps transport outcomes onto the error
// taxonomy.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Authorize returns nil when the card is authorized. The card format is
// checked locally first; a malformed number never reaches the collaborator.
func (c *Client) Authorize(ctx context.Context, cardNumber string) error {
	if !cardNumberPattern.MatchString(cardNumber) {
		log.WithField("card", MaskCardNumber(cardNumber)).Warn("rejected malformed card number")
		return ErrMalformedCard
	}

	body, err := json.Marshal(authorizationRequest{CreditCardNumber: cardNumber})
	if err != nil {
		return errors.Wrap(err, "marshal authorization request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build authorization request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrServiceUnavailable, "call authorizer: %v", err)
	}
	defer resp.Body.Close()

	logger := log.WithFields(log.Fields{
		"card":   MaskCardNumber(cardNumber),
		"status": resp.StatusCode,
	})

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		logger.Info("card authorized")
		return nil
	case resp.StatusCode == http.StatusPaymentRequired:
		logger.Info("card declined")
		return ErrPaymentDeclined
	case resp.StatusCode == http.StatusBadRequest:
		logger.Warn("authorizer rejected card format")
		return ErrMalformedCard
	default:
		logger.Error("unexpected authorizer response")
		return errors.Wrapf(ErrServiceUnavailable, "authorizer returned status %d", resp.StatusCode)
	}
}

// MaskCardNumber keeps only the last four digits for logging.
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) < 4 {
		return "****-****-****-****"
	}
	return "****-****-****-" + cardNumber[len(cardNumber)-4:]
}
