package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// SettlementOracle is the external system that knows whether an invoice has
// been paid. Real settlement is out of scope; production wires an HTTP
// implementation, tests wire fakes.
type SettlementOracle interface {
	IsSettled(ctx context.Context, invoiceID string) (bool, error)
}

// HTTPOracle polls a settlement endpoint with a bounded timeout. A timeout
// or transport failure means "not yet settled", never an error surfaced to
// the poller.
type HTTPOracle struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

func (o *HTTPOracle) IsSettled(ctx context.Context, invoiceID string) (bool, error) {
	timeout := o.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/invoices/%s", o.BaseURL, invoiceID), nil)
	if err != nil {
		return false, err
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("invoice_id", invoiceID).Msg("Settlement oracle unreachable; treating as pending")
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var body struct {
		Settled bool `json:"settled"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, nil
	}
	return body.Settled, nil
}
