// Package fincomms is a client for the FinComms invoice platform. The
// reconciliation run can push invoices the vendor billed but the ERP never
// booked into FinComms for follow-up.
package fincomms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/pkg/errors"
	"vendor-reconciliation-service/pkg/logger"
)

const (
	loginPath      = "/api/auth/login"
	bulkImportPath = "/api/invoices/bulk-import"

	// DefaultTimeout bounds each request round trip.
	DefaultTimeout = 30 * time.Second
)

// ClientConfig holds the connection settings for a FinComms instance.
type ClientConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultClientConfig returns a configuration with the standard timeout. The
// base URL must still be provided by the caller.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{Timeout: DefaultTimeout}
}

// Validate checks the client configuration.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Client talks to a FinComms server.
type Client struct {
	config *ClientConfig
	http   *http.Client
	log    logger.Logger
}

// NewClient creates a FinComms client for the configured instance.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigError(errors.CodeInvalidConfig, "invalid FinComms configuration", err)
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		log:    logger.GetGlobalLogger().WithComponent("fincomms"),
	}, nil
}

// InvoiceRecord is the bulk-import payload shape FinComms accepts. Amount
// is a JSON number; the server rejects string-typed amounts.
type InvoiceRecord struct {
	InvoiceNumber string  `json:"invoice_number"`
	Vendor        string  `json:"vendor"`
	Entity        string  `json:"entity"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Source        string  `json:"source"`
}

// BuildRecords converts missing consolidated invoices into the FinComms
// import shape. vendorName labels the counterparty on every record.
func BuildRecords(missing []models.ConsolidatedInvoice, vendorName string) []InvoiceRecord {
	records := make([]InvoiceRecord, 0, len(missing))
	for _, inv := range missing {
		records = append(records, InvoiceRecord{
			InvoiceNumber: inv.InvoiceRaw(),
			Vendor:        vendorName,
			Entity:        inv.Entity,
			Amount:        inv.Amount().InexactFloat64(),
			Currency:      "EUR",
			Source:        "RECON",
		})
	}
	return records
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates against FinComms and returns a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", errors.InternalError(errors.CodeUnexpectedError, "cannot encode login request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", errors.NetworkError(errors.CodeRequestFailed, "cannot build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.NetworkError(errors.CodeRequestFailed, "login request failed", err).
			WithSuggestion("check the FinComms base URL and network connectivity")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NetworkError(errors.CodeAuthFailed,
			fmt.Sprintf("login rejected with status %d", resp.StatusCode), nil).
			WithSuggestion("verify the FinComms email and password")
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.NetworkError(errors.CodeRequestFailed, "cannot decode login response", err)
	}
	if decoded.Token == "" {
		return "", errors.NetworkError(errors.CodeAuthFailed, "login response carried no token", nil)
	}

	c.log.Debug("Authenticated against FinComms")
	return decoded.Token, nil
}

type bulkImportRequest struct {
	Invoices []InvoiceRecord `json:"invoices"`
}

// BulkImportResult reports how the import went on the server side.
type BulkImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// BulkImport pushes invoice records to FinComms under the given token. A 401
// response means the session expired and the caller should log in again.
func (c *Client) BulkImport(ctx context.Context, token string, records []InvoiceRecord) (*BulkImportResult, error) {
	if len(records) == 0 {
		return &BulkImportResult{}, nil
	}

	body, err := json.Marshal(bulkImportRequest{Invoices: records})
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "cannot encode import request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+bulkImportPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NetworkError(errors.CodeRequestFailed, "cannot build import request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NetworkError(errors.CodeRequestFailed, "import request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.NetworkError(errors.CodeSessionExpired, "FinComms session expired", nil).
			WithSuggestion("log in again to obtain a fresh token")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.NetworkError(errors.CodeRequestFailed,
			fmt.Sprintf("import rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}

	result := &BulkImportResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && err != io.EOF {
		return nil, errors.NetworkError(errors.CodeRequestFailed, "cannot decode import response", err)
	}

	c.log.WithFields(logger.Fields{
		"records":  len(records),
		"imported": result.Imported,
	}).Info("Bulk import finished")
	return result, nil
}
