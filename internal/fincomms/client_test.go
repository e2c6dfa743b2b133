package fincomms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vendor-reconciliation-service/internal/models"
	"vendor-reconciliation-service/pkg/errors"

	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds.Email != "ops@example.com" || creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	})

	mux.HandleFunc("/api/invoices/bulk-import", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		// Decoding into float64 amounts rejects string-typed amounts the
		// way the real server does.
		var payload struct {
			Invoices []InvoiceRecord `json:"invoices"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload.Invoices == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(BulkImportResult{Imported: len(payload.Invoices)})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(&ClientConfig{BaseURL: baseURL, Timeout: DefaultTimeout})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestLoginAndBulkImport(t *testing.T) {
	server := newTestServer(t, "tok-123")
	client := newTestClient(t, server.URL)

	token, err := client.Login(context.Background(), "ops@example.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q, expected tok-123", token)
	}

	records := []InvoiceRecord{
		{InvoiceNumber: "300", Vendor: "Acme", Amount: 75.00, Currency: "EUR", Source: "RECON"},
	}
	result, err := client.BulkImport(context.Background(), token, records)
	if err != nil {
		t.Fatalf("BulkImport failed: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("imported = %d, expected 1", result.Imported)
	}
}

func TestBulkImportWireFormat(t *testing.T) {
	var body map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(BulkImportResult{Imported: 1})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	records := []InvoiceRecord{
		{InvoiceNumber: "INV-1", Vendor: "Acme", Amount: 100.00, Currency: "EUR", Source: "RECON"},
	}
	if _, err := client.BulkImport(context.Background(), "tok", records); err != nil {
		t.Fatalf("BulkImport failed: %v", err)
	}

	raw, ok := body["invoices"]
	if !ok {
		t.Fatalf("request body lacks the invoices key: %v", body)
	}
	var sent []map[string]interface{}
	if err := json.Unmarshal(raw, &sent); err != nil {
		t.Fatalf("cannot decode invoices array: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected 1 invoice on the wire, got %d", len(sent))
	}
	if amt, ok := sent[0]["amount"].(float64); !ok || amt != 100.00 {
		t.Errorf("amount on the wire = %v, expected the number 100", sent[0]["amount"])
	}
}

func TestLoginBadCredentials(t *testing.T) {
	server := newTestServer(t, "tok-123")
	client := newTestClient(t, server.URL)

	_, err := client.Login(context.Background(), "ops@example.com", "wrong")
	if err == nil {
		t.Fatal("expected an error for bad credentials")
	}
	re, ok := errors.AsReconcilerError(err)
	if !ok || re.Code != errors.CodeAuthFailed {
		t.Errorf("expected auth-failed error, got %v", err)
	}
}

func TestBulkImportExpiredSession(t *testing.T) {
	server := newTestServer(t, "tok-123")
	client := newTestClient(t, server.URL)

	_, err := client.BulkImport(context.Background(), "stale-token", []InvoiceRecord{{InvoiceNumber: "1"}})
	if err == nil {
		t.Fatal("expected an error for a stale token")
	}
	re, ok := errors.AsReconcilerError(err)
	if !ok || re.Code != errors.CodeSessionExpired {
		t.Errorf("expected session-expired error, got %v", err)
	}
}

func TestBulkImportNoRecords(t *testing.T) {
	client := newTestClient(t, "http://unreachable.invalid")

	result, err := client.BulkImport(context.Background(), "any", nil)
	if err != nil {
		t.Fatalf("empty import must not touch the network: %v", err)
	}
	if result.Imported != 0 {
		t.Errorf("imported = %d, expected 0", result.Imported)
	}
}

func TestBuildRecords(t *testing.T) {
	missing := []models.ConsolidatedInvoice{
		{
			Side:      models.SideVendor,
			Code:      "300",
			NetAmount: decimal.RequireFromString("-75.00"),
			LineCount: 1,
			Representative: models.CanonicalLine{
				Side:       models.SideVendor,
				InvoiceRaw: "FAC-300",
				Entity:     "Acme GmbH",
			},
			Entity: "Acme GmbH",
		},
	}

	records := BuildRecords(missing, "Acme GmbH")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.InvoiceNumber != "FAC-300" {
		t.Errorf("invoice number = %q, expected the raw code FAC-300", r.InvoiceNumber)
	}
	if r.Amount != 75.00 {
		t.Errorf("amount = %v, expected the magnitude 75.00", r.Amount)
	}
	if r.Currency != "EUR" || r.Source != "RECON" {
		t.Errorf("currency/source = %q/%q, expected EUR/RECON", r.Currency, r.Source)
	}
}

func TestClientConfigValidate(t *testing.T) {
	if _, err := NewClient(&ClientConfig{}); err == nil {
		t.Error("missing base URL should be rejected")
	}
	if _, err := NewClient(&ClientConfig{BaseURL: "http://x", Timeout: -1}); err == nil {
		t.Error("negative timeout should be rejected")
	}
}
