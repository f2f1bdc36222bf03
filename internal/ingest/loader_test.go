package ingest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelcm/campaign-pulse-go/internal/config"
	"github.com/angelcm/campaign-pulse-go/internal/obs"
	"github.com/angelcm/campaign-pulse-go/internal/store"
)

const deliveryCSV = "DATE,CAMPAIGN ORDER NAME,IMPRESSIONS,CLICKS,TRANSACTIONS,REVENUE,SPEND\n" +
	"2024-01-01,Acme,20000,100,2,500,100\n" +
	"2024-01-02,Acme,20000,100,2,500,100\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeCSV(t *testing.T) {
	in := " DATE ,CAMPAIGN ORDER NAME,IMPRESSIONS\n" +
		"2024-01-01,\"Acme, Inc\",100\n" +
		"2024-01-02,Short\n"
	rows, err := DecodeCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["DATE"] != "2024-01-01" {
		t.Fatalf("padded header not trimmed: %+v", rows[0])
	}
	if rows[0]["CAMPAIGN ORDER NAME"] != "Acme, Inc" {
		t.Fatalf("quoted field mangled: %+v", rows[0])
	}
	if rows[1]["IMPRESSIONS"] != "" {
		t.Fatalf("short row not padded: %+v", rows[1])
	}
}

func TestDecodeCSVEmptyBody(t *testing.T) {
	if _, err := DecodeCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error on missing header")
	}
}

func TestLoadBodyReplacesSet(t *testing.T) {
	st := store.NewMemoryStore()
	l := NewLoader(nil, st, discardLogger(), config.Config{}, obs.New())

	n, err := l.LoadBody(store.Delivery, strings.NewReader(deliveryCSV))
	if err != nil || n != 2 {
		t.Fatalf("LoadBody = (%d, %v), want (2, nil)", n, err)
	}
	// A second upload of the same export replaces, never appends.
	if _, err := l.LoadBody(store.Delivery, strings.NewReader(deliveryCSV)); err != nil {
		t.Fatalf("second LoadBody: %v", err)
	}
	if got := len(st.Rows(store.Delivery)); got != 2 {
		t.Fatalf("rows = %d, want 2 after re-upload", got)
	}
}

func TestRunFetchesAndIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, deliveryCSV)
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	cfg := config.Config{DeliveryURL: srv.URL}
	l := NewLoader(NewHTTPClient(2*time.Second), st, discardLogger(), cfg, obs.New())

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(st.Rows(store.Delivery)); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if got := len(st.Rows(store.Delivery)); got != 2 {
		t.Fatalf("rows = %d after repeat run, want 2", got)
	}
}

func TestRunSurfacesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	cfg := config.Config{DeliveryURL: srv.URL}
	l := NewLoader(NewHTTPClient(2*time.Second), st, discardLogger(), cfg, obs.New())

	if err := l.Run(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
}
