package test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelcm/campaign-pulse-go/internal/config"
	"github.com/angelcm/campaign-pulse-go/internal/health"
	"github.com/angelcm/campaign-pulse-go/internal/httpx"
	"github.com/angelcm/campaign-pulse-go/internal/ingest"
	"github.com/angelcm/campaign-pulse-go/internal/models"
	"github.com/angelcm/campaign-pulse-go/internal/obs"
	"github.com/angelcm/campaign-pulse-go/internal/pacing"
	"github.com/angelcm/campaign-pulse-go/internal/store"
)

const (
	deliveryCSV = "DATE,CAMPAIGN ORDER NAME,IMPRESSIONS,CLICKS,TRANSACTIONS,REVENUE,SPEND\n" +
		"2024-01-13,Acme,20000,100,2,500,100\n" +
		"2024-01-14,Acme,20000,100,2,500,100\n" +
		"2024-01-15,Acme,20000,100,2,500,100\n" +
		"2024-01-13,Orphan,1000,5,0,20,10\n" +
		"Totals,,999999,9999,99,99999,99999\n"

	contractCSV = "Name,Start Date,End Date,Budget,CPM,Impressions Goal\n" +
		"Acme,2024-01-01,2024-01-30,\"$3,000\",$5,\"600,000\"\n" +
		"Broken,2024-01-01,2024-01-30,TBD,$5,\"600,000\"\n"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.FromEnv()
	now := func() time.Time { return time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC) }

	st := store.NewMemoryStore()
	m := obs.New()
	loader := ingest.NewLoader(ingest.NewHTTPClient(2*time.Second), st, logger, cfg, m)
	scorer := health.NewScorer(health.Config{
		CTRBenchmark:    cfg.CTRBenchmark,
		NameFields:      cfg.NameFields,
		ROASWeight:      cfg.ROASWeight,
		PacingWeight:    cfg.PacingWeight,
		BurnRateWeight:  cfg.BurnRateWeight,
		OverspendWeight: cfg.OverspendWeight,
	}, logger)
	scorer.SetNow(now)
	calc := pacing.NewCalculator()
	calc.Now = now

	srv := httptest.NewServer(httpx.NewRouter(logger, cfg, loader, st, scorer, calc, m))
	t.Cleanup(srv.Close)
	return srv
}

func postCSV(t *testing.T, url, body string) {
	t.Helper()
	resp, err := http.Post(url, "text/csv", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST %s: status %d body %s", url, resp.StatusCode, b)
	}
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestIngestAndScoreFlow(t *testing.T) {
	srv := newTestServer(t)

	postCSV(t, srv.URL+"/ingest/delivery", deliveryCSV)
	postCSV(t, srv.URL+"/ingest/contract", contractCSV)

	var scores struct {
		Count     int                         `json:"count"`
		Campaigns []models.CampaignHealthData `json:"campaigns"`
	}
	getJSON(t, srv.URL+"/scores", &scores)

	// Orphan has no contract terms: sentinel, filtered out. Broken has
	// unscoreable terms but no delivery rows either.
	if scores.Count != 1 {
		t.Fatalf("scored %d campaigns, want 1", scores.Count)
	}
	rec := scores.Campaigns[0]
	if rec.Name != "Acme" {
		t.Fatalf("scored %q, want Acme", rec.Name)
	}
	if rec.Impressions != 60000 || rec.Spend != 300 {
		t.Fatalf("totals = (%v, %v), want (60000, 300)", rec.Impressions, rec.Spend)
	}
	if rec.HealthScore < 0 || rec.HealthScore > 10 {
		t.Fatalf("HealthScore %v out of range", rec.HealthScore)
	}
	if rec.ROASScore != 10 { // ROAS 5.0
		t.Fatalf("ROASScore = %v, want 10", rec.ROASScore)
	}
}

func TestPacingEndpointReportsSkips(t *testing.T) {
	srv := newTestServer(t)

	postCSV(t, srv.URL+"/ingest/delivery", deliveryCSV)
	postCSV(t, srv.URL+"/ingest/contract", contractCSV)

	var out struct {
		Count     int                        `json:"count"`
		Skipped   int                        `json:"skipped"`
		Campaigns []models.ProcessedCampaign `json:"campaigns"`
	}
	getJSON(t, srv.URL+"/pacing", &out)

	if out.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1 (Broken has a non-numeric budget)", out.Skipped)
	}
	if out.Count != 1 || out.Campaigns[0].Name != "Acme" {
		t.Fatalf("campaigns = %+v, want only Acme", out.Campaigns)
	}
	m := out.Campaigns[0].Metrics
	if m.ActualImpressions != 60000 {
		t.Fatalf("ActualImpressions = %v, want 60000", m.ActualImpressions)
	}
	if m.TotalCampaignDays != 30 {
		t.Fatalf("TotalCampaignDays = %d, want 30", m.TotalCampaignDays)
	}
	if m.CurrentPacing <= 0 {
		t.Fatalf("CurrentPacing = %v, want > 0", m.CurrentPacing)
	}
}

func TestUnknownIngestKind(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/ingest/bogus", "text/csv", strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
