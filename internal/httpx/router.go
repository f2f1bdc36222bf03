package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelcm/campaign-pulse-go/internal/config"
	"github.com/angelcm/campaign-pulse-go/internal/dates"
	"github.com/angelcm/campaign-pulse-go/internal/health"
	"github.com/angelcm/campaign-pulse-go/internal/ingest"
	"github.com/angelcm/campaign-pulse-go/internal/models"
	"github.com/angelcm/campaign-pulse-go/internal/obs"
	"github.com/angelcm/campaign-pulse-go/internal/pacing"
	"github.com/angelcm/campaign-pulse-go/internal/store"
	"github.com/angelcm/campaign-pulse-go/internal/utils"
)

var ingestKinds = map[string]store.Kind{
	"delivery": store.Delivery,
	"contract": store.Contract,
	"pacing":   store.Pacing,
}

func NewRouter(log *slog.Logger, cfg config.Config, loader *ingest.Loader, st *store.MemoryStore, scorer *health.Scorer, calc *pacing.Calculator, m *obs.Metrics) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	mux.Post("/ingest/{kind}", func(w http.ResponseWriter, r *http.Request) {
		kind, ok := ingestKinds[chi.URLParam(r, "kind")]
		if !ok {
			http.Error(w, "unknown export kind", 404)
			return
		}
		n, err := loader.LoadBody(kind, r.Body)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, map[string]any{"kind": string(kind), "rows": n})
	})

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		if err := loader.Run(r.Context()); err != nil {
			http.Error(w, err.Error(), 502)
			return
		}
		w.WriteHeader(202)
		w.Write([]byte("ingest complete"))
	})

	mux.Get("/scores", func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDef(r.URL.Query().Get("limit"), 100)
		offset := atoiDef(r.URL.Query().Get("offset"), 0)

		start := time.Now()
		recs := scorer.ScoreAll(st.Rows(store.Delivery), st.Rows(store.Pacing), st.Rows(store.Contract))
		m.ScoringDuration.Observe(time.Since(start).Seconds())

		limit, offset = clampLimitOffset(limit, offset, len(recs))
		writeJSON(w, map[string]any{
			"count":     len(recs),
			"campaigns": paginate(recs, limit, offset),
		})
	})

	mux.Get("/pacing", func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDef(r.URL.Query().Get("limit"), 100)
		offset := atoiDef(r.URL.Query().Get("offset"), 0)

		delivery := st.Rows(store.Delivery)
		filtered := filterByDate(delivery, r.URL.Query().Get("from"), r.URL.Query().Get("to"))

		campaigns, skipped := calc.ProcessCampaigns(st.Rows(store.Contract), filtered, delivery, cfg.NameFields, log)
		m.CampaignsSkipped.Add(float64(skipped))

		limit, offset = clampLimitOffset(limit, offset, len(campaigns))
		writeJSON(w, map[string]any{
			"count":     len(campaigns),
			"skipped":   skipped,
			"campaigns": paginate(campaigns, limit, offset),
		})
	})

	return mux
}

// filterByDate narrows delivery rows to [from, to]. Empty bounds pass
// everything; the Totals sentinel never passes.
func filterByDate(rows []models.Row, fromS, toS string) []models.Row {
	from, fromOK := dates.Parse(fromS)
	to, toOK := dates.Parse(toS)
	if !fromOK && !toOK {
		return rows
	}
	var out []models.Row
	for _, r := range rows {
		d, ok := dates.Parse(r[models.ColDate])
		if !ok {
			continue
		}
		if fromOK && d.Before(from) {
			continue
		}
		if toOK && d.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
