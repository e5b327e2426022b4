package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stockfolio/internal/holdings"
	"stockfolio/internal/quote"
	"stockfolio/internal/refresh"
	"stockfolio/internal/valuation"
)

// placeholderDash renders in place of absent P/L figures.
const placeholderDash = "–"

// Handler handles the tracker's HTTP requests.
type Handler struct {
	manager *refresh.Manager
	norm    *quote.Normalizer
	poller  *refresh.Poller
	timeout time.Duration
	log     zerolog.Logger
}

func NewHandler(manager *refresh.Manager, norm *quote.Normalizer, poller *refresh.Poller, timeout time.Duration, log zerolog.Logger) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		manager: manager,
		norm:    norm,
		poller:  poller,
		timeout: timeout,
		log:     log.With().Str("component", "handlers").Logger(),
	}
}

// HandleQuote proxies a batched symbol lookup:
// GET /api/quote?symbols=AAPL,MSFT (alias: ?symbol=AAPL).
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	if strings.TrimSpace(raw) == "" {
		raw = r.URL.Query().Get("symbol")
	}

	res, err := h.norm.Lookup(r.Context(), splitCSV(raw))
	if err != nil {
		h.writeQuoteError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleListHoldings(w http.ResponseWriter, _ *http.Request) {
	list := h.manager.Snapshot().Holdings
	if list == nil {
		list = []holdings.Holding{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

type addHoldingRequest struct {
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	CostPerShare float64 `json:"costPerShare"`
}

func (h *Handler) HandleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req addHoldingRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	added, err := h.manager.Add(req.Symbol, req.Shares, req.CostPerShare)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.symbolSetChanged()
	h.writeJSON(w, http.StatusCreated, added)
}

func (h *Handler) HandleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := h.manager.Remove(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	h.symbolSetChanged()
	w.WriteHeader(http.StatusNoContent)
}

// positionView decorates a position with the shared sign-formatted P/L
// strings; absent figures render as a dash placeholder.
type positionView struct {
	valuation.Position
	PLDisplay        string `json:"plDisplay"`
	PLPercentDisplay string `json:"plPercentDisplay"`
}

type portfolioResponse struct {
	Positions             []positionView   `json:"positions"`
	Totals                valuation.Totals `json:"totals"`
	TotalPLDisplay        string           `json:"totalPlDisplay"`
	TotalPLPercentDisplay string           `json:"totalPlPercentDisplay"`
	RefreshedAt           time.Time        `json:"refreshedAt"`
}

func (h *Handler) HandlePortfolio(w http.ResponseWriter, _ *http.Request) {
	snap := h.manager.Snapshot()
	positions, totals := valuation.Valuate(snap.Holdings, snap.Quotes)

	views := make([]positionView, 0, len(positions))
	for _, p := range positions {
		v := positionView{Position: p, PLDisplay: placeholderDash, PLPercentDisplay: placeholderDash}
		if p.PL != nil {
			v.PLDisplay = valuation.FormatSigned(*p.PL)
		}
		if p.PLPercent != nil {
			v.PLPercentDisplay = valuation.FormatSigned(*p.PLPercent)
		}
		views = append(views, v)
	}

	h.writeJSON(w, http.StatusOK, portfolioResponse{
		Positions:             views,
		Totals:                totals,
		TotalPLDisplay:        valuation.FormatSigned(totals.PL),
		TotalPLPercentDisplay: valuation.FormatSigned(totals.PLPercent),
		RefreshedAt:           snap.RefreshedAt,
	})
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Refresh(r.Context()); err != nil {
		h.writeQuoteError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"refreshedAt": h.manager.Snapshot().RefreshedAt,
	})
}

func (h *Handler) HandleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="holdings.json"`)
	if err := h.manager.Export(w); err != nil {
		h.log.Error().Err(err).Msg("export failed")
	}
}

func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const maxBody = 1 << 20 // 1MB
	replaced, err := h.manager.Import(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if replaced {
		h.symbolSetChanged()
	}
	// A malformed payload is a silent no-op, not an error.
	h.writeJSON(w, http.StatusOK, map[string]bool{"replaced": replaced})
}

// symbolSetChanged restarts the poll schedule and kicks off an
// immediate refresh with the new symbol set.
func (h *Handler) symbolSetChanged() {
	if h.poller != nil {
		h.poller.Restart()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		_ = h.manager.Refresh(ctx)
	}()
}

func (h *Handler) writeQuoteError(w http.ResponseWriter, err error) {
	var ue *quote.UpstreamError
	switch {
	case errors.Is(err, quote.ErrNoSymbols):
		h.writeError(w, http.StatusBadRequest, "symbols is required")
	case errors.As(err, &ue):
		h.writeError(w, http.StatusBadGateway, ue.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		h.log.Error().Err(err).Msg("encoding response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
