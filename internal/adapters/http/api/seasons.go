package api

import "net/http"

// SeasonsHandler lists seasons and serves their summaries.
type SeasonsHandler struct {
	deps Dependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps Dependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

type seasonList struct {
	Seasons []string `json:"seasons"`
}

// seasonSummary is a report without its contestant table.
type seasonSummary struct {
	ID                 string         `json:"id"`
	Seed               uint64         `json:"seed"`
	Rounds             int            `json:"rounds"`
	Played             int            `json:"played"`
	SkippedSelf        int            `json:"skipped_self"`
	SkippedNoOpponent  int            `json:"skipped_no_opponent"`
	Injected           int            `json:"injected"`
	ColdStartFallbacks int            `json:"coldstart_fallbacks"`
	ByGranularity      map[string]int `json:"by_granularity"`
	Contestants        int            `json:"contestants"`
	DurationMs         int64          `json:"duration_ms"`
}

// HandleList handles GET /seasons requests.
func (h *SeasonsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.deps.Seasons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, seasonList{Seasons: ids})
}

// HandleGet handles GET /seasons/{season} requests.
func (h *SeasonsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rep, err := h.deps.Report(r.Context(), r.PathValue("season"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seasonSummary{
		ID:                 rep.ID,
		Seed:               rep.Seed,
		Rounds:             rep.Rounds,
		Played:             rep.Played,
		SkippedSelf:        rep.SkippedSelf,
		SkippedNoOpponent:  rep.SkippedNoOpponent,
		Injected:           rep.Injected,
		ColdStartFallbacks: rep.ColdStartFallbacks,
		ByGranularity:      rep.ByGranularity,
		Contestants:        len(rep.Contestants),
		DurationMs:         rep.Duration.Milliseconds(),
	})
}
