package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"psychjobs-engine/internal/events"
	"psychjobs-engine/internal/ingest"
	"psychjobs-engine/internal/store"
)

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"ok": true})
}

type recordsHandler struct {
	store RecordReader
}

func (h recordsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOpts{
		Sort:          q.Get("sort"),
		PublishedOnly: q.Get("published") != "false",
	}
	if lim := q.Get("limit"); lim != "" {
		n, err := strconv.Atoi(lim)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	records, err := h.store.List(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"records": records, "count": len(records)})
}

func (h recordsHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.store.Count(ctx, store.Criteria{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	published := true
	live, err := h.store.Count(ctx, store.Criteria{Published: &published})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	groupBy := r.URL.Query().Get("by")
	if groupBy == "" {
		groupBy = "source"
	}
	groups, err := h.store.GroupBy(ctx, groupBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, map[string]any{
		"total":     total,
		"published": live,
		"by":        groupBy,
		"groups":    groups,
	})
}

type runsHandler struct {
	runner Runner
}

type triggerRequest struct {
	Mode    string   `json:"mode"`
	Sources []string `json:"sources"`
	Pages   int      `json:"pages"`
	Queries []string `json:"queries"`
}

func (h runsHandler) trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.Mode != "" && req.Mode != ingest.ModeFull && req.Mode != ingest.ModeChunk {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("mode must be %q or %q", ingest.ModeFull, ingest.ModeChunk))
		return
	}

	// the run outlives this request; admission is what we report
	err := h.runner.Trigger(context.Background(), ingest.RunParams{
		Mode:    req.Mode,
		Sources: req.Sources,
		Pages:   req.Pages,
		Queries: req.Queries,
	})
	if errors.Is(err, ingest.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]any{"started": true})
}

func (h runsHandler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.runner.Status())
}

type eventsHandler struct {
	hub *events.Hub
}

func (h eventsHandler) serveSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(ch)

	fmt.Fprintf(w, "event: message\ndata: %s\n\n", events.Make("ping", nil))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
