package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: healthHandler,
	}))

	rh := recordsHandler{store: d.Store}
	mux.HandleFunc("/records", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.list,
	}))
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.stats,
	}))

	runs := runsHandler{runner: d.Runner}
	mux.HandleFunc("/runs/trigger", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: runs.trigger,
	}))
	mux.HandleFunc("/runs/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: runs.status,
	}))

	eh := eventsHandler{hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.serveSSE,
	}))

	return mux
}

// Handler wraps the mux in the standard middleware stack.
func Handler(d Deps) http.Handler {
	return Chain(NewMux(d), Recover, AccessLog, Cors)
}
