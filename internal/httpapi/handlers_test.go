package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychjobs-engine/internal/domain"
	"psychjobs-engine/internal/events"
	"psychjobs-engine/internal/ingest"
	"psychjobs-engine/internal/store"
)

type fakeReader struct {
	records []domain.Record
}

func (f *fakeReader) List(_ context.Context, _ store.ListOpts) ([]domain.Record, error) {
	return f.records, nil
}

func (f *fakeReader) Count(_ context.Context, c store.Criteria) (int, error) {
	if c.Published != nil {
		n := 0
		for _, r := range f.records {
			if r.Published == *c.Published {
				n++
			}
		}
		return n, nil
	}
	return len(f.records), nil
}

func (f *fakeReader) GroupBy(_ context.Context, column string) ([]store.GroupCount, error) {
	if column != "source" {
		return nil, assert.AnError
	}
	return []store.GroupCount{{Key: "greenhouse", Count: len(f.records)}}, nil
}

type fakeRunner struct {
	triggered []ingest.RunParams
	err       error
}

func (f *fakeRunner) Trigger(_ context.Context, p ingest.RunParams) error {
	if f.err != nil {
		return f.err
	}
	f.triggered = append(f.triggered, p)
	return nil
}

func (f *fakeRunner) Status() ingest.Status {
	return ingest.Status{Running: len(f.triggered) > 0}
}

func testServer(t *testing.T, d Deps) *httptest.Server {
	t.Helper()
	if d.Hub == nil {
		d.Hub = events.NewHub()
	}
	srv := httptest.NewServer(Handler(d))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if into != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(into))
	}
	return res
}

func TestHealth(t *testing.T) {
	srv := testServer(t, Deps{Store: &fakeReader{}, Runner: &fakeRunner{}})
	var body map[string]any
	res := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["ok"])
}

func TestRecordsAndStats(t *testing.T) {
	reader := &fakeReader{records: []domain.Record{
		{Title: "PMHNP", Source: "greenhouse", Published: true},
		{Title: "Psych NP", Source: "greenhouse", Published: false},
	}}
	srv := testServer(t, Deps{Store: reader, Runner: &fakeRunner{}})

	var list map[string]any
	getJSON(t, srv.URL+"/records?limit=10", &list)
	assert.EqualValues(t, 2, list["count"])

	var stats map[string]any
	getJSON(t, srv.URL+"/stats", &stats)
	assert.EqualValues(t, 2, stats["total"])
	assert.EqualValues(t, 1, stats["published"])
	assert.Equal(t, "source", stats["by"])

	res := getJSON(t, srv.URL+"/stats?by=apply_url", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestTriggerRun(t *testing.T) {
	runner := &fakeRunner{}
	srv := testServer(t, Deps{Store: &fakeReader{}, Runner: runner})

	res, err := http.Post(srv.URL+"/runs/trigger", "application/json",
		strings.NewReader(`{"mode":"chunk","sources":["lever"]}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	require.Len(t, runner.triggered, 1)
	assert.Equal(t, ingest.ModeChunk, runner.triggered[0].Mode)
	assert.Equal(t, []string{"lever"}, runner.triggered[0].Sources)

	// bad mode rejected before admission
	res, err = http.Post(srv.URL+"/runs/trigger", "application/json",
		strings.NewReader(`{"mode":"bogus"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	runner.err = ingest.ErrRunInProgress
	res, err = http.Post(srv.URL+"/runs/trigger", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestRunsStatus(t *testing.T) {
	srv := testServer(t, Deps{Store: &fakeReader{}, Runner: &fakeRunner{}})
	var status ingest.Status
	getJSON(t, srv.URL+"/runs/status", &status)
	assert.False(t, status.Running)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := testServer(t, Deps{Store: &fakeReader{}, Runner: &fakeRunner{}})
	res, err := http.Post(srv.URL+"/records", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}
