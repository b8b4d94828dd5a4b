package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTrackingHost(t *testing.T, srv *httptest.Server) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	old := trackingDomains
	trackingDomains = append([]string{u.Host}, trackingDomains...)
	t.Cleanup(func() { trackingDomains = old })
}

func TestValidateTrustsDirectATS(t *testing.T) {
	v := New(time.Second, nil)
	res := v.Validate(context.Background(), "https://boards.greenhouse.io/acme/jobs/123?utm_source=feed")
	assert.False(t, res.Dead)
	assert.False(t, res.Tracking)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/123", res.CleanURL)
}

func TestValidateTrackingRedirectStaysOnTracker(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/click" {
			http.Redirect(w, r, srv.URL+"/landing", http.StatusFound)
			return
		}
		w.Write([]byte("choose your destination"))
	}))
	defer srv.Close()
	withTrackingHost(t, srv)

	v := New(time.Second, nil)
	res := v.Validate(context.Background(), srv.URL+"/click")
	assert.True(t, res.Tracking)
	assert.False(t, res.Dead, "unresolved tracking links are rejected, not dead")
	assert.Empty(t, res.CleanURL)
}

func TestValidateTrackingResolvesOffTracker(t *testing.T) {
	dest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("apply for this PMHNP role"))
	}))
	defer dest.Close()

	tracker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, dest.URL+"/job/42", http.StatusFound)
	}))
	defer tracker.Close()
	withTrackingHost(t, tracker)

	v := New(time.Second, nil)
	res := v.Validate(context.Background(), tracker.URL+"/click")
	assert.True(t, res.Tracking)
	assert.False(t, res.Dead)
	assert.Contains(t, res.CleanURL, "/job/42")
}

func TestValidateDeadStatuses(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	v := New(time.Second, nil)
	res := v.Validate(context.Background(), srv.URL+"/gone")
	assert.True(t, res.Dead)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestValidateDeadPhraseInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>This position has been filled. Check back soon.</html>"))
	}))
	defer srv.Close()

	v := New(time.Second, nil)
	res := v.Validate(context.Background(), srv.URL+"/job")
	assert.True(t, res.Dead)
}

func TestValidateNetworkFailureKeepsLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	v := New(500*time.Millisecond, nil)
	res := v.Validate(context.Background(), srv.URL+"/job")
	assert.False(t, res.Dead, "transient failures must not kill the record")
	assert.Equal(t, srv.URL+"/job", res.CleanURL)
}

func TestCheckAliveHeadFallsBackToGet(t *testing.T) {
	var sawGet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		w.Write([]byte("still open"))
	}))
	defer srv.Close()

	v := New(time.Second, nil)
	res := v.CheckAlive(context.Background(), srv.URL+"/job")
	assert.True(t, sawGet)
	assert.False(t, res.Dead)
	assert.NotEmpty(t, res.CleanURL)
}

func TestCheckAliveHeadDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	v := New(time.Second, nil)
	res := v.CheckAlive(context.Background(), srv.URL+"/job")
	assert.True(t, res.Dead)
}
