package linkcheck

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"psychjobs-engine/internal/netutil"
)

// deadPhrases mark a posting as filled/expired when found in the body
// prefix of an otherwise-200 page.
var deadPhrases = []string{
	"no longer accepting applications",
	"this position has been filled",
	"position has been filled",
	"is no longer available",
	"job not found",
	"posting not found",
	"requisition not found",
	"this job has expired",
	"job has expired",
	"this posting has closed",
	"position closed",
}

const (
	bodyPrefixCap = 64 << 10 // bytes of body inspected for dead phrases
	maxRedirects  = 6
)

// Result classifies one apply URL. CleanURL is empty when the link was
// rejected (unresolvable tracking URL); Dead means the destination was
// reached and reported the posting gone.
type Result struct {
	CleanURL string
	FinalURL string
	Status   int
	Dead     bool
	Tracking bool
}

type Validator struct {
	hc      *http.Client
	limiter *netutil.HostLimiter
}

// New builds a Validator with a bounded-timeout client that follows at
// most maxRedirects hops. limiter may be nil.
func New(timeout time.Duration, limiter *netutil.HostLimiter) *Validator {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Validator{
		hc: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		limiter: limiter,
	}
}

// Validate classifies url. Trusted ATS hosts skip the network entirely.
// Tracking hosts must redirect off-domain or the link is rejected.
// Network failures preserve the original URL and never mark it dead.
func (v *Validator) Validate(ctx context.Context, rawURL string) Result {
	host := hostOf(rawURL)
	if host == "" {
		return Result{Dead: true}
	}

	if IsDirectATS(host) {
		return Result{CleanURL: netutil.CanonicalURL(rawURL), FinalURL: rawURL}
	}

	if IsTracking(host) {
		return v.resolveTracking(ctx, rawURL)
	}

	res := v.get(ctx, rawURL)
	if res.Status == 0 {
		// transient network failure: keep the link, do not mark dead
		return Result{CleanURL: rawURL, FinalURL: rawURL}
	}
	return res
}

// CheckAlive is the lightweight sweep variant: HEAD first, falling
// back to the full GET check when the server rejects HEAD.
func (v *Validator) CheckAlive(ctx context.Context, rawURL string) Result {
	host := hostOf(rawURL)
	if host == "" {
		return Result{Dead: true}
	}
	// ATS hosts are probed too: the sweep exists to catch closed reqs
	// on otherwise-trusted hosts.

	if v.limiter != nil {
		if err := v.limiter.WaitURL(ctx, rawURL); err != nil {
			return Result{CleanURL: rawURL, FinalURL: rawURL}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Result{Dead: true}
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := v.hc.Do(req)
	if err != nil {
		return Result{CleanURL: rawURL, FinalURL: rawURL}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMethodNotAllowed, http.StatusForbidden:
		return v.Validate(ctx, rawURL)
	case http.StatusNotFound, http.StatusGone:
		return Result{FinalURL: resp.Request.URL.String(), Status: resp.StatusCode, Dead: true}
	}
	return Result{
		CleanURL: rawURL,
		FinalURL: resp.Request.URL.String(),
		Status:   resp.StatusCode,
	}
}

func (v *Validator) resolveTracking(ctx context.Context, rawURL string) Result {
	res := v.get(ctx, rawURL)
	res.Tracking = true
	if res.Status == 0 {
		// could not resolve: tracking links are rejected, not kept
		log.Printf("[linkcheck] tracking link unresolvable url=%s", rawURL)
		return Result{Tracking: true}
	}
	finalHost := hostOf(res.FinalURL)
	if finalHost == "" || IsTracking(finalHost) {
		// never left the aggregator: reject, but the posting may
		// still exist elsewhere, so not dead
		return Result{Tracking: true, FinalURL: res.FinalURL, Status: res.Status}
	}
	if res.Dead {
		return res
	}
	res.CleanURL = netutil.CanonicalURL(res.FinalURL)
	return res
}

const userAgent = "psychjobs-engine/1.0 (+local)"

// get performs the single bounded GET, following redirects, and
// inspects status plus a capped body prefix. Status 0 means the
// request never completed.
func (v *Validator) get(ctx context.Context, rawURL string) Result {
	if v.limiter != nil {
		if err := v.limiter.WaitURL(ctx, rawURL); err != nil {
			return Result{}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.hc.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[linkcheck] get failed url=%s err=%v", rawURL, err)
		}
		return Result{}
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	out := Result{FinalURL: finalURL, Status: resp.StatusCode}

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone, http.StatusForbidden:
		out.Dead = true
		return out
	}

	prefix, _ := io.ReadAll(io.LimitReader(resp.Body, bodyPrefixCap))
	body := strings.ToLower(string(prefix))
	for _, p := range deadPhrases {
		if strings.Contains(body, p) {
			out.Dead = true
			return out
		}
	}

	out.CleanURL = netutil.CanonicalURL(finalURL)
	return out
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}
