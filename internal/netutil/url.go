package netutil

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are stripped wholesale when canonicalizing.
var trackingParams = []string{
	"gclid", "fbclid", "msclkid", "mc_cid", "mc_eid", "mkt_tok",
	"source", "src", "ref", "refid", "trk", "trkid",
	"cmpid", "campaignid", "clickid", "tid", "sid",
}

// CanonicalURL lowercases scheme/host, drops the fragment, removes
// tracking query parameters, trims trailing slashes, and sorts what
// remains of the query so equal links compare equal.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	u.Fragment = ""
	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") {
			q.Del(k)
			continue
		}
		for _, p := range trackingParams {
			if lk == p {
				q.Del(k)
				break
			}
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SameResource reports whether two URLs point at the same host+path
// after canonicalization, ignoring scheme and residual query noise.
func SameResource(a, b string) bool {
	ua, errA := url.Parse(CanonicalURL(a))
	ub, errB := url.Parse(CanonicalURL(b))
	if errA != nil || errB != nil {
		return false
	}
	return ua.Host != "" && ua.Host == ub.Host && ua.Path == ub.Path
}
