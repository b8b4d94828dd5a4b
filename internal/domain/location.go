package domain

// Location is the structured form of a free-text location string.
// Derived deterministically; re-parsing Original yields the same value.
type Location struct {
	City       string
	State      string
	StateCode  string
	Country    string
	Remote     bool
	Hybrid     bool
	Confidence float64
	Original   string
}

// Bucket groups locations for duplicate matching: remote postings all
// share one bucket, everything else buckets by state code (or the raw
// text when no state was recovered).
func (l Location) Bucket() string {
	if l.Remote {
		return "remote"
	}
	if l.StateCode != "" {
		return l.StateCode
	}
	return l.Original
}
