// Package emailalert turns job-alert emails in an IMAP mailbox into
// raw records. Processed messages are marked \Seen so the next run
// only sees new alerts.
package emailalert

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/emersion/go-imap/v2"

	"psychjobs-engine/internal/domain"
)

const defaultMaxMessages = 200

type Config struct {
	Host     string
	Port     int
	Username string
	Password string // resolved by the caller, keychain first
	Mailbox  string

	// SubjectAny filters which messages count as job alerts; a message
	// qualifies when its subject contains any entry (case-insensitive).
	// Empty means every unseen message is scanned.
	SubjectAny []string

	MaxMessages int
}

type Fetcher struct {
	cfg Config
}

func New(cfg Config) *Fetcher {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = defaultMaxMessages
	}
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) Name() string { return "emailalert" }

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	addr := f.cfg.Host
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", f.cfg.Host, f.cfg.Port)
	}

	c, err := dialAndLogin(ctx, addr, f.cfg.Username, f.cfg.Password)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = c.Logout().Wait()
		_ = c.Close()
	}()

	msgs, err := fetchUnseen(ctx, c, f.cfg.Mailbox, f.cfg.MaxMessages)
	if err != nil {
		return nil, err
	}

	var out []domain.RawRecord
	var processed []imap.UID
	for _, m := range msgs {
		if !f.subjectMatches(m.Subject) {
			continue
		}
		body, err := htmlBody(m.Raw)
		if err != nil {
			log.Printf("[ats:emailalert] uid=%d body: %v", m.UID, err)
			continue
		}
		recs, err := ParseAlertHTML(body)
		if err != nil {
			log.Printf("[ats:emailalert] uid=%d parse: %v", m.UID, err)
			continue
		}
		out = append(out, recs...)
		processed = append(processed, m.UID)
	}

	if err := markSeen(c, processed); err != nil {
		log.Printf("[ats:emailalert] mark seen: %v", err)
	}
	log.Printf("[ats:emailalert] messages=%d postings=%d", len(processed), len(out))
	return out, nil
}

func (f *Fetcher) subjectMatches(subject string) bool {
	if len(f.cfg.SubjectAny) == 0 {
		return true
	}
	low := strings.ToLower(subject)
	for _, s := range f.cfg.SubjectAny {
		if s != "" && strings.Contains(low, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
