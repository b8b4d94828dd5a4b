package emailalert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertCard = `<html><body>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678?trk=alert"><img src="logo.png"></a>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678?trk=alert">Psychiatric Nurse Practitioner (PMHNP)</a>
    <p>Acme Behavioral Health · Denver, CO</p>
    <p>$140,000 - $170,000 / year</p>
  </td></tr>
</table>
<table>
  <tr><td>
    <a href="https://tracking.example.com/r?url=https%3A%2F%2Fwww.indeed.com%2Fviewjob%3Fjk%3Dabc123">Psych NP, Telehealth</a>
    <p>Telecare · Remote</p>
  </td></tr>
</table>
<a href="https://www.linkedin.com/jobs/search/">See all jobs</a>
<a href="https://example.com/unsubscribe">Unsubscribe</a>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	recs, err := ParseAlertHTML(alertCard)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	li := recs[0]
	assert.Equal(t, "Psychiatric Nurse Practitioner (PMHNP)", li.Title, "logo anchor must not shadow the titled anchor")
	assert.Equal(t, "Acme Behavioral Health", li.Employer)
	assert.Equal(t, "Denver, CO", li.Location)
	assert.Equal(t, "emailalert:4012345678", li.ExternalID)
	assert.Contains(t, li.SalaryText, "$140,000")

	in := recs[1]
	assert.Equal(t, "Psych NP, Telehealth", in.Title)
	assert.Equal(t, "emailalert:abc123", in.ExternalID)
	assert.Contains(t, in.ApplyURL, "indeed.com", "redirector unwrapped to the real posting URL")
	assert.Equal(t, "Telecare", in.Employer)
	assert.Equal(t, "Remote", in.Location)
}

func TestParseAlertHTMLSkipsNonPostingAnchors(t *testing.T) {
	recs, err := ParseAlertHTML(`<html><body>
		<a href="https://www.linkedin.com/jobs/search/">See all jobs</a>
		<a href="mailto:support@example.com">support</a>
	</body></html>`)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSubjectMatches(t *testing.T) {
	f := New(Config{SubjectAny: []string{"job alert", "new jobs"}})
	assert.True(t, f.subjectMatches("Your Job Alert: 12 new PMHNP roles"))
	assert.False(t, f.subjectMatches("Weekly newsletter"))

	open := New(Config{})
	assert.True(t, open.subjectMatches("anything"))
}
