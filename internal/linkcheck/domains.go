package linkcheck

import "strings"

// Domain tables. Matching helpers are generic; the tuning lives here.

// directATSDomains host suffixes are trusted without a network call:
// ATS links are stable and die loudly when a req closes.
var directATSDomains = []string{
	"boards.greenhouse.io",
	"greenhouse.io",
	"jobs.lever.co",
	"lever.co",
	"myworkdayjobs.com",
	"icims.com",
	"jobvite.com",
	"ashbyhq.com",
	"smartrecruiters.com",
	"bamboohr.com",
	"workable.com",
	"breezy.hr",
	"applytojob.com",
	"paylocity.com",
	"ultipro.com",
	"taleo.net",
	"oraclecloud.com",
	"adp.com",
	"paycomonline.net",
	"healthcaresource.com",
}

// trackingDomains are aggregator redirect hosts. Links here decay
// within days; they must resolve to a non-tracking destination or the
// record is rejected outright.
var trackingDomains = []string{
	"adzuna.com",
	"click.appcast.io",
	"appcast.io",
	"jobg8.com",
	"jobtarget.com",
	"recruitics.com",
	"joveo.com",
	"pandologic.com",
	"click.jobtome.com",
	"neuvoo.com",
	"talent.com",
	"jobrapido.com",
	"jooble.org",
	"adview.online",
	"lnkd.in",
	"jobads.",
}

// jobBoardDomains rank below employer career pages in link quality.
var jobBoardDomains = []string{
	"indeed.com",
	"linkedin.com",
	"ziprecruiter.com",
	"glassdoor.com",
	"monster.com",
	"careerbuilder.com",
	"simplyhired.com",
	"snagajob.com",
	"jobs.com",
	"dice.com",
	"vivian.com",
	"incrediblehealth.com",
	"nursingjobcafe.com",
	"health-ecareers.com",
	"practicelink.com",
	"psychiatrictimes.com",
}

// hostMatchesAny matches exact hosts and subdomains; a table entry
// ending in "." is a substring pattern.
func hostMatchesAny(host string, domains []string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, d := range domains {
		if strings.HasSuffix(d, ".") {
			if strings.Contains(host, d) {
				return true
			}
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// IsDirectATS reports whether host belongs to a recognized ATS.
func IsDirectATS(host string) bool { return hostMatchesAny(host, directATSDomains) }

// IsTracking reports whether host is a tracking/redirect aggregator.
func IsTracking(host string) bool { return hostMatchesAny(host, trackingDomains) }

// IsJobBoard reports whether host is a general job board.
func IsJobBoard(host string) bool { return hostMatchesAny(host, jobBoardDomains) }
