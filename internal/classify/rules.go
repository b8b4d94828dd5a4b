package classify

// Phrase tables tuned for the psychiatric-mental-health nurse
// practitioner vertical. Matching logic lives in classifier.go; keep
// this file data-only so retuning never touches the algorithm.

// positivePhrases: any hit in title+description marks the posting as
// on-vertical.
var positivePhrases = []string{
	"pmhnp",
	"pmh-np",
	"pmh np",
	"psychiatric nurse practitioner",
	"psychiatric-mental health nurse practitioner",
	"psychiatric mental health nurse practitioner",
	"psychiatric np",
	"psych np",
	"psych nurse practitioner",
	"mental health nurse practitioner",
	"behavioral health nurse practitioner",
}

// strongPositives is the subset of positives decisive enough to excuse
// an ambiguous wrong-role phrase in the title (dual-title postings).
var strongPositives = []string{
	"pmhnp",
	"pmh-np",
	"psychiatric nurse practitioner",
	"psychiatric-mental health nurse practitioner",
	"psychiatric mental health nurse practitioner",
	"psych nurse practitioner",
	"mental health nurse practitioner",
}

// domainTerms + roleIndicators back the fallback rule: specialty term
// anywhere plus a role indicator in the title.
var domainTerms = []string{
	"psychiatric",
	"psychiatry",
	"behavioral health",
	"mental health",
}

var roleIndicators = []string{
	"nurse practitioner",
	"pmhnp",
	"aprn",
	"arnp",
	" np ",
	"np,",
	"np)",
	"np/",
	"(np",
	"/np",
	"- np",
	"np -",
}

// wrongRolePhrases reject on a title hit: adjacent professions,
// non-clinical roles, unrelated titles the aggregators love to return.
var wrongRolePhrases = []string{
	"registered nurse",
	"rn ",
	" rn",
	"staff nurse",
	"charge nurse",
	"lpn",
	"lvn",
	"cna",
	"medical assistant",
	"physician assistant",
	"psychiatrist",
	"psychologist",
	"therapist",
	"counselor",
	"counsellor",
	"social worker",
	"lcsw",
	"lmsw",
	"lmft",
	"lpc",
	"case manager",
	"care coordinator",
	"technician",
	"tech ",
	"recruiter",
	"receptionist",
	"medical director",
	"physician",
	"nurse manager",
	"director of nursing",
	"intake specialist",
	"billing",
	"scheduler",
	"faculty",
	"instructor",
	"professor",
}

// ambiguousWrongRoles are wrong-role phrases that legitimately appear
// in dual-title postings ("Psychiatric Nurse Practitioner / Physician
// Assistant"). A strong positive anywhere in the text excuses them.
var ambiguousWrongRoles = map[string]bool{
	"physician assistant": true,
	"psychiatrist":        true,
	"therapist":           true,
}
