package classify

import (
	"fmt"
	"regexp"
)

type Extract int

const (
	EXTRACT_NONE Extract = iota
	// the first integer in the label, ex. "County Commissioner, 5th District" -> "5"
	EXTRACT_DISTRICT
	// "Subcircuit N"
	EXTRACT_SUBCIRCUIT
	// "Ward N"
	EXTRACT_WARD
)

type Scope int

const (
	SCOPE_ANY Scope = iota
	SCOPE_MUNICIPAL
	SCOPE_NON_MUNICIPAL
)

// Rule maps every label matching Pattern to the office Office.
type Rule struct {
	Office  string
	Pattern *regexp.Regexp
	// defaults to IL
	State    string
	Place    string
	Judicial bool
	Extract  Extract
	// restricts the rule to municipal or non-municipal elections, bare labels
	// like "CLERK" name a different office depending on the election.
	Scope Scope
}

func (r Rule) String() string {
	return fmt.Sprintf("%s /%s/", r.Office, r.Pattern.String())
}

func (r Rule) applies(st State) bool {
	switch r.Scope {
	case SCOPE_MUNICIPAL:
		return st.Municipal
	case SCOPE_NON_MUNICIPAL:
		return !st.Municipal
	}
	return true
}

func rule(office, pattern string) Rule {
	return Rule{
		Office:  office,
		Pattern: regexp.MustCompile(`(?i)` + pattern),
	}
}

func (r Rule) district() Rule {
	r.Extract = EXTRACT_DISTRICT
	return r
}

func (r Rule) ward() Rule {
	r.Extract = EXTRACT_WARD
	return r
}

func (r Rule) subcircuit() Rule {
	r.Extract = EXTRACT_SUBCIRCUIT
	return r
}

func (r Rule) judicial() Rule {
	r.Judicial = true
	return r
}

func (r Rule) city() Rule {
	r.Place = "Chicago"
	return r
}

func (r Rule) state(state string) Rule {
	r.State = state
	return r
}

func (r Rule) scope(scope Scope) Rule {
	r.Scope = scope
	return r
}

// DefaultRules lists offices from federal to city, where two patterns can match
// the same label the more specific one comes first.
var DefaultRules = []Rule{
	// federal
	rule("President", `president.+united\s+states|pres\.?\s+(and|&)\s+vice\s+pres`).state("US"),
	rule("U.S. Senator", `senator,?\s+u\.\s?s\.|u\.\s?s\.\s+senator|united\s+states\s+senator`),
	rule("U.S. Representative", `u\.\s?s\.\s+rep|rep(resentative|\.)?\s+in\s+congress|congressional`).district(),

	// state
	rule("Governor", `governor\s+(and|&)\s+lieutenant\s+governor`),
	rule("Lieutenant Governor", `lieutenant\s+governor|lt\.?\s+governor`),
	rule("Governor", `governor`),
	rule("Secretary of State", `secretary\s+of\s+state`),
	rule("Attorney General", `attorney\s+general`),
	rule("Comptroller", `comptroller`),
	rule("Treasurer", `state\s+treasurer`),
	rule("Treasurer", `^treasurer$`).scope(SCOPE_NON_MUNICIPAL),
	rule("State Senator", `state\s+senator|senator.+general\s+assembly`).district(),
	rule("State Representative", `state\s+rep|rep(resentative|\.)?\s+in\s+gen(eral|\.)?\s+assembly`).district(),

	// county
	rule("Clerk of the Circuit Court", `clerk\s+of\s+(the\s+)?circuit\s+court`),
	rule("County Board President", `board\s+president|president.+county\s+board|president.+board.+commissioners`),
	rule("Water Reclamation District Commissioner", `water\s+reclamation`),
	rule("Board of Review", `board\s+of\s+review`).district(),
	rule("County Commissioner", `commissioner`).district(),
	rule("County Treasurer", `county\s+treasurer|treasurer.+county`),
	rule("County Clerk", `county\s+clerk|clerk.+county`),
	rule("County Clerk", `^clerk$`).scope(SCOPE_NON_MUNICIPAL),
	rule("Sheriff", `sheriff`),
	rule("Assessor", `assessor`),
	rule("Recorder of Deeds", `recorder`),
	rule("State's Attorney", `state'?s\s+attorney`),

	// judicial
	rule("Supreme Court Judge", `supreme\s+court`).judicial(),
	rule("Appellate Court Judge", `ap+el+ate`).judicial(),
	rule("Circuit Court Judge", `sub-?circuit`).judicial().subcircuit(),
	rule("Circuit Court Judge", `circuit\s+cou+r?t|judge.+circuit|circuit.+judge`).judicial(),

	// city
	rule("Mayor", `mayor`).city(),
	rule("City Clerk", `city\s+clerk`).city(),
	rule("City Clerk", `^clerk$`).city().scope(SCOPE_MUNICIPAL),
	rule("City Treasurer", `city\s+treasurer`).city(),
	rule("City Treasurer", `^treasurer$`).city().scope(SCOPE_MUNICIPAL),
	rule("Alderman", `alderm[ae]n|alderperson`).city().ward(),
	rule("Ward Committeeman", `committee(man|person|woman)`).city().ward(),
}

// DefaultSkipList holds the labels that are never contests, matched as
// case-insensitive substrings.
var DefaultSkipList = []string{
	"ballots cast",
	"registered voters",
	"amendment",
	"delegate",
	"state central committee",
	"precinct committeeman",
}
