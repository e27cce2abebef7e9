// Package classify maps the free-text label of a ballot line onto an office,
// a judicial retention race, or a ballot measure.
package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"chicago-openelex/internal/components/assert"
	"chicago-openelex/internal/nametag"
)

type Kind string

const (
	KIND_OFFICE         Kind = "office"
	KIND_RETENTION      Kind = "retention"
	KIND_BALLOT_MEASURE Kind = "ballot_measure"
)

const (
	REASON_SKIP_LIST = "skip list"
	REASON_AMBIGUOUS = "ambiguous name"
	REASON_TAGGER    = "name tagger failed"
)

const (
	OFFICE_RETENTION = "Judicial Retention"
	DEFAULT_STATE    = "IL"
	DEFAULT_COUNTY   = "Cook"
)

type Classification struct {
	Office   string
	State    string
	Place    string
	County   string
	District string
	Kind     Kind
	// the rule that matched, empty when the name tagger decided
	Rule string
}

type Outcome struct {
	Label  string
	Loaded bool
	// why a label was not loaded
	Reason string
	Err    error
	Class  Classification
}

// State is carried from one label to the next within a single election.
type State struct {
	// ballot lines are listed offices first, then judges, then ballot measures,
	// once a ballot measure is seen every unmatched label after it is one too.
	BallotMeasures bool
	Municipal      bool
}

type NameTagger interface {
	Tag(text string) (nametag.Fields, nametag.Label, error)
}

type Classifier struct {
	Rules    []Rule
	SkipList []string
	Tagger   NameTagger
}

func NewClassifier(tagger NameTagger) Classifier {
	assert.NotNil(tagger)
	return Classifier{
		Rules:    DefaultRules,
		SkipList: DefaultSkipList,
		Tagger:   tagger,
	}
}

func (c Classifier) skipped(label string) bool {
	lower := strings.ToLower(label)
	for _, entry := range c.SkipList {
		if strings.Contains(lower, entry) {
			return true
		}
	}
	return false
}

func (c Classifier) match(label string, st State) (Rule, bool) {
	for _, r := range c.Rules {
		if !r.applies(st) {
			continue
		}
		if r.Pattern.MatchString(label) {
			return r, true
		}
	}
	return Rule{}, false
}

var (
	integerRegex    = regexp.MustCompile(`\d+`)
	subcircuitRegex = regexp.MustCompile(`(?i)sub-?circuit\D*(\d+)`)
	// "5th", "5 District", "District 5", "District No. 5"
	districtRegex = regexp.MustCompile(`(?i)\b(\d+)(?:st|nd|rd|th)\b|\b(\d+)\s+district\b|\bdistrict\s*(?:no\.?|#)?\s*(\d+)`)
)

// districtNumber only takes integers that name a district, terms like
// "6 YEAR TERM" are not districts.
func districtNumber(label string) string {
	groups := districtRegex.FindStringSubmatch(label)
	if groups == nil {
		return ""
	}
	for _, g := range groups[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func extract(r Rule, label string) string {
	switch r.Extract {
	case EXTRACT_DISTRICT:
		return districtNumber(label)
	case EXTRACT_WARD:
		n := integerRegex.FindString(label)
		if n == "" {
			return ""
		}
		return "Ward " + n
	case EXTRACT_SUBCIRCUIT:
		groups := subcircuitRegex.FindStringSubmatch(label)
		if len(groups) < 2 {
			return ""
		}
		return "Subcircuit " + groups[1]
	}
	return ""
}

func classifyOffice(r Rule, label string) Classification {
	class := Classification{
		Office:   r.Office,
		State:    r.State,
		Place:    r.Place,
		District: extract(r, label),
		Kind:     KIND_OFFICE,
		Rule:     r.String(),
	}
	if class.State == "" {
		class.State = DEFAULT_STATE
	}
	if !r.Judicial && strings.Contains(strings.ToLower(label), "county") {
		class.County = DEFAULT_COUNTY
	}
	return class
}

// Classify decides what a single label is given the state left by the labels
// before it in the same election, and returns the state for the next label.
func (c Classifier) Classify(label string, st State) (Outcome, State) {
	label = strings.TrimSpace(label)
	out := Outcome{Label: label}

	if c.skipped(label) {
		out.Reason = REASON_SKIP_LIST
		return out, st
	}

	r, ok := c.match(label, st)
	if ok {
		out.Loaded = true
		out.Class = classifyOffice(r, label)
		return out, st
	}

	if st.BallotMeasures {
		out.Loaded = true
		out.Class = Classification{Kind: KIND_BALLOT_MEASURE}
		return out, st
	}

	_, tag, err := c.Tagger.Tag(strings.ToLower(label))
	if errors.Is(err, nametag.ErrRepeatedLabel) {
		out.Reason = REASON_AMBIGUOUS
		out.Err = err
		return out, st
	}
	if err != nil {
		out.Reason = REASON_TAGGER
		out.Err = fmt.Errorf("tag %q: %w", label, err)
		return out, st
	}

	if tag == nametag.PERSON {
		out.Loaded = true
		out.Class = Classification{
			Office: OFFICE_RETENTION,
			State:  DEFAULT_STATE,
			Kind:   KIND_RETENTION,
		}
		return out, st
	}

	out.Loaded = true
	out.Class = Classification{Kind: KIND_BALLOT_MEASURE}
	st.BallotMeasures = true
	return out, st
}

// ClassifyAll classifies the labels of one election in ballot order.
func (c Classifier) ClassifyAll(labels []string, st State) []Outcome {
	out := make([]Outcome, len(labels))
	for i, label := range labels {
		out[i], st = c.Classify(label, st)
	}
	return out
}
