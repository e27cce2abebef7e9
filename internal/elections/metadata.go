package elections

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type ElectionType string

const (
	ELECTION_GENERAL ElectionType = "general"
	ELECTION_PRIMARY ElectionType = "primary"
	ELECTION_RUNOFF  ElectionType = "runoff"
	ELECTION_UNKNOWN ElectionType = "unknown"
)

const (
	STATE = "IL"
	PLACE = "Chicago"
)

// Metadata is everything that can be derived from an election's name.
type Metadata struct {
	// the json file the election was read from, empty if it was parsed from a bare name
	Filename string
	// the name as it appears on the site
	Raw string

	Name      string
	Seat      string
	Party     string
	Date      time.Time
	Type      ElectionType
	Special   bool
	Municipal bool
}

// the site prefixes every option with the election's year, ex. "2015 - Municipal General - 2/24/15"
var yearPrefix = regexp.MustCompile(`^\d{4}\s*(-\s*)?`)

var dateLayouts = []string{"1/2/06", "1/2/2006"}

func parseElectionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		date, err := time.Parse(layout, s)
		if err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrElectionDate, s)
}

func electionType(name string, special bool) ElectionType {
	name = strings.ToLower(name)
	if special {
		if strings.Contains(name, "primary") {
			return ELECTION_PRIMARY
		}
		return ELECTION_GENERAL
	}
	switch {
	case strings.Contains(name, "general"), strings.Contains(name, "geeral"):
		return ELECTION_GENERAL
	case strings.Contains(name, "primary"):
		return ELECTION_PRIMARY
	case strings.Contains(name, "runoff"):
		return ELECTION_RUNOFF
	}
	return ELECTION_UNKNOWN
}

// ParseElectionName splits an election name on " - " into its name, seat, party
// and date, the number of segments decides which of those are present:
//
//	regular: name - date | name - party - date
//	special: name - seat - date | name - seat - party - date
func ParseElectionName(raw string) (Metadata, error) {
	trimmed := yearPrefix.ReplaceAllString(strings.TrimSpace(raw), "")
	parts := strings.Split(trimmed, " - ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	meta := Metadata{
		Raw:       raw,
		Name:      parts[0],
		Special:   strings.Contains(strings.ToLower(parts[0]), "special"),
		Municipal: strings.Contains(strings.ToLower(raw), "municipal"),
	}

	var date string
	switch {
	case meta.Special && len(parts) == 3:
		meta.Seat = parts[1]
		date = parts[2]
	case meta.Special && len(parts) == 4:
		meta.Seat = parts[1]
		meta.Party = parts[2]
		date = parts[3]
	case !meta.Special && len(parts) == 2:
		date = parts[1]
	case !meta.Special && len(parts) == 3:
		meta.Party = parts[1]
		date = parts[2]
	default:
		return Metadata{}, fmt.Errorf(
			"%w: %q has %d segments",
			ErrMalformedElectionName, raw, len(parts),
		)
	}
	if meta.Name == "" {
		return Metadata{}, fmt.Errorf("%w: %q has no name", ErrMalformedElectionName, raw)
	}

	parsed, err := parseElectionDate(date)
	if err != nil {
		return Metadata{}, err
	}
	meta.Date = parsed
	meta.Type = electionType(meta.Name, meta.Special)

	return meta, nil
}

// ParseMetadata is ParseElectionName for an election that was read from `filename`.
func ParseMetadata(raw, filename string) (Metadata, error) {
	meta, err := ParseElectionName(raw)
	if err != nil {
		return Metadata{}, err
	}
	meta.Filename = filename
	return meta, nil
}

// ElectionID is stable across runs so reloading an election updates it in place.
func (m Metadata) ElectionID() string {
	date := m.Date.Format("2006-01-02")
	state := strings.ToLower(STATE)
	if m.Municipal {
		return fmt.Sprintf("%s-%s-%s-%s", state, strings.ToLower(PLACE), date, m.Type)
	}
	return fmt.Sprintf("%s-%s-%s", state, date, m.Type)
}

// DocumentFilename is the name the election's json is written under:
// {YYYYMMDD}__il[__{party}][__special]__{name}__precinct.json
func (m Metadata) DocumentFilename() string {
	parts := []string{m.Date.Format("20060102"), strings.ToLower(STATE)}
	if m.Party != "" {
		parts = append(parts, NormalizeName(m.Party))
	}
	if m.Special {
		parts = append(parts, "special")
	}
	parts = append(parts, NormalizeName(m.Name), "precinct")
	return strings.Join(parts, "__") + ".json"
}
