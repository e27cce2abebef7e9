// Package nametag tells apart labels that are a single person's name from
// everything else a ballot line can be, and splits names into their parts.
package nametag

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrRepeatedLabel is returned when a label could be read as more than one name,
// ex. two people joined by "and" or a name with two suffixes.
var ErrRepeatedLabel = errors.New("repeated label")

type Label string

const (
	PERSON      Label = "Person"
	CORPORATION Label = "Corporation"
	PHRASE      Label = "Phrase"
)

type Fields struct {
	Prefix   string
	Given    string
	Middle   string
	Surname  string
	Suffix   string
	Nickname string
}

// Tagger is the default name tagger, it has no state.
type Tagger struct{}

var nicknameRegex = regexp.MustCompile(`"([^"]*)"|“([^”]*)”|\(([^)]*)\)`)

var stopwords = set(
	"a", "an", "the", "of", "to", "for", "in", "on", "at", "by", "with", "from",
	"be", "is", "are", "shall", "should", "will", "would", "may", "must", "not",
	"yes", "no", "vote", "votes", "question", "proposition", "referendum",
	"ordinance", "amendment", "tax", "bond", "bonds", "advisory", "total",
	"against", "favor", "approve", "retain", "retention", "write-in", "writein",
)

var corporateMarkers = set(
	"inc", "llc", "ltd", "corp", "corporation", "company", "co", "party",
	"association", "committee", "union", "club", "department", "board", "city",
	"county", "village", "township", "district", "council", "bank", "trust",
	"fund", "foundation", "organization", "commission",
)

var prefixes = set("mr", "mrs", "ms", "miss", "dr", "hon", "judge", "justice", "rev")

var suffixes = set("jr", "sr", "ii", "iii", "iv", "phd", "md", "esq", "dds")

// these stay attached to the surname, ex. "Maria de la Cruz"
var surnameParticles = set("de", "del", "della", "la", "le", "van", "von", "der", "den", "di", "da", "du", "st", "mac")

const maxNameTokens = 6

func set(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func has(words map[string]struct{}, token string) bool {
	_, ok := words[token]
	return ok
}

// normal is the form a token is compared against word lists in.
func normal(token string) string {
	return strings.Trim(strings.ToLower(token), ".,;:")
}

func isNameToken(token string) bool {
	if token == "" {
		return false
	}
	hasLetter := false
	for _, c := range token {
		switch {
		case unicode.IsLetter(c):
			hasLetter = true
		case c == '.' || c == '\'' || c == '-' || c == '’':
		default:
			return false
		}
	}
	return hasLetter
}

func extractNickname(text string) (string, string, error) {
	matches := nicknameRegex.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, "", nil
	}
	if len(matches) > 1 {
		return "", "", fmt.Errorf("%w: %q has %d nicknames", ErrRepeatedLabel, text, len(matches))
	}
	nickname := ""
	for _, group := range matches[0][1:] {
		if group != "" {
			nickname = strings.TrimSpace(group)
		}
	}
	rest := nicknameRegex.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(rest), " "), nickname, nil
}

func splitConjunction(tokens []string) ([]string, []string, bool) {
	for i, token := range tokens {
		if token == "&" || normal(token) == "and" {
			return tokens[:i], tokens[i+1:], true
		}
	}
	return nil, nil, false
}

func allNameTokens(tokens []string) bool {
	for _, token := range tokens {
		if !isNameToken(token) {
			return false
		}
	}
	return true
}

// Tag labels `text` and, when it is a person's name, returns its parts in the
// case they were given in.
func (Tagger) Tag(text string) (Fields, Label, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Fields{}, PHRASE, nil
	}
	if strings.ContainsAny(text, "?0123456789") {
		return Fields{}, PHRASE, nil
	}

	rest, nickname, err := extractNickname(text)
	if err != nil {
		return Fields{}, "", err
	}

	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return Fields{}, PHRASE, nil
	}

	for _, token := range tokens {
		if has(stopwords, normal(token)) {
			return Fields{}, PHRASE, nil
		}
	}
	for _, token := range tokens {
		if has(corporateMarkers, normal(token)) {
			return Fields{}, CORPORATION, nil
		}
	}

	left, right, joined := splitConjunction(tokens)
	if joined {
		if len(left) >= 2 && len(right) >= 2 && allNameTokens(left) && allNameTokens(right) {
			return Fields{}, "", fmt.Errorf("%w: %q joins two names", ErrRepeatedLabel, text)
		}
		return Fields{}, PHRASE, nil
	}

	if len(tokens) > maxNameTokens {
		return Fields{}, PHRASE, nil
	}

	var fields Fields
	if strings.Contains(rest, ",") {
		fields, err = parseInverted(rest)
	} else {
		fields, err = parseDirect(tokens)
	}
	if err != nil {
		return Fields{}, "", err
	}
	if fields.Given == "" || fields.Surname == "" {
		return Fields{}, PHRASE, nil
	}
	fields.Nickname = nickname
	return fields, PERSON, nil
}

// takeSuffixes removes trailing suffix tokens, more than one is ambiguous.
func takeSuffixes(tokens []string) ([]string, string, error) {
	suffix := ""
	for len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		if !has(suffixes, normal(last)) {
			break
		}
		if suffix != "" {
			return nil, "", fmt.Errorf("%w: two suffixes %q and %q", ErrRepeatedLabel, last, suffix)
		}
		suffix = strings.TrimRight(last, ",")
		tokens = tokens[:len(tokens)-1]
	}
	return tokens, suffix, nil
}

func takePrefix(tokens []string) ([]string, string) {
	if len(tokens) > 0 && has(prefixes, normal(tokens[0])) {
		return tokens[1:], tokens[0]
	}
	return tokens, ""
}

func trimCommas(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.Trim(t, ",")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseDirect reads "[prefix] given [middle...] surname [suffix]".
func parseDirect(tokens []string) (Fields, error) {
	tokens = trimCommas(tokens)
	tokens, suffix, err := takeSuffixes(tokens)
	if err != nil {
		return Fields{}, err
	}
	tokens, prefix := takePrefix(tokens)
	if len(tokens) < 2 || !allNameTokens(tokens) {
		return Fields{}, nil
	}

	surnameStart := len(tokens) - 1
	for surnameStart > 1 && has(surnameParticles, normal(tokens[surnameStart-1])) {
		surnameStart--
	}

	return Fields{
		Prefix:  prefix,
		Given:   tokens[0],
		Middle:  strings.Join(tokens[1:surnameStart], " "),
		Surname: strings.Join(tokens[surnameStart:], " "),
		Suffix:  suffix,
	}, nil
}

// parseInverted reads "surname, [prefix] given [middle...][, suffix]".
func parseInverted(text string) (Fields, error) {
	var parts []string
	suffix := ""
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if has(suffixes, normal(part)) {
			if suffix != "" {
				return Fields{}, fmt.Errorf("%w: two suffixes in %q", ErrRepeatedLabel, text)
			}
			suffix = part
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) > 2 {
		return Fields{}, fmt.Errorf("%w: %q has more than one comma", ErrRepeatedLabel, text)
	}
	if len(parts) < 2 {
		return parseDirectWithSuffix(strings.Fields(strings.Join(parts, " ")), suffix)
	}

	surname := strings.Fields(parts[0])
	rest := strings.Fields(parts[1])
	rest, trailing, err := takeSuffixes(rest)
	if err != nil {
		return Fields{}, err
	}
	if trailing != "" {
		if suffix != "" {
			return Fields{}, fmt.Errorf("%w: two suffixes in %q", ErrRepeatedLabel, text)
		}
		suffix = trailing
	}
	rest, prefix := takePrefix(rest)
	if len(surname) == 0 || len(rest) == 0 || !allNameTokens(surname) || !allNameTokens(rest) {
		return Fields{}, nil
	}

	return Fields{
		Prefix:  prefix,
		Given:   rest[0],
		Middle:  strings.Join(rest[1:], " "),
		Surname: strings.Join(surname, " "),
		Suffix:  suffix,
	}, nil
}

func parseDirectWithSuffix(tokens []string, suffix string) (Fields, error) {
	fields, err := parseDirect(tokens)
	if err != nil {
		return Fields{}, err
	}
	if suffix != "" {
		if fields.Suffix != "" {
			return Fields{}, fmt.Errorf("%w: two suffixes %q and %q", ErrRepeatedLabel, fields.Suffix, suffix)
		}
		fields.Suffix = suffix
	}
	return fields, nil
}
