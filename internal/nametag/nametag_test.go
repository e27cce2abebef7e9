package nametag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestTagPerson(t *testing.T) {
	testCases := []struct {
		text   string
		expect Fields
	}{
		{
			text:   "RAHM EMANUEL",
			expect: Fields{Given: "RAHM", Surname: "EMANUEL"},
		},
		{
			text:   "anne m. burke",
			expect: Fields{Given: "anne", Middle: "m.", Surname: "burke"},
		},
		{
			text:   "Jesus \"Chuy\" Garcia",
			expect: Fields{Given: "Jesus", Surname: "Garcia", Nickname: "Chuy"},
		},
		{
			text:   "William (Willie) Wilson",
			expect: Fields{Given: "William", Surname: "Wilson", Nickname: "Willie"},
		},
		{
			text:   "Robert W. Fioretti Jr.",
			expect: Fields{Given: "Robert", Middle: "W.", Surname: "Fioretti", Suffix: "Jr."},
		},
		{
			text:   "Smith, John A.",
			expect: Fields{Given: "John", Middle: "A.", Surname: "Smith"},
		},
		{
			text:   "Smith, John, Jr.",
			expect: Fields{Given: "John", Surname: "Smith", Suffix: "Jr."},
		},
		{
			text:   "John Smith, III",
			expect: Fields{Given: "John", Surname: "Smith", Suffix: "III"},
		},
		{
			text:   "Maria de la Cruz",
			expect: Fields{Given: "Maria", Surname: "de la Cruz"},
		},
		{
			text:   "Hon. Mary Jane Theis",
			expect: Fields{Prefix: "Hon.", Given: "Mary", Middle: "Jane", Surname: "Theis"},
		},
		{
			text:   "Patrick J. O'Connor",
			expect: Fields{Given: "Patrick", Middle: "J.", Surname: "O'Connor"},
		},
	}

	tagger := Tagger{}
	for _, test := range testCases {
		t.Run(test.text, func(t *testing.T) {
			fields, label, err := tagger.Tag(test.text)
			require.Nil(t, err)
			require.Equal(t, PERSON, label)
			if diff := cmp.Diff(test.expect, fields); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestTagOther(t *testing.T) {
	testCases := []struct {
		text   string
		expect Label
	}{
		{text: "shall the city of chicago adopt the ordinance", expect: PHRASE},
		{text: "yes", expect: PHRASE},
		{text: "NO", expect: PHRASE},
		{text: "proposition a", expect: PHRASE},
		{text: "does the voter support an elected school board?", expect: PHRASE},
		{text: "ward 12 liquor ban", expect: PHRASE},
		{text: "write-in", expect: PHRASE},
		{text: "", expect: PHRASE},
		{text: "emanuel", expect: PHRASE},
		{text: "one two three four five six seven", expect: PHRASE},
		{text: "green party", expect: CORPORATION},
		{text: "acme widgets inc.", expect: CORPORATION},
		{text: "metropolitan water reclamation district", expect: CORPORATION},
		{text: "peace and justice", expect: PHRASE},
	}

	tagger := Tagger{}
	for _, test := range testCases {
		_, label, err := tagger.Tag(test.text)
		require.Nil(t, err, test.text)
		require.Equal(t, test.expect, label, test.text)
	}
}

func TestTagRepeated(t *testing.T) {
	testCases := []string{
		"john smith and jane doe",
		"John Smith & Jane Doe",
		"John \"Jack\" (Johnny) Smith",
		"John Smith Jr. III",
		"Smith, John, Doe",
		"Smith, John Sr., Jr.",
	}

	tagger := Tagger{}
	for _, text := range testCases {
		_, _, err := tagger.Tag(text)
		require.ErrorIs(t, err, ErrRepeatedLabel, text)
	}
}
