package commands

import (
	"fmt"

	"chicago-openelex/internal/classify"
	"chicago-openelex/internal/elections"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	classifyFile      *string
	classifyMunicipal *bool
)

func init() {
	classifyFile = classifyCmd.Flags().String("file", "", "Classify the contests of an election json instead of the given labels.")
	classifyMunicipal = classifyCmd.Flags().Bool("municipal", false, "Classify the labels as part of a municipal election.")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify [--file <election.json>] [--municipal] [labels...]",
	Short: "Shows how contest labels would be classified, without loading anything.",
	Run: func(cmd *cobra.Command, args []string) {
		labels := args
		municipal := *classifyMunicipal

		if *classifyFile != "" {
			doc, err := elections.ReadDocument(*classifyFile)
			if err != nil {
				fatal("failed to read election", err)
			}
			meta, err := elections.ParseElectionName(doc.ElectionName)
			if err != nil {
				fatal("failed to parse election name", err)
			}
			municipal = meta.Municipal
			labels = nil
			for _, contest := range doc.Contests {
				labels = append(labels, contest.Position)
			}
		}
		if len(labels) == 0 {
			fatal("nothing to classify", fmt.Errorf("pass labels or --file"))
		}

		outcomes := newClassifier().ClassifyAll(labels, classify.State{Municipal: municipal})

		t := newTable()
		t.AppendHeader(table.Row{"Label", "Loaded", "Kind", "Office", "State", "Place", "County", "District", "Rule", "Reason"})
		for _, o := range outcomes {
			t.AppendRow(table.Row{
				o.Label,
				o.Loaded,
				o.Class.Kind,
				o.Class.Office,
				o.Class.State,
				o.Class.Place,
				o.Class.County,
				o.Class.District,
				o.Class.Rule,
				o.Reason,
			})
		}
		t.Render()
	},
}
