package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dsahelper/dsahelper/types"
)

func CommandRevisionsList(cmd *cobra.Command, args []string) {
	filter, err := types.ParseRevisionFilter(mustGetString(cmd, "filter"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	e := mustStart(cmd)
	defer e.close()

	_, err = e.app.LoadRevisions(cmd.Context())
	mustSucceed(err)
	list := e.app.FilteredRevisions(filter, mustGetString(cmd, "search"))
	if mustGetBool(cmd, "timeline") {
		list = types.Timeline(list)
	}
	printRevisions(os.Stdout, list, e.app.Today())
}

func CommandRevisionsDue(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	list, err := e.app.DueRevisions(cmd.Context())
	mustSucceed(err)
	printRevisions(os.Stdout, list, e.app.Today())
}

func CommandRevisionsAdd(cmd *cobra.Command, args []string) {
	id := mustParseID(args[0])
	e := mustStart(cmd)
	defer e.close()

	ctx := cmd.Context()
	sub := mustLoadSubmission(ctx, e, cmd, id)
	var edit *types.RevisionEdit
	if editFlagsChanged(cmd) {
		initial := types.RevisionEdit{
			Difficulty:      types.DefaultDifficulty,
			ConfidenceLevel: types.DefaultConfidence,
			Tags:            []string{},
		}
		edit = mustApplyEditFlags(cmd, initial)
	}
	rp, err := e.app.AddToRevision(ctx, *sub, edit)
	mustSucceed(err)
	fmt.Printf("next revision of %s is due %s\n", rp.Title, rp.NextRevision)
}

func CommandRevisionsRevise(cmd *cobra.Command, args []string) {
	id := mustParseID(args[0])
	e := mustStart(cmd)
	defer e.close()

	ctx := cmd.Context()
	rp, err := e.app.MarkRevised(ctx, *mustLoadRevision(ctx, e, id))
	mustSucceed(err)
	fmt.Printf("revised %s %d time%s; next revision due %s\n",
		rp.Title, rp.RevisionCount, plural(rp.RevisionCount), rp.NextRevision)
}

func CommandRevisionsEdit(cmd *cobra.Command, args []string) {
	id := mustParseID(args[0])
	if !editFlagsChanged(cmd) {
		log.Fatalf("nothing to change; use --confidence, --difficulty, --notes, or --tags")
	}
	e := mustStart(cmd)
	defer e.close()

	ctx := cmd.Context()
	rp := mustLoadRevision(ctx, e, id)
	updated, err := e.app.UpdateRevision(ctx, *rp, *mustApplyEditFlags(cmd, rp.Edit()))
	mustSucceed(err)
	fmt.Printf("next revision of %s is due %s\n", updated.Title, updated.NextRevision)
}

func CommandRevisionsDelete(cmd *cobra.Command, args []string) {
	id := mustParseID(args[0])
	e := mustStart(cmd)
	defer e.close()

	ctx := cmd.Context()
	mustSucceed(e.app.DeleteRevision(ctx, *mustLoadRevision(ctx, e, id)))
}

func CommandRevisionsStats(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	_, err := e.app.LoadRevisions(cmd.Context())
	mustSucceed(err)
	printStats(os.Stdout, e.app.Stats())
}

var editFlags = []string{"confidence", "difficulty", "notes", "tags"}

func editFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range editFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// mustApplyEditFlags overrides the fields of edit whose flags were given.
func mustApplyEditFlags(cmd *cobra.Command, edit types.RevisionEdit) *types.RevisionEdit {
	flags := cmd.Flags()
	if flags.Changed("confidence") {
		edit.ConfidenceLevel = mustGetInt(cmd, "confidence")
	}
	if flags.Changed("difficulty") {
		edit.Difficulty = mustParseDifficulty(mustGetString(cmd, "difficulty"))
	}
	if flags.Changed("notes") {
		edit.Notes = strings.TrimSpace(mustGetString(cmd, "notes"))
	}
	if flags.Changed("tags") {
		edit.Tags = types.ParseTags(mustGetString(cmd, "tags"))
	}
	return &edit
}

var difficulties = []string{types.DefaultDifficulty, "Easy", "Medium", "Hard"}

func mustParseDifficulty(s string) string {
	s = strings.TrimSpace(s)
	for _, d := range difficulties {
		if strings.EqualFold(s, d) {
			return d
		}
	}
	log.Fatalf("--difficulty must be one of %s", strings.Join(difficulties, ", "))
	return ""
}
