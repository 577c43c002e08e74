package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dsahelper/dsahelper/types"
)

func CommandSubmissions(cmd *cobra.Command, args []string) {
	filter, err := types.ParseSubmissionFilter(mustGetString(cmd, "filter"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	e := mustStart(cmd)
	defer e.close()

	list, err := e.app.LoadSubmissions(cmd.Context(), mustGetInt(cmd, "limit"))
	mustSucceed(err)
	printSubmissions(os.Stdout, types.FilterSubmissions(list, filter, mustGetString(cmd, "search")))
}

func CommandCode(cmd *cobra.Command, args []string) {
	id := mustParseID(args[0])
	e := mustStart(cmd)
	defer e.close()

	sub := mustLoadSubmission(cmd.Context(), e, cmd, id)
	printCode(os.Stdout, sub)
}

func CommandFeedback(cmd *cobra.Command, args []string) {
	id := mustParseID(args[0])
	e := mustStart(cmd)
	defer e.close()

	ctx := cmd.Context()
	sub := mustLoadSubmission(ctx, e, cmd, id)
	log.Infof("analyzing %s, this can take a while", sub.Title)
	report, err := e.app.Feedback(ctx, sub)
	mustSucceed(err)
	printReport(os.Stdout, sub, report)
}

func CommandCompare(cmd *cobra.Command, args []string) {
	id := mustParseID(args[0])
	e := mustStart(cmd)
	defer e.close()

	ctx := cmd.Context()
	sub := mustLoadSubmission(ctx, e, cmd, id)
	log.Infof("comparing %s with an optimal solution", sub.Title)
	data, err := e.app.Compare(ctx, sub)
	mustSucceed(err)
	printComparison(os.Stdout, sub, data)
}

func CommandOverall(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	analysis, err := e.app.OverallAnalysis(cmd.Context())
	mustSucceed(err)
	printOverall(os.Stdout, analysis)
}
