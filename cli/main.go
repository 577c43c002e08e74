package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dsahelper/dsahelper/app"
	"github.com/dsahelper/dsahelper/types"
)

var Config struct {
	configPath string
	apiReport  bool
	apiDump    bool
}

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetOutput(os.Stderr)

	cmdDSA := &cobra.Command{
		Use:   "dsa",
		Short: "Command-line interface to the DSA submission analyzer",
		Long: "A command-line tool to review your LeetCode submissions,\n" +
			"get AI feedback on them, and schedule revisions.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if Config.apiDump {
				Config.apiReport = true
			}
			if Config.apiReport {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	cmdDSA.PersistentFlags().StringVarP(&Config.configPath, "config", "", "", "config file (default ~/.dsahelper/config)")
	cmdDSA.PersistentFlags().BoolVarP(&Config.apiReport, "api", "", false, "report all API requests")
	cmdDSA.PersistentFlags().BoolVarP(&Config.apiDump, "api-dump", "", false, "dump API request and response data")

	cmdVersion := &cobra.Command{
		Use:   "version",
		Short: "print the version number of dsa",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("dsa " + types.CurrentVersion.Version)
		},
	}
	cmdDSA.AddCommand(cmdVersion)

	// account
	cmdLogin := &cobra.Command{
		Use:   "login <email>",
		Short: "sign in to your DSA Helper account",
		Long: "Sign in with the email and password of your account.\n" +
			"The password is read from the terminal, or from standard input\n" +
			"when it is not a terminal.",
		Args: cobra.ExactArgs(1),
		Run:  CommandLogin,
	}
	cmdDSA.AddCommand(cmdLogin)

	cmdSignup := &cobra.Command{
		Use:   "signup <email>",
		Short: "create a DSA Helper account",
		Args:  cobra.ExactArgs(1),
		Run:   CommandSignup,
	}
	cmdDSA.AddCommand(cmdSignup)

	cmdLogout := &cobra.Command{
		Use:   "logout",
		Short: "forget the signed-in account",
		Run:   CommandLogout,
	}
	cmdDSA.AddCommand(cmdLogout)

	cmdWhoami := &cobra.Command{
		Use:   "whoami",
		Short: "show the signed-in account and LeetCode session",
		Run:   CommandWhoami,
	}
	cmdDSA.AddCommand(cmdWhoami)

	// judge-site session
	cmdCookie := &cobra.Command{
		Use:   "cookie",
		Short: "manage your LeetCode session cookie",
		Long: fmt.Sprintf("Submissions are fetched from LeetCode with your browser's\n"+
			"LEETCODE_SESSION cookie. Copy it from your browser and run:\n\n"+
			"   %s cookie set\n", os.Args[0]),
	}
	cmdCookieSet := &cobra.Command{
		Use:   "set [cookie]",
		Short: "store the LeetCode session cookie",
		Args:  cobra.MaximumNArgs(1),
		Run:   CommandCookieSet,
	}
	cmdCookieSet.Flags().StringP("username", "u", "", "your LeetCode username")
	cmdCookieShow := &cobra.Command{
		Use:   "show",
		Short: "show the stored LeetCode session cookie",
		Run:   CommandCookieShow,
	}
	cmdCookieShow.Flags().Bool("reveal", false, "print the full cookie")
	cmdCookieClear := &cobra.Command{
		Use:   "clear",
		Short: "forget the LeetCode session cookie",
		Run:   CommandCookieClear,
	}
	cmdCookie.AddCommand(cmdCookieSet, cmdCookieShow, cmdCookieClear)
	cmdDSA.AddCommand(cmdCookie)

	// submissions
	cmdSubmissions := &cobra.Command{
		Use:   "submissions",
		Short: "list your recent LeetCode submissions",
		Run:   CommandSubmissions,
	}
	addLimitFlag(cmdSubmissions)
	cmdSubmissions.Flags().StringP("filter", "f", string(types.SubmissionsAll), "one of all, passed, failed, best, non-best")
	cmdSubmissions.Flags().StringP("search", "s", "", "only show titles containing this text")
	cmdDSA.AddCommand(cmdSubmissions)

	cmdCode := &cobra.Command{
		Use:   "code <submission id>",
		Short: "print the code of a submission",
		Args:  cobra.ExactArgs(1),
		Run:   CommandCode,
	}
	addLimitFlag(cmdCode)
	cmdDSA.AddCommand(cmdCode)

	cmdFeedback := &cobra.Command{
		Use:   "feedback <submission id>",
		Short: "get AI feedback on a submission",
		Args:  cobra.ExactArgs(1),
		Run:   CommandFeedback,
	}
	addLimitFlag(cmdFeedback)
	cmdDSA.AddCommand(cmdFeedback)

	cmdCompare := &cobra.Command{
		Use:   "compare <submission id>",
		Short: "compare a submission with an optimal solution",
		Args:  cobra.ExactArgs(1),
		Run:   CommandCompare,
	}
	addLimitFlag(cmdCompare)
	cmdDSA.AddCommand(cmdCompare)

	cmdOverall := &cobra.Command{
		Use:   "overall",
		Short: "summarize your strengths and weaknesses",
		Run:   CommandOverall,
	}
	cmdDSA.AddCommand(cmdOverall)

	// revisions
	cmdRevisions := &cobra.Command{
		Use:     "revisions",
		Aliases: []string{"rev"},
		Short:   "manage the problems scheduled for revision",
	}
	cmdRevisionsList := &cobra.Command{
		Use:   "list",
		Short: "list tracked problems",
		Run:   CommandRevisionsList,
	}
	cmdRevisionsList.Flags().StringP("filter", "f", string(types.RevisionsAll), "one of all, due, overdue, upcoming")
	cmdRevisionsList.Flags().StringP("search", "s", "", "only show problems whose title or tags contain this text")
	cmdRevisionsList.Flags().BoolP("timeline", "t", false, "order by next revision date")
	cmdRevisionsDue := &cobra.Command{
		Use:   "due",
		Short: "list the problems due for revision",
		Run:   CommandRevisionsDue,
	}
	cmdRevisionsAdd := &cobra.Command{
		Use:   "add <submission id>",
		Short: "start tracking a submission",
		Args:  cobra.ExactArgs(1),
		Run:   CommandRevisionsAdd,
	}
	addLimitFlag(cmdRevisionsAdd)
	addEditFlags(cmdRevisionsAdd)
	cmdRevisionsRevise := &cobra.Command{
		Use:   "revise <submission id>",
		Short: "mark a problem as revised today",
		Args:  cobra.ExactArgs(1),
		Run:   CommandRevisionsRevise,
	}
	cmdRevisionsEdit := &cobra.Command{
		Use:   "edit <submission id>",
		Short: "change the notes, tags, difficulty, or confidence of a problem",
		Args:  cobra.ExactArgs(1),
		Run:   CommandRevisionsEdit,
	}
	addEditFlags(cmdRevisionsEdit)
	cmdRevisionsDelete := &cobra.Command{
		Use:   "delete <submission id>",
		Short: "stop tracking a problem",
		Args:  cobra.ExactArgs(1),
		Run:   CommandRevisionsDelete,
	}
	cmdRevisionsStats := &cobra.Command{
		Use:   "stats",
		Short: "summarize your revision list",
		Run:   CommandRevisionsStats,
	}
	cmdRevisions.AddCommand(cmdRevisionsList, cmdRevisionsDue, cmdRevisionsAdd, cmdRevisionsRevise,
		cmdRevisionsEdit, cmdRevisionsDelete, cmdRevisionsStats)
	cmdDSA.AddCommand(cmdRevisions)

	// learning hub
	cmdPatterns := &cobra.Command{
		Use:   "patterns [topic] [pattern]",
		Short: "browse problem-solving patterns",
		Long: fmt.Sprintf("With no arguments, list the topics. With a topic, list its patterns.\n"+
			"With a topic and a pattern, describe the pattern and print its template.\n\n"+
			"   Example: '%s patterns two-pointers'\n\n"+
			"   Example: '%s patterns two-pointers pair-with-target-sum --language python'", os.Args[0], os.Args[0]),
		Args: cobra.MaximumNArgs(2),
		Run:  CommandPatterns,
	}
	cmdPatterns.Flags().StringP("language", "l", "", "template language (default from the catalog)")
	cmdPatterns.Flags().Bool("save", false, "save the template to a file in the current directory")
	cmdDSA.AddCommand(cmdPatterns)

	// dashboard
	cmdServe := &cobra.Command{
		Use:   "serve",
		Short: "run the dashboard in your browser",
		Run:   CommandServe,
	}
	cmdServe.Flags().StringP("address", "a", "", "listen address (default from config)")
	cmdDSA.AddCommand(cmdServe)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmdDSA.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func addLimitFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("limit", "n", app.DefaultSubmissionLimit, "number of recent submissions to fetch")
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("confidence", "c", types.DefaultConfidence, "confidence from 1 (shaky) to 5 (solid)")
	cmd.Flags().StringP("difficulty", "d", types.DefaultDifficulty, "Easy, Medium, Hard, or NA")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("tags", "", "comma-separated tags")
}
