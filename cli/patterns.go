package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dsahelper/dsahelper/patterns"
	"github.com/dsahelper/dsahelper/server"
)

func CommandPatterns(cmd *cobra.Command, args []string) {
	catalog := patterns.Default()
	switch len(args) {
	case 0:
		printTopics(os.Stdout, catalog)
		return
	case 1:
		topic, err := catalog.Topic(args[0])
		if err != nil {
			log.Fatalf("%v", err)
		}
		printTopic(os.Stdout, topic)
		return
	}

	_, pattern, err := catalog.Lookup(args[0], args[1])
	if err != nil {
		log.Fatalf("%v", err)
	}
	language, err := catalog.Language(mustGetString(cmd, "language"))
	if err != nil {
		log.Fatalf("%v", err)
	}

	e := mustStart(cmd)
	defer e.close()

	info, err := e.app.PatternInfo(cmd.Context(), pattern.Name, language)
	mustSucceed(err)
	if !mustGetBool(cmd, "save") {
		printPatternInfo(os.Stdout, info)
		return
	}
	if info.Template == "" {
		log.Fatalf("no %s template is available for %s", language, pattern.Name)
	}
	name := catalog.Filename(pattern, language)
	if _, err := os.Stat(name); err == nil {
		log.Fatalf("%s already exists; remove it first", name)
	}
	if err := os.WriteFile(name, []byte(info.Template), 0644); err != nil {
		log.Fatalf("error saving %s: %v", name, err)
	}
	fmt.Printf("saved %s\n", name)
}

func CommandServe(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	addr := mustGetString(cmd, "address")
	if addr == "" {
		addr = e.cfg.Dashboard.Address
	}
	s, err := server.New(server.Options{
		App:           e.app,
		JudgeSessions: e.creds,
		Notifications: e.notes,
		Account:       e.session,
		Secret:        e.cfg.Dashboard.Secret,
	})
	if err != nil {
		log.Fatalf("unable to start the dashboard: %v", err)
	}
	if err := s.Run(cmd.Context(), addr); err != nil {
		log.Fatalf("dashboard stopped: %v", err)
	}
}
