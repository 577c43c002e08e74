package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CommandLogin(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	password := mustReadSecret("Password: ")
	if password == "" {
		log.Fatalf("a password is required")
	}
	user, err := e.session.SignIn(cmd.Context(), args[0], password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	fmt.Printf("login successful; welcome %s\n", user.Email)
}

func CommandSignup(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	password := mustReadSecret("Choose a password: ")
	if password == "" {
		log.Fatalf("a password is required")
	}
	if interactive() {
		if again := mustReadSecret("Repeat the password: "); again != password {
			log.Fatalf("the passwords do not match")
		}
	}

	ctx := cmd.Context()
	user, err := e.session.SignUp(ctx, args[0], password)
	if err != nil {
		log.Fatalf("signup failed: %v", err)
	}
	idToken, err := e.session.IDToken(ctx)
	if err != nil {
		log.Fatalf("signup succeeded but the new login is unusable: %v", err)
	}
	if err := e.client.Register(ctx, idToken); err != nil {
		log.Fatalf("account %s was created but could not be registered with the analyzer: %v", user.Email, err)
	}
	fmt.Printf("account created; welcome %s\n", user.Email)
}

func CommandLogout(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	if !e.session.Authenticated() {
		fmt.Println("not logged in")
		return
	}
	if err := e.session.SignOut(); err != nil {
		log.Fatalf("unable to forget your login: %v", err)
	}
	fmt.Println("logged out")
}

func CommandWhoami(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	if user := e.session.User(); user != nil {
		fmt.Printf("logged in as %s\n", user.Email)
	} else {
		fmt.Println("not logged in")
	}
	printJudgeSession(e, false)
}

func printJudgeSession(e *env, reveal bool) {
	cookie := e.creds.JudgeSession()
	if cookie == "" {
		fmt.Println("no LeetCode session cookie stored")
		return
	}
	shown := maskSession(cookie)
	if reveal {
		shown = cookie
	}
	if name := e.creds.Username(); name != "" {
		fmt.Printf("LeetCode user %s, session %s\n", name, shown)
	} else {
		fmt.Printf("LeetCode session %s\n", shown)
	}
}

// maskSession keeps only the ends of a cookie value visible.
func maskSession(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", 8) + value[len(value)-4:]
}

func CommandCookieSet(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	var cookie string
	if len(args) == 1 {
		cookie = strings.TrimSpace(args[0])
	} else {
		if interactive() {
			fmt.Fprintln(os.Stderr, "Paste the value of the LEETCODE_SESSION cookie from your browser.")
		}
		cookie = mustReadSecret("Cookie: ")
	}
	if cookie == "" {
		log.Fatalf("Please provide your LeetCode session cookie first.")
	}
	if err := e.creds.SetJudgeSession(cookie); err != nil {
		log.Fatalf("unable to store the cookie: %v", err)
	}
	if name := strings.TrimSpace(mustGetString(cmd, "username")); name != "" {
		if err := e.creds.SetUsername(name); err != nil {
			log.Fatalf("unable to store the username: %v", err)
		}
	}
	fmt.Println("LeetCode session cookie saved")
}

func CommandCookieShow(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	printJudgeSession(e, mustGetBool(cmd, "reveal"))
}

func CommandCookieClear(cmd *cobra.Command, args []string) {
	e := mustStart(cmd)
	defer e.close()

	if err := e.creds.ClearJudgeSession(); err != nil {
		log.Fatalf("unable to clear the cookie: %v", err)
	}
	fmt.Println("LeetCode session cookie cleared")
}
