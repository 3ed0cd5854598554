// quizctl is a small terminal frontend for the quiz API. It caches the
// logged-in session on disk and attaches the token to every call.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-quiz/client"
	"github.com/google/uuid"
)

const usage = `usage: quizctl <command> [flags]

commands:
  login       -email -password     authenticate and cache the session
  logout                           drop the cached session
  whoami                           show the cached session and server view
  register    -name -email -phone -password
  categories                       list categories
  category    -name [-id]          create or rename a category (admin)
  quizzes                          list quizzes
  questions   -quiz                show a quiz's questions
  start       -quiz                start an attempt (student)
  complete    -attempt -answers    submit answers as qid:oid,qid:oid
  attempts                         list your attempts (student)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	serverURL := envOr("QUIZ_SERVER_URL", "http://localhost:8572")

	manager := client.NewSessionManager(client.NewFileStore(configDir()))

	ctx := context.Background()
	if err := manager.Initialize(ctx); err != nil {
		fatal(err)
	}

	api := client.New(serverURL, manager)

	if err := dispatch(ctx, os.Args[1], os.Args[2:], api, manager); err != nil {
		fatal(err)
	}
}

func dispatch(ctx context.Context, command string, args []string, api *client.Client, manager *client.SessionManager) error {
	switch command {
	case "login":
		return cmdLogin(ctx, args, api, manager)
	case "logout":
		return manager.SetLogout()
	case "whoami":
		return cmdWhoami(ctx, api, manager)
	case "register":
		return cmdRegister(ctx, args, api)
	case "categories":
		return printJSON(api.Categories(ctx))
	case "category":
		return cmdCategory(ctx, args, api)
	case "quizzes":
		return printJSON(api.Quizzes(ctx))
	case "questions":
		return cmdQuestions(ctx, args, api)
	case "start":
		return cmdStart(ctx, args, api)
	case "complete":
		return cmdComplete(ctx, args, api)
	case "attempts":
		return printJSON(api.Attempts(ctx))
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func cmdLogin(ctx context.Context, args []string, api *client.Client, manager *client.SessionManager) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	result, err := api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	if !result.Success {
		fmt.Println(result.Message)
		return nil
	}

	if err := manager.SetLogin(client.Session{
		ID:    result.ID,
		Name:  result.Name,
		Role:  result.Role,
		Token: result.Token,
	}); err != nil {
		return err
	}

	fmt.Printf("logged in as %s (%s)\n", result.Name, result.Role)
	return nil
}

func cmdWhoami(ctx context.Context, api *client.Client, manager *client.SessionManager) error {
	session := manager.Current()
	if !session.IsLoggedIn() {
		fmt.Println("not logged in")
		return nil
	}

	fmt.Printf("cached: %s (%s)\n", session.Name, session.Role)
	return printJSON(api.Me(ctx))
}

func cmdRegister(ctx context.Context, args []string, api *client.Client) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	return printJSON(api.Register(ctx, *name, *email, *phone, *password))
}

func cmdCategory(ctx context.Context, args []string, api *client.Client) error {
	fs := flag.NewFlagSet("category", flag.ExitOnError)
	id := fs.Int64("id", 0, "category id, zero creates")
	name := fs.String("name", "", "category name")
	fs.Parse(args)

	return printJSON(api.SaveCategory(ctx, *id, *name))
}

func cmdQuestions(ctx context.Context, args []string, api *client.Client) error {
	fs := flag.NewFlagSet("questions", flag.ExitOnError)
	quizID := fs.String("quiz", "", "quiz id")
	fs.Parse(args)

	id, err := uuid.Parse(*quizID)
	if err != nil {
		return fmt.Errorf("invalid quiz id: %w", err)
	}

	return printJSON(api.QuizQuestions(ctx, id))
}

func cmdStart(ctx context.Context, args []string, api *client.Client) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	quizID := fs.String("quiz", "", "quiz id")
	fs.Parse(args)

	id, err := uuid.Parse(*quizID)
	if err != nil {
		return fmt.Errorf("invalid quiz id: %w", err)
	}

	return printJSON(api.StartAttempt(ctx, id))
}

func cmdComplete(ctx context.Context, args []string, api *client.Client) error {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	attemptID := fs.Int64("attempt", 0, "attempt id")
	answers := fs.String("answers", "", "answer sheet as qid:oid,qid:oid")
	fs.Parse(args)

	sheet, err := parseAnswers(*answers)
	if err != nil {
		return err
	}

	return printJSON(api.CompleteAttempt(ctx, *attemptID, sheet))
}

func parseAnswers(raw string) ([]client.Answer, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var sheet []client.Answer
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid answer %q, want qid:oid", pair)
		}

		questionID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid question id %q", parts[0])
		}

		optionID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid option id %q", parts[1])
		}

		sheet = append(sheet, client.Answer{QuestionID: questionID, OptionID: optionID})
	}

	return sheet, nil
}

func printJSON[T any](payload T, err error) error {
	if err != nil {
		return err
	}

	fmt.Println(print.MaybePrettyJSON(payload))
	return nil
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "quizctl")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
