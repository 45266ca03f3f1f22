package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	apiclient "github.com/splax/shiftwatch/pkg/api/client"
)

const defaultAPI = "http://localhost:12000/api/v1"

type cliConfig struct {
	APIBaseURL  string `json:"api_base_url"`
	AccessToken string `json:"access_token"`
	OpenShiftID string `json:"open_shift_id,omitempty"`
}

var buildVersion = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = commandLogin(args)
	case "clock":
		err = commandClock(args)
	case "shifts":
		err = commandShifts(args)
	case "report":
		err = commandReport(args)
	case "screenshots":
		err = commandScreenshots(args)
	case "version", "--version", "-v":
		fmt.Println(strings.TrimSpace(buildVersion))
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL including prefix (default "+defaultAPI+")")
	asAdmin := fs.Bool("admin", false, "Log in as an organization admin")
	apiKey := fs.Bool("api-key", false, "Issue a long lived admin API key instead of an access token")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret := strings.TrimSpace(*password)
	if secret == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Print("\n")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		secret = string(raw)
	}

	cfg, _ := loadConfig()
	if strings.TrimSpace(*apiBase) != "" {
		cfg.APIBaseURL = *apiBase
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch {
	case *apiKey:
		_, err = client.IssueAPIKey(ctx, *email, secret)
	case *asAdmin:
		_, err = client.AdminLogin(ctx, *email, secret)
	default:
		_, err = client.Login(ctx, *email, secret)
	}
	if err != nil {
		return err
	}
	cfg.AccessToken = client.Token()
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("login successful")
	return nil
}

func commandClock(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: shiftctl clock [in|out]")
	}
	switch args[0] {
	case "in":
		return clockIn(args[1:])
	case "out":
		return clockOut(args[1:])
	default:
		return fmt.Errorf("unknown clock command: %s", args[0])
	}
}

func clockIn(args []string) error {
	fs := flag.NewFlagSet("clock in", flag.ExitOnError)
	projectID := fs.String("project", "", "Project identifier")
	taskID := fs.String("task", "", "Task identifier")
	employeeID := fs.String("employee", "", "Employee identifier (admins only)")
	name := fs.String("name", "", "Optional shift name")
	fs.Parse(args)

	cfg, client, err := authedClient()
	if err != nil {
		return err
	}
	if cfg.OpenShiftID != "" {
		return fmt.Errorf("shift %s is still open; run 'shiftctl clock out' first", cfg.OpenShiftID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shift, err := client.ClockIn(ctx, apiclient.ClockInInput{
		EmployeeID: *employeeID,
		ProjectID:  *projectID,
		TaskID:     *taskID,
		Name:       *name,
	})
	if err != nil {
		return err
	}
	cfg.OpenShiftID = shift.ID
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("clocked in: %s at %s\n", shift.ID, formatMillis(shift.Start))
	return nil
}

func clockOut(args []string) error {
	fs := flag.NewFlagSet("clock out", flag.ExitOnError)
	shiftID := fs.String("shift", "", "Shift identifier (defaults to the shift opened by 'clock in')")
	fs.Parse(args)

	cfg, client, err := authedClient()
	if err != nil {
		return err
	}
	id := strings.TrimSpace(*shiftID)
	if id == "" {
		id = cfg.OpenShiftID
	}
	if id == "" {
		return errors.New("no open shift; pass --shift")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shift, err := client.ClockOut(ctx, id, 0)
	if err != nil {
		return err
	}
	if cfg.OpenShiftID == id {
		cfg.OpenShiftID = ""
		if err := saveConfig(cfg); err != nil {
			return err
		}
	}
	if shift.End == nil {
		return fmt.Errorf("shift %s is still open", shift.ID)
	}
	worked := time.Duration(*shift.End-shift.Start) * time.Millisecond
	fmt.Printf("clocked out: %s after %s\n", shift.ID, worked.Round(time.Second))
	return nil
}

func commandShifts(args []string) error {
	fs := flag.NewFlagSet("shifts", flag.ExitOnError)
	employeeID := fs.String("employee", "", "Filter by employee")
	limit := fs.Int("limit", 20, "Maximum number of shifts")
	fs.Parse(args)

	_, client, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shifts, err := client.ListShifts(ctx, *employeeID, *limit)
	if err != nil {
		return err
	}
	for _, s := range shifts {
		end := "open"
		if s.End != nil {
			end = formatMillis(*s.End)
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%d\n", s.ID, s.EmployeeID, formatMillis(s.Start), end, s.DeletedScreenshots)
	}
	return nil
}

func commandReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	since := fs.Duration("since", 7*24*time.Hour, "Report window ending now")
	employeeID := fs.String("employee", "", "Filter by employee")
	projectID := fs.String("project", "", "Filter by project")
	teamID := fs.String("team", "", "Filter by team")
	fs.Parse(args)

	_, client, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	rows, err := client.ProjectTime(ctx, now.Add(-*since).UnixMilli(), now.UnixMilli(), map[string]string{
		"employee_id": *employeeID,
		"project_id":  *projectID,
		"team_id":     *teamID,
	})
	if err != nil {
		return err
	}
	totals := make(map[string]time.Duration)
	var order []string
	for _, row := range rows {
		if _, ok := totals[row.ProjectName]; !ok {
			order = append(order, row.ProjectName)
		}
		totals[row.ProjectName] += time.Duration(row.Time) * time.Millisecond
	}
	for _, name := range order {
		fmt.Printf("%s\t%s\n", name, totals[name].Round(time.Minute))
	}
	return nil
}

func commandScreenshots(args []string) error {
	fs := flag.NewFlagSet("screenshots", flag.ExitOnError)
	since := fs.Duration("since", 24*time.Hour, "Window ending now")
	shiftID := fs.String("shift", "", "Comma separated shift filter")
	taskID := fs.String("task", "", "Comma separated task filter")
	projectID := fs.String("project", "", "Comma separated project filter")
	desc := fs.Bool("desc", false, "Newest first")
	pageSize := fs.Int("page-size", 500, "Rows fetched per request")
	fs.Parse(args)

	_, client, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	enc := json.NewEncoder(os.Stdout)
	return client.WalkScreenshots(ctx, apiclient.PageQuery{
		Start:      now.Add(-*since).UnixMilli(),
		End:        now.UnixMilli(),
		ShiftIDs:   splitList(*shiftID),
		TaskIDs:    splitList(*taskID),
		ProjectIDs: splitList(*projectID),
		Descending: *desc,
		Limit:      *pageSize,
	}, func(s apiclient.Screenshot) error {
		return enc.Encode(s)
	})
}

func authedClient() (cliConfig, *apiclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cliConfig{}, nil, err
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if env := strings.TrimSpace(os.Getenv("SHIFTWATCH_TOKEN")); env != "" {
		token = env
	}
	if token == "" {
		return cliConfig{}, nil, errors.New("please login first using 'shiftctl login'")
	}
	client, err := apiclient.New(cfg.APIBaseURL, apiclient.WithToken(token))
	if err != nil {
		return cliConfig{}, nil, err
	}
	return cfg, client, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format(time.DateTime)
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{APIBaseURL: defaultAPI}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPI
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "shiftwatch", "config.json"), nil
}

func printUsage() {
	fmt.Printf("shiftctl %s\n\n", buildVersion)
	fmt.Print(`Usage:
	shiftctl login --email user@example.com [--password secret] [--admin] [--api-key] [--api ` + defaultAPI + `]
	shiftctl clock in [--project <id>] [--task <id>] [--employee <id>] [--name label]
	shiftctl clock out [--shift <id>]
	shiftctl shifts [--employee <id>] [--limit N]
	shiftctl report [--since 168h] [--employee <id>] [--project <id>] [--team <id>]
	shiftctl screenshots [--since 24h] [--shift ids] [--task ids] [--project ids] [--desc] [--page-size N]
	shiftctl version
`)
}
