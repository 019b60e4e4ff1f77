package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"twinchat/pkg/api"
	"twinchat/pkg/auth"
	"twinchat/pkg/chat"
	"twinchat/pkg/config"
	"twinchat/pkg/forms"
	"twinchat/pkg/logging"
	"twinchat/pkg/ui"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

const usage = `Usage: twinchat [flags] [command]

Commands:
  (none)    start the chat client
  login     log in from the command line
  logout    forget the stored token
  version   print version information

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("twinchat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.GetConfigPath(), "path to the config file")
	apiURL := fs.String("api", "", "backend base URL (overrides config and environment)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	command := fs.Arg(0)
	if command == "version" {
		printVersion(stdout)
		return 0
	}

	cfg, err := loadConfig(*configPath, *apiURL)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
	}

	client, err := api.NewClient(cfg.API)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating API client: %v\n", err)
		return 1
	}
	session := auth.NewSession(auth.NewTokenStore(cfg.ResolvedAuthFile()))
	service := chat.NewService(session, client)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "":
		return runTUI(ctx, service, cfg, *configPath, stderr)
	case "login":
		return runLogin(ctx, service, stdin, stdout, stderr)
	case "logout":
		if err := service.Logout(); err != nil {
			fmt.Fprintf(stderr, "Error logging out: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "Logged out.")
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command %q\n\n", command)
		fs.Usage()
		return 2
	}
}

// loadConfig layers the config file, .env, TWINCHAT_* variables and the
// -api flag, in increasing priority.
func loadConfig(path, apiURL string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}
	if v := strings.TrimSpace(apiURL); v != "" {
		cfg.API.BaseURL = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runTUI(ctx context.Context, service *chat.Service, cfg config.Config, configPath string, stderr io.Writer) int {
	slog.Info("twinchat_start", "api", cfg.API.BaseURL, "logged_in", service.LoggedIn())

	model := ui.NewModel(ui.Options{
		Service:    service,
		Config:     cfg,
		ConfigPath: configPath,
		Context:    ctx,
	})
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Error("twinchat_exit", "error", err)
		fmt.Fprintf(stderr, "Error running program: %v\n", err)
		return 1
	}
	slog.Info("twinchat_exit")
	return 0
}

func runLogin(ctx context.Context, service *chat.Service, stdin io.Reader, stdout, stderr io.Writer) int {
	reader := bufio.NewReader(stdin)

	fmt.Fprint(stdout, "Email: ")
	email, err := readLine(reader)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading email: %v\n", err)
		return 1
	}

	fmt.Fprint(stdout, "Password: ")
	password, err := readPassword(stdin, reader)
	fmt.Fprintln(stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading password: %v\n", err)
		return 1
	}

	f := forms.Login{Email: email, Password: password}
	if err := forms.ValidateLogin(f); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := service.Login(ctx, f); err != nil {
		fmt.Fprintln(stderr, chat.LoginFailureText(err))
		return 1
	}
	fmt.Fprintln(stdout, chat.MsgLoginOK)
	return 0
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(stdin io.Reader, reader *bufio.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	return readLine(reader)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
