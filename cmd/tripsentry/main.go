package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tripsentry/internal/audit"
	"tripsentry/internal/config"
	"tripsentry/internal/environ"
	"tripsentry/internal/notify"
	"tripsentry/internal/oracle"
	"tripsentry/internal/orchestrator"
	"tripsentry/internal/trip"
	"tripsentry/internal/validator"
)

const appName = "tripsentry"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: live itinerary planning and re-validation\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  plan    Generate and validate a plan from an intent")
		fmt.Fprintln(os.Stderr, "  run     Generate, confirm and monitor a plan until interrupted")
		fmt.Fprintln(os.Stderr, "  check   Validate and score a plan JSON file")
		fmt.Fprintln(os.Stderr, "  help    Show this help")
	}

	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	var err error
	switch args[0] {
	case "plan":
		err = runPlan(args[1:])
	case "run":
		err = runMonitor(args[1:])
	case "check":
		err = runCheck(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadSetup(configPath, profilePath string) (config.Config, *trip.UserProfile, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = loaded
	}

	var profile *trip.UserProfile
	if profilePath != "" {
		loaded, err := config.LoadProfile(profilePath)
		if err != nil {
			return config.Config{}, nil, err
		}
		profile = &loaded
	}
	return cfg, profile, nil
}

func buildOrchestrator(cfg config.Config, overrides *environ.OverrideManager) (*orchestrator.Orchestrator, *audit.Logger, error) {
	var logger *audit.Logger
	if cfg.AuditDBPath != "" {
		opened, err := audit.Open(cfg.AuditDBPath)
		if err != nil {
			return nil, nil, err
		}
		logger = opened
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Env:             environ.NewService(nil, overrides),
		Oracle:          &oracle.StaticOracle{},
		Audit:           logger,
		Notifier:        &notify.Notifier{Enabled: cfg.Notifications},
		PollInterval:    cfg.PollInterval(),
		DefaultLocation: cfg.DefaultLocation,
	})
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	return orch, logger, nil
}

func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	intent := fs.String("intent", "", "Natural-language planning request")
	profilePath := fs.String("profile", "", "Path to a user profile YAML file")
	configPath := fs.String("config", "", "Path to a config YAML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *intent == "" {
		return fmt.Errorf("--intent is required")
	}

	cfg, profile, err := loadSetup(*configPath, *profilePath)
	if err != nil {
		return err
	}
	orch, logger, err := buildOrchestrator(cfg, nil)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer orch.Shutdown()

	plan, result, err := orch.InitiatePlanning(context.Background(), *intent, profile)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"data": plan, "validation": result})
}

func runMonitor(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	intent := fs.String("intent", "", "Natural-language planning request")
	profilePath := fs.String("profile", "", "Path to a user profile YAML file")
	configPath := fs.String("config", "", "Path to a config YAML file")
	interval := fs.Duration("interval", 0, "Override the watchdog poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *intent == "" {
		return fmt.Errorf("--intent is required")
	}

	cfg, profile, err := loadSetup(*configPath, *profilePath)
	if err != nil {
		return err
	}
	if *interval > 0 {
		cfg.PollIntervalSeconds = int(interval.Seconds())
	}

	overrides := environ.NewOverrideManager()
	orch, logger, err := buildOrchestrator(cfg, overrides)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer orch.Shutdown()

	plan, result, err := orch.InitiatePlanning(context.Background(), *intent, profile)
	if err != nil {
		return err
	}
	if !result.IsValid {
		if printErr := printJSON(map[string]any{"data": plan, "validation": result}); printErr != nil {
			return printErr
		}
		return fmt.Errorf("plan was rejected with %d violations", len(result.Violations))
	}

	if err := orch.ConfirmAndActivate(plan.ID); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s: monitoring plan %s (%s), Ctrl-C to stop\n", appName, plan.ID, plan.Name)

	subID, messages := orch.Hub().Subscribe(plan.ID)
	defer orch.Hub().Unsubscribe(plan.ID, subID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			fmt.Fprintf(os.Stderr, "%s: stopping\n", appName)
			return orch.Cancel(plan.ID)
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := printJSON(msg); err != nil {
				return err
			}
		}
	}
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	planPath := fs.String("plan", "", "Path to a plan JSON file")
	profilePath := fs.String("profile", "", "Path to a user profile YAML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *planPath == "" {
		return fmt.Errorf("--plan is required")
	}

	raw, err := os.ReadFile(*planPath)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}
	plan, err := oracle.Decode("file", raw)
	if err != nil {
		return err
	}

	profile := trip.DefaultProfile()
	if *profilePath != "" {
		loaded, loadErr := config.LoadProfile(*profilePath)
		if loadErr != nil {
			return loadErr
		}
		profile = loaded
	}

	result := validator.Validate(plan, profile)
	return printJSON(map[string]any{"plan_id": plan.ID, "validation": result})
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
