package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/complianceops/regwatch/internal/a2a"
	"github.com/complianceops/regwatch/internal/agent"
	"github.com/complianceops/regwatch/internal/config"
	"github.com/complianceops/regwatch/internal/fedreg"
	"github.com/complianceops/regwatch/internal/notify"
	"github.com/complianceops/regwatch/internal/orchestrator"
	"github.com/complianceops/regwatch/internal/retry"
)

// fetchPerPage is the page size the fetch capability requests. Its
// listings are capped at ten entries, so a modest page is enough; the
// comparator keeps the larger default because it diffs full windows.
const fetchPerPage = 40

// runWorkflow executes one end-to-end request: spawn or discover the
// capability agents, run the workflow, print the report, and deliver it.
func runWorkflow(flags cliFlags, prompt string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	applyFlags(cfg, flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoints, cleanup, err := resolveEndpoints(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sink, err := buildSink(cfg, flags.NoEmail)
	if err != nil {
		return err
	}

	router := orchestrator.NewRouter(a2a.NewHTTPClient(a2a.WithRetry(retry.DefaultPolicy())), endpoints)

	recipient := cfg.Email.To
	if recipient == "" {
		recipient = notify.DefaultRecipient
	}

	wf := orchestrator.NewWorkflow(router, sink, orchestrator.WithRecipient(recipient))
	defer wf.Close()

	if flags.Verbose {
		go func() {
			for event := range wf.Progress() {
				fmt.Fprintln(os.Stderr, orchestrator.FormatProgress(event))
			}
		}()
	}

	outcome, err := wf.Run(ctx, orchestrator.Request{
		Prompt:   prompt,
		Agency:   fedreg.ParseAgency(cfg.Agency),
		DaysBack: cfg.DaysBack,
	})
	if err != nil {
		return err
	}

	printOutcome(outcome)

	if outcome.Final == orchestrator.StateError {
		return fmt.Errorf("workflow ended in error: no delegate produced output")
	}
	return nil
}

// applyFlags overlays command-line flags onto the loaded configuration.
// Flags win over both file and environment values.
func applyFlags(cfg *config.Config, flags cliFlags) {
	if flags.Agency != "" {
		cfg.Agency = flags.Agency
	}
	if flags.DaysBack > 0 {
		cfg.DaysBack = flags.DaysBack
	}
	if flags.Recipient != "" {
		cfg.Email.To = flags.Recipient
	}
}

// resolveEndpoints returns the capability endpoint map. Remote agent URLs
// from the config are used as-is; otherwise both agents are spawned
// in-process on loopback ports and torn down by the returned cleanup.
func resolveEndpoints(ctx context.Context, cfg *config.Config) (orchestrator.Endpoints, func(), error) {
	if cfg.FetchURL != "" && cfg.ComparatorURL != "" {
		return orchestrator.Endpoints{
			agent.CapabilityFetch:      cfg.FetchURL,
			agent.CapabilityComparator: cfg.ComparatorURL,
		}, func() {}, nil
	}

	registry := agent.NewRegistry(
		fedreg.NewClient(fedreg.WithPerPage(fetchPerPage), fedreg.WithRetry(retry.DefaultPolicy())),
		fedreg.NewClient(fedreg.WithRetry(retry.DefaultPolicy())),
	)

	agents, err := registry.SpawnAll(ctx, map[agent.Capability]string{
		agent.CapabilityFetch:      "127.0.0.1:0",
		agent.CapabilityComparator: "127.0.0.1:0",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("spawn agents: %w", err)
	}

	endpoints := make(orchestrator.Endpoints, len(agents))
	for capability, ag := range agents {
		endpoints[capability] = "http://" + ag.Addr()
	}

	cleanup := func() { _ = registry.StopAll(context.Background()) }
	return endpoints, cleanup, nil
}

// buildSink chooses the notification channel. Missing SMTP credentials
// abort startup unless email is disabled.
func buildSink(cfg *config.Config, noEmail bool) (notify.Sink, error) {
	if noEmail {
		return notify.NewConsoleSink(os.Stdout), nil
	}
	if err := cfg.ValidateForEmail(); err != nil {
		return nil, err
	}
	return notify.NewSMTPSink(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
}

// printOutcome writes the rendered report and the delivery status to the
// terminal.
func printOutcome(outcome *orchestrator.Outcome) {
	fmt.Println(outcome.Body)

	switch {
	case outcome.Notified:
		fmt.Printf("%s %s\n", color.GreenString("✓"), outcome.NotifyStatus)
	case outcome.Final == orchestrator.StateError:
		fmt.Printf("%s %s\n", color.RedString("✗"), outcome.NotifyStatus)
	default:
		fmt.Printf("%s %s\n", color.YellowString("⚠"), outcome.NotifyStatus)
	}
}
