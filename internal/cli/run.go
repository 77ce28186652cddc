package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/debate"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/gateway"
	"github.com/soyeahso/arena/internal/llm"
)

// consolePublisher prints transcript entries as they are produced.
type consolePublisher struct{}

func (consolePublisher) Publish(entry domain.TranscriptEntry) {
	if entry.Agent == domain.ModeratorName {
		fmt.Printf("\n=== %s ===\n", entry.Text)
		return
	}
	fmt.Printf("\n[%s] %s:\n%s\n", entry.Type, entry.Agent, entry.Text)
}

// multiPublisher fans entries out to several publishers.
type multiPublisher []debate.Publisher

func (m multiPublisher) Publish(entry domain.TranscriptEntry) {
	for _, p := range m {
		p.Publish(entry)
	}
}

func newRunCmd() *cobra.Command {
	var (
		topic    string
		personas []string
		auto     bool
		delay    int
		listen   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a debate",
		Long:  "Runs a full debate on the given topic, advancing phase by phase either interactively or automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("a debate needs a topic (--topic)")
			}
			if len(personas) < 2 {
				personas = config.DefaultPersonaNames[:2]
			}

			lc, cfg, err := openLifecycle()
			if err != nil {
				return err
			}
			defer lc.Close()

			if issues := config.Validate(&cfg); len(issues) > 0 {
				for _, issue := range issues {
					log.Warn().Str("path", issue.Path).Msg(issue.Message)
				}
			}

			registry := llm.NewRegistryFromConfig(cfg.LLM, log)
			client, err := registry.Resolve(cfg.LLM.Model)
			if err != nil {
				return fmt.Errorf("no usable LLM provider: %w", err)
			}

			debaters := buildDebaters(personas, topic, cfg, client)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			publishers := multiPublisher{consolePublisher{}}
			if listen || cfg.Gateway.Enabled {
				gw := gateway.New(cfg.Gateway, func() any { return lc.Store().Health() }, log)
				publishers = append(publishers, gw)
				go func() {
					if err := gw.Start(ctx); err != nil {
						log.Error().Err(err).Msg("spectator server failed")
					}
				}()
			}

			engine := debate.NewEngine(lc.Store(), debaters, debate.EngineConfig{
				Followups: cfg.Debate.Followups,
				Publisher: publishers,
			}, log)

			id, err := engine.Start(topic)
			if err != nil {
				return err
			}
			fmt.Printf("Debate started: %s\nTopic: %s\nParticipants: %s\n",
				id, topic, strings.Join(personas, " vs "))

			if auto {
				stepDelay := time.Duration(delay) * time.Second
				if delay < 0 {
					stepDelay = time.Duration(cfg.Debate.StepDelaySeconds) * time.Second
				}
				go func() {
					<-ctx.Done()
					engine.Stop()
				}()
				if err := engine.Run(ctx, stepDelay); err != nil {
					return err
				}
			} else if err := runInteractive(ctx, engine); err != nil {
				return err
			}

			if engine.Completed() {
				printFinalScores(lc, id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "debate topic (required)")
	cmd.Flags().StringSliceVarP(&personas, "personas", "p", nil, "participating personas (default first two built-ins)")
	cmd.Flags().BoolVar(&auto, "auto", false, "advance phases automatically")
	cmd.Flags().IntVar(&delay, "delay", -1, "seconds between auto-advanced phases (default from config)")
	cmd.Flags().BoolVar(&listen, "listen", false, "serve live transcript to spectators over WebSocket")

	return cmd
}

// buildDebaters creates participants from persona names, alternating
// Pro/Con in listed order.
func buildDebaters(personas []string, topic string, cfg config.Config, client llm.Client) []*agent.Debater {
	opts := agent.Options{
		MaxRetries:  cfg.LLM.MaxRetries,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}

	debaters := make([]*agent.Debater, 0, len(personas))
	for i, name := range personas {
		role := domain.RolePro
		if i%2 == 1 {
			role = domain.RoleCon
		}
		style := cfg.Debate.Personas[name]
		if style == "" {
			style = "Neutral"
		}
		debaters = append(debaters, agent.NewDebater(name, role, style, topic, client, opts, log))
	}
	return debaters
}

// runInteractive advances one phase per Enter keypress. A failed phase is
// reported and can be retried with the next keypress.
func runInteractive(ctx context.Context, engine *debate.Engine) error {
	reader := bufio.NewReader(os.Stdin)
	for !engine.Completed() {
		next := debate.Phase(int(engine.Phase()) + 1)
		fmt.Printf("\nPress Enter to start %s (Ctrl-C to quit)...", next)

		lineCh := make(chan error, 1)
		go func() {
			_, err := reader.ReadString('\n')
			lineCh <- err
		}()

		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case err := <-lineCh:
			if err != nil {
				return nil
			}
		}

		if _, err := engine.Advance(ctx); err != nil {
			fmt.Printf("Phase failed: %v (press Enter to retry)\n", err)
		}
	}
	return nil
}

func printFinalScores(lc *debate.Lifecycle, sessionID string) {
	scores := lc.Store().Scores(sessionID)
	if len(scores) == 0 {
		return
	}
	fmt.Println("\nFinal scores:")
	for _, s := range scores {
		if total, ok := s.Content["total_score"]; ok {
			fmt.Printf("  %-20s %v points\n", s.Agent, total)
		}
	}
}
