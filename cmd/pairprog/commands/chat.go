package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pairprog-ai/pairprog/internal/assistant"
	"github.com/pairprog-ai/pairprog/internal/event"
	"github.com/pairprog-ai/pairprog/internal/library"
	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/internal/provider"
	"github.com/pairprog-ai/pairprog/internal/search"
	"github.com/pairprog-ai/pairprog/internal/session"
	"github.com/pairprog-ai/pairprog/internal/tool"
)

var chatModelFlag string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the assistant. Each line of
input runs one turn; the assistant may execute tools before replying.
End the conversation with Ctrl-D or /quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatModelFlag, "model", "m", "", "Model ID or alias")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := objectstore.Open(ctx, cfg.Stores)
	if err != nil {
		return err
	}

	var index search.Index
	if cfg.Search.URL != "" {
		index, err = search.NewTypesenseIndex(ctx, cfg.Search)
		if err != nil {
			return err
		}
	} else {
		index = search.NewMemoryIndex()
	}

	lib := library.New(store.Sub("library"), index)
	registry := tool.DefaultRegistry(cfg.WorkDir, store, lib)
	recorder := session.NewRecorder(store)

	catalog, err := provider.LoadCatalog()
	if err != nil {
		return err
	}

	providerCfg := cfg.Provider
	if chatModelFlag != "" {
		providerCfg.Model = chatModelFlag
	}
	if m, ok := catalog.Resolve(providerCfg.Model); ok {
		providerCfg.Model = m.ID
	}

	p, err := provider.New(ctx, providerCfg)
	if err != nil {
		return err
	}

	tokenBudget := cfg.Limits.TokenBudget
	if tokenBudget == 0 {
		// Leave headroom below the context window for the reply.
		tokenBudget = catalog.ContextWindow(providerCfg.Model, 128_000) * 3 / 4
	}

	bus := event.NewBus()
	defer bus.Close()
	bus.Subscribe(event.ToolStarted, func(e event.Event) {
		fmt.Printf("  [%v]\n", e.Data)
	})
	bus.Subscribe(event.PersistenceDegraded, func(e event.Event) {
		fmt.Fprintln(os.Stderr, "warning: session persistence lost, continuing in memory")
	})

	a := assistant.New(assistant.Options{
		Provider:        p,
		Registry:        registry,
		Recorder:        recorder,
		Bus:             bus,
		WorkDir:         cfg.WorkDir,
		ModelID:         providerCfg.Model,
		MaxTokens:       providerCfg.MaxTokens,
		MaxAutoContinue: cfg.Limits.MaxAutoContinue,
		TokenBudget:     tokenBudget,
	})

	logging.Info().
		Str("session", a.SessionID()).
		Str("model", providerCfg.Model).
		Msg("chat session started")
	fmt.Printf("pairprog %s | session %s | model %s\n", Version, a.SessionID(), providerCfg.Model)
	fmt.Println("Type your message; Ctrl-D or /quit ends the conversation.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		reply, err := a.Send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println("\ninterrupted")
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if reply != "" {
			fmt.Println(reply)
		}
	}

	return scanner.Err()
}
