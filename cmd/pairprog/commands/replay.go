package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/internal/session"
	"github.com/pairprog-ai/pairprog/pkg/types"
)

var replayShowResponses bool

var replayCmd = &cobra.Command{
	Use:   "replay <session-id>",
	Short: "Print a recorded session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		store, err := objectstore.Open(ctx, cfg.Stores)
		if err != nil {
			return err
		}

		recorder := session.NewRecorder(store)
		messages, responses, err := recorder.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			return fmt.Errorf("session %s has no recorded messages", args[0])
		}

		for _, msg := range messages {
			printMessage(msg)
		}

		if replayShowResponses {
			fmt.Printf("\n%d raw responses:\n", len(responses))
			for _, resp := range responses {
				fmt.Printf("  %s finish=%s", resp.Model, resp.FinishReason)
				if resp.Tokens != nil {
					fmt.Printf(" in=%d out=%d", resp.Tokens.Input, resp.Tokens.Output)
				}
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().BoolVar(&replayShowResponses, "responses", false, "Also summarize raw provider responses")
}

func printMessage(msg types.Message) {
	switch msg.Role {
	case types.RoleUser:
		fmt.Printf("\n> %s\n", msg.Content)
	case types.RoleAssistant:
		if msg.Content != "" {
			fmt.Printf("\n%s\n", msg.Content)
		}
		for _, call := range msg.ToolCalls {
			fmt.Printf("  [%s %s]\n", call.Name, call.Arguments)
		}
	case types.RoleTool:
		out := msg.Content
		if len(out) > 200 {
			out = out[:200] + "..."
		}
		fmt.Printf("  %s -> %s\n", msg.Name, out)
	}
}
