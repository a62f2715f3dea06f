package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions, most recent first",
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
		ids, err := recorder.ListSessions(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no sessions recorded")
			return nil
		}

		for _, id := range ids {
			fmt.Printf("%s  %s\n", id, sessionStartTime(id))
		}
		return nil
	},
}

// sessionStartTime recovers the creation time embedded in the session ID.
func sessionStartTime(id string) string {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return ""
	}
	return time.UnixMilli(int64(parsed.Time())).Format(time.RFC3339)
}
