package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/internal/config"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/session"
)

// sessionCommand manages API sessions in a shared session store.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage API sessions",
	}
	cmd.AddCommand(c.sessionIssueCommand())
	cmd.AddCommand(c.sessionRevokeCommand())
	return cmd
}

func (c *CLI) sessionIssueCommand() *cobra.Command {
	var (
		scope session.Scope
		name  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer session for the API",
		Long: `Issue a bearer session scoped to one establishment.

Only the redis session backend is shared with a running server; memory
sessions live inside the server process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.sharedSessions(cmd.Context())
			if err != nil {
				return err
			}
			s, err := session.New(scope, name, ttl)
			if err != nil {
				return err
			}
			if err := store.Set(cmd.Context(), s); err != nil {
				return fmt.Errorf("store session: %w", err)
			}

			printSuccess("Session issued")
			printKeyValue("Token", s.ID)
			printKeyValue("Scope", s.Scope.EstablishmentID)
			printKeyValue("Expires", s.ExpiresAt.Format(time.RFC3339))
			printNewline()
			printNextStep("Use", "Authorization: Bearer "+s.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scope.EstablishmentID, "establishment", "e", "", "establishment id (required)")
	cmd.Flags().StringVar(&scope.UserID, "user", "", "user id")
	cmd.Flags().StringVar(&name, "name", "", "display name of the holder")
	cmd.Flags().DurationVar(&ttl, "ttl", session.DefaultTTL, "session lifetime")
	return cmd
}

func (c *CLI) sessionRevokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke [token]",
		Short: "Revoke a bearer session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.sharedSessions(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("revoke session: %w", err)
			}
			printSuccess("Session revoked")
			return nil
		},
	}
}

// sharedSessions opens the configured session store, refusing backends a
// server process cannot see.
func (c *CLI) sharedSessions(ctx context.Context) (session.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Session.Backend != config.BackendRedis {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"session backend %q is not shared; set %s_SESSION_BACKEND=redis", cfg.Session.Backend, config.EnvPrefix)
	}
	return cfg.OpenSessions(ctx, c.Logger)
}
