// Package cli holds the propsharectl admin commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propshare-backend/internal/auth"
	"propshare-backend/internal/config"
	"propshare-backend/internal/infrastructure/database"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Deps opens the backing stores lazily so --help never dials anything.
type Deps struct {
	OpenDB    func() (*gorm.DB, error)
	OpenRedis func() (*redis.Client, error)
}

// EnvDeps reads DATABASE_URL_* and REDIS_URL through the service config.
func EnvDeps() Deps {
	return Deps{
		OpenDB: func() (*gorm.DB, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			if cfg.DatabaseURL == "" {
				return nil, errors.New("no database url configured (set DATABASE_URL_DEV, _PROD or _TEST)")
			}
			return database.Open(cfg.DatabaseURL)
		},
		OpenRedis: func() (*redis.Client, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			if cfg.RedisURL == "" {
				return nil, nil
			}
			opt, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return nil, err
			}
			return redis.NewClient(opt), nil
		},
	}
}

func Root(d Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "propsharectl",
		Short:         "PropShare ledger administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(MigrateCmd(d), GrantKeyCmd(d), RevokeKeyCmd(d))
	return root
}

func MigrateCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every ledger table",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := d.OpenDB()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("auto-migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables.\n", len(database.Models()))
			return nil
		},
	}
}

func GrantKeyCmd(d Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant-key",
		Short: "Create an API key for an address",
		Long:  "Create an API key for an address. The secret is printed once and only its bcrypt hash is stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, _ := cmd.Flags().GetString("address")
			label, _ := cmd.Flags().GetString("label")
			caps, _ := cmd.Flags().GetStringSlice("capability")

			db, err := d.OpenDB()
			if err != nil {
				return err
			}
			p, secret, err := auth.GrantKey(db, auth.GrantInput{Address: address, Label: label, Capabilities: caps})
			if err != nil {
				return err
			}
			granted, _ := auth.Capabilities(p)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:      %s\n", p.Address)
			fmt.Fprintf(out, "capabilities: %s\n", strings.Join(granted, ","))
			fmt.Fprintf(out, "key_id:       %s\n", p.KeyID)
			fmt.Fprintf(out, "secret:       %s\n", secret)
			return nil
		},
	}
	cmd.Flags().String("address", "", "0x-prefixed address the key acts as")
	cmd.Flags().String("label", "", "free-form note shown in /auth/me")
	cmd.Flags().StringSlice("capability", nil, "admin or verifier; repeat for both")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func RevokeKeyCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-key <key_id>",
		Short: "Disable an API key and end its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := d.OpenDB()
			if err != nil {
				return err
			}
			var rdb *redis.Client
			if d.OpenRedis != nil {
				if rdb, err = d.OpenRedis(); err != nil {
					return err
				}
			}
			ended, err := auth.RevokeKey(context.Background(), db, rdb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s, ended %d sessions.\n", args[0], ended)
			return nil
		},
	}
}
