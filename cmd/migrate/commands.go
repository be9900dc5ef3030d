package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/database"
	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/migrations"
)

var (
	cfg           *config.Config
	migrationsDir string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Database migrations for the back office API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&migrationsDir, "dir", "", "read migrations from this directory instead of the embedded set")

	root.AddCommand(
		gooseCmd("up", "Apply all pending migrations", func(db *sql.DB, dir string, args []string) error {
			if err := goose.Up(db, dir); err != nil {
				return fmt.Errorf("failed to run up migrations: %w", err)
			}
			fmt.Println("Migrations applied successfully")
			return nil
		}),
		gooseCmd("down", "Roll back the latest migration", func(db *sql.DB, dir string, args []string) error {
			if err := goose.Down(db, dir); err != nil {
				return fmt.Errorf("failed to run down migration: %w", err)
			}
			fmt.Println("Migration rolled back successfully")
			return nil
		}),
		gooseCmd("status", "Show applied and pending migrations", func(db *sql.DB, dir string, args []string) error {
			return goose.Status(db, dir)
		}),
		gooseCmd("version", "Print the current schema version", func(db *sql.DB, dir string, args []string) error {
			return goose.Version(db, dir)
		}),
		createCmd(),
		autoCmd(),
		tokenCmd(),
	)
	return root
}

// gooseCmd wraps a goose operation with connection setup against PostgreSQL
func gooseCmd(use, short string, run func(db *sql.DB, dir string, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Database.Driver == "sqlite" {
				return fmt.Errorf("SQL migrations target PostgreSQL; use \"migrate auto\" for SQLite")
			}

			db, err := sql.Open("postgres", cfg.Database.ConnectionString())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := db.Ping(); err != nil {
				return fmt.Errorf("failed to ping database: %w", err)
			}
			if err := goose.SetDialect("postgres"); err != nil {
				return fmt.Errorf("failed to set dialect: %w", err)
			}

			dir := "."
			if migrationsDir != "" {
				goose.SetBaseFS(nil)
				dir = migrationsDir
			} else {
				goose.SetBaseFS(migrations.FS)
			}
			return run(db, dir, args)
		},
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := migrationsDir
			if dir == "" {
				dir = "./migrations"
			}
			goose.SetSequential(true)
			if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Printf("Migration created: %s\n", args[0])
			return nil
		},
	}
}

// autoCmd syncs the schema from the gorm models. Used for SQLite and throwaway databases.
func autoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Create or update tables from the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewDatabase(&cfg.Database)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Println("Schema synced from models")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		email string
		name  string
		role  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			userRole := domain.UserRole(strings.ToLower(role))
			if !userRole.IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}

			validator := auth.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
			token, err := validator.IssueToken(auth.UserContext{
				UserID:      email,
				Email:       email,
				DisplayName: name,
				Role:        userRole,
			}, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "dev@localhost", "user email, also used as subject")
	cmd.Flags().StringVar(&name, "name", "Developer", "display name")
	cmd.Flags().StringVar(&role, "role", string(domain.UserRoleStaff), "user role (admin or staff)")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
