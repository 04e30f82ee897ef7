// Package main is the entry point for the Taskdeck admin CLI.
// It manages user accounts directly against the configured database and
// is the way the first admin account gets created.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/repository"
	"github.com/taskdeck/taskdeck/internal/repository/postgres"
	"github.com/taskdeck/taskdeck/internal/repository/sqlite"
	"github.com/taskdeck/taskdeck/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Taskdeck Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user subcommand required (create, list, activate, deactivate, promote, demote)")
	}

	sub := args[0]
	ctx := context.Background()

	users, cleanup, err := openUserRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := service.NewUserService(users, zerolog.Nop())

	switch sub {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		username := fs.String("username", "", "username (required)")
		email := fs.String("email", "", "email address (required)")
		password := fs.String("password", "", "password (required)")
		admin := fs.Bool("admin", false, "grant the admin role")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *username == "" || *email == "" || *password == "" {
			return fmt.Errorf("--username, --email and --password are required")
		}

		role := domain.RoleUser
		if *admin {
			role = domain.RoleAdmin
		}

		out, err := svc.Create(ctx, service.CreateUserInput{
			Username: *username,
			Email:    *email,
			Password: *password,
			Role:     role,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d (%s, role=%s)\n", out.User.ID, out.User.Username, out.User.Role)
		return nil

	case "list":
		out, err := svc.List(ctx, service.ListUsersInput{Limit: 100})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tACTIVE")
		for _, u := range out.Users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.Role, u.IsActive)
		}
		return w.Flush()

	case "activate", "deactivate":
		id, err := parseUserID(args[1:])
		if err != nil {
			return err
		}
		if err := svc.SetActive(ctx, id, sub == "activate"); err != nil {
			return err
		}
		fmt.Printf("User %d %sd\n", id, sub)
		return nil

	case "promote", "demote":
		id, err := parseUserID(args[1:])
		if err != nil {
			return err
		}
		role := domain.RoleAdmin
		if sub == "demote" {
			role = domain.RoleUser
		}
		if err := svc.SetRole(ctx, id, role); err != nil {
			return err
		}
		fmt.Printf("User %d role set to %s\n", id, role)
		return nil

	default:
		return fmt.Errorf("unknown user subcommand: %s", sub)
	}
}

// parseUserID reads a numeric user ID from the remaining arguments.
func parseUserID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("user ID required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID %q", args[0])
	}
	return id, nil
}

// openUserRepository connects to the configured database backend.
func openUserRepository(ctx context.Context) (repository.UserRepository, func(), error) {
	cfg, err := config.Load(os.Getenv("TASKDECK_CONFIG"))
	if err != nil {
		return nil, nil, err
	}

	logger := zerolog.Nop()

	if cfg.Database.IsEmbedded() {
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), func() { db.Close() }, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewUserRepository(db), func() { db.Close() }, nil
}

func printUsage() {
	fmt.Println(`Taskdeck Admin CLI

Usage:
  taskdeck-admin <command> [arguments]

Commands:
  user        Manage users (create, list, activate, deactivate, promote, demote)
  version     Print version information
  help        Show this help message

Examples:
  taskdeck-admin user create --username admin --email admin@example.com --password secret123 --admin
  taskdeck-admin user list
  taskdeck-admin user deactivate 42
  taskdeck-admin user promote 42

Configuration is read from the TASKDECK_CONFIG file path and TASKDECK_*
environment variables, the same as the server.`)
}
