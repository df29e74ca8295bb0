package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/monocle-dev/expense-tracker/db"
	"github.com/monocle-dev/expense-tracker/internal/auth"
	"github.com/monocle-dev/expense-tracker/internal/config"
	"github.com/monocle-dev/expense-tracker/internal/events"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/monocle-dev/expense-tracker/internal/services"
	"golang.org/x/term"
)

const usage = `Usage: expensectl <command> [flags]

Commands:
  adduser          -email <email> -username <name> [-password <password>]
  seed-categories  [-names a,b,c]
  deactivate       -email <email>

Every command accepts -driver and -database-url; they default to
DATABASE_DRIVER and DATABASE_URL.
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: loading .env file: %v\n", err)
		os.Exit(1)
	}

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "adduser":
		return addUser(args[1:], stdin, stdout, stderr)
	case "seed-categories":
		return seedCategories(args[1:], stdout, stderr)
	case "deactivate":
		return deactivate(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// env holds what every command needs once the database is open.
type env struct {
	cfg   *config.Config
	store repository.Store
	log   *applog.Logger
	close func() error
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string, *string) {
	cfg := config.Load()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	driver := fs.String("driver", cfg.DatabaseDriver, "Database driver (postgres, mysql, sqlite)")
	databaseURL := fs.String("database-url", cfg.DatabaseURL, "Database connection string")

	return fs, driver, databaseURL
}

func openEnv(driver, databaseURL string, stderr io.Writer) (*env, error) {
	cfg := config.Load()
	cfg.DatabaseDriver = strings.ToLower(driver)
	cfg.DatabaseURL = databaseURL

	if cfg.DatabaseURL == "" {
		return nil, errors.New("missing database url: set -database-url or DATABASE_URL")
	}

	log := applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Format:    "text",
		Component: applog.ComponentApp,
		Output:    stderr,
	})

	gdb, err := db.ConnectDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.MigrateDatabase(gdb); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &env{
		cfg:   cfg,
		store: repository.NewGormStore(gdb),
		log:   log,
		close: sqlDB.Close,
	}, nil
}

func (e *env) users() *services.UserService {
	return services.NewUserService(e.store, auth.NewBcryptHasher(e.cfg.BcryptCost), events.Nop{}, e.log, e.cfg.PasswordResetTTL)
}

func addUser(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, driver, databaseURL := newFlagSet("adduser", stderr)

	email := fs.String("email", "", "Email address")
	username := fs.String("username", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *username == "" {
		fmt.Fprintln(stdout, "Usage: expensectl adduser -email <email> -username <name> [-password <password>]")
		fs.PrintDefaults()
		return errors.New("missing required flags: email, username")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	e, err := openEnv(*driver, *databaseURL, stderr)
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.users().Register(context.Background(), services.RegisterInput{
		Email:    *email,
		Username: *username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Username, user.ID)
	return nil
}

func seedCategories(args []string, stdout, stderr io.Writer) error {
	fs, driver, databaseURL := newFlagSet("seed-categories", stderr)

	namesFlag := fs.String("names", "", "Comma separated category names (defaults to the built-in list)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	names := services.DefaultSystemCategories
	if *namesFlag != "" {
		names = nil
		for _, name := range strings.Split(*namesFlag, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
	}

	e, err := openEnv(*driver, *databaseURL, stderr)
	if err != nil {
		return err
	}
	defer e.close()

	categories := services.NewCategoryService(e.store, true, e.log)

	created, err := categories.SeedSystem(context.Background(), names)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	for _, category := range created {
		fmt.Fprintf(stdout, "Created category %s (ID %d)\n", category.Name, category.ID)
	}
	fmt.Fprintf(stdout, "%d created, %d already present\n", len(created), len(names)-len(created))
	return nil
}

func deactivate(args []string, stdout, stderr io.Writer) error {
	fs, driver, databaseURL := newFlagSet("deactivate", stderr)

	email := fs.String("email", "", "Email address of the account")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: expensectl deactivate -email <email>")
		fs.PrintDefaults()
		return errors.New("missing required flags: email")
	}

	e, err := openEnv(*driver, *databaseURL, stderr)
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.users().Deactivate(context.Background(), *email)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s deactivated\n", user.Username)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
