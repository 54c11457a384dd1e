// ABOUTME: Entry point for the pressbook admin CLI
// ABOUTME: Opens the store, seeds it, restores the session, and runs one subcommand

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pressbook/pressbook/internal/config"
	"github.com/pressbook/pressbook/internal/livequery"
	"github.com/pressbook/pressbook/internal/reports"
	"github.com/pressbook/pressbook/internal/seed"
	"github.com/pressbook/pressbook/internal/session"
	"github.com/pressbook/pressbook/internal/store"
)

// version is set at build time via -ldflags.
var version = "dev"

// app bundles everything a command needs, constructed once per invocation.
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	registry *livequery.Registry
	gate     *session.Gate
}

// getConfigPath returns the path to the config file.
// Priority: PRESSBOOK_CONFIG env var > XDG_CONFIG_HOME/pressbook/config.yaml
// > ~/.config/pressbook/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("PRESSBOOK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "pressbook", "config.yaml")
}

// setupLogging configures the default slog logger from config.
func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// open loads config, opens the store, wires the live query registry, seeds,
// and restores any persisted session.
func open(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	registry := livequery.NewRegistry(nil)
	st.SetChangeListener(registry)

	if err := seed.Ensure(ctx, st, seed.Options{
		Username:    cfg.Seed.Username,
		Password:    cfg.Seed.Password,
		DisplayName: cfg.Seed.DisplayName,
	}, nil); err != nil {
		st.Close()
		return nil, err
	}

	gate := session.New(st, nil)
	gate.Restore(ctx)

	return &app{cfg: cfg, store: st, registry: registry, gate: gate}, nil
}

func (a *app) close() {
	a.registry.Close()
	if err := a.store.Close(); err != nil {
		slog.Warn("closing store", "error", err)
	}
}

// requireSession returns the logged-in account or an error telling the user
// to log in first.
func (a *app) requireSession() (*store.Account, error) {
	account, ok := a.gate.Current()
	if !ok {
		return nil, fmt.Errorf("not logged in (run: pressbook login <username>)")
	}
	return account, nil
}

// recordActivity appends one audit entry for a mutation. Best-effort: the
// mutation already happened, so a failed append only warns.
func (a *app) recordActivity(ctx context.Context, username, activity string) {
	if err := a.store.AppendActivity(ctx, &store.ActivityEntry{
		Username: username,
		Activity: activity,
	}); err != nil {
		slog.Warn("failed to record activity", "activity", activity, "error", err)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "pressbook",
		Short:         "Inventory and distribution manager for a publishing business",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", getConfigPath(), "path to config file")

	root.AddCommand(
		newInitCmd(&configPath),
		newLoginCmd(&configPath),
		newLogoutCmd(&configPath),
		newWhoamiCmd(&configPath),
		newDashboardCmd(&configPath),
		newActivityCmd(&configPath),
		newBookCmd(&configPath),
		newStockCmd(&configPath),
	)
	return root
}

// withApp opens the app, runs fn, and closes it.
func withApp(configPath *string, fn func(ctx context.Context, a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := open(cmd.Context(), *configPath)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}

func newInitCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the database and seed the default account",
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			n, err := a.store.CountAccounts(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("database ready at %s (%d account(s))\n", a.cfg.Database.Path, n)
			return nil
		}),
	}
}

func newLoginCmd(configPath *string) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and start a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if password == "" {
				fmt.Print("password: ")
				scanner := bufio.NewScanner(os.Stdin)
				if scanner.Scan() {
					password = scanner.Text()
				}
			}

			if !a.gate.Login(cmd.Context(), args[0], password) {
				return fmt.Errorf("invalid username or password")
			}

			account, _ := a.gate.Current()
			fmt.Printf("logged in as %s (%s)\n", color.GreenString(account.Username), account.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			account, ok := a.gate.Current()
			if !ok {
				fmt.Println("not logged in")
				return nil
			}
			a.gate.Logout(ctx)
			fmt.Printf("logged out %s\n", account.Username)
			return nil
		}),
	}
}

func newWhoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			account, ok := a.gate.Current()
			if !ok {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s (%s) %s\n", account.Username, account.Role, account.DisplayName)
			return nil
		}),
	}
}

func newDashboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show collection tallies and total stock",
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}

			d, err := reports.BuildDashboard(ctx, a.store, nil)
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Println("pressbook dashboard")
			fmt.Printf("  books          %d\n", d.Books)
			fmt.Printf("  authors        %d\n", d.Authors)
			fmt.Printf("  publishers     %d\n", d.Publishers)
			fmt.Printf("  categories     %d\n", d.Categories)
			fmt.Printf("  shelves        %d\n", d.Shelves)
			fmt.Printf("  outlets        %d\n", d.Outlets)
			fmt.Printf("  stock rows     %d\n", d.StockRows)
			fmt.Printf("  total stock    %s\n", color.CyanString("%d", d.TotalStock))
			fmt.Printf("  distributions  %d\n", d.Distributions)
			fmt.Printf("  returns        %d\n", d.Returns)
			fmt.Printf("  customers      %d\n", d.Customers)
			fmt.Printf("  sales          %d\n", d.Sales)
			return nil
		}),
	}
}

func newActivityCmd(configPath *string) *cobra.Command {
	var limit int
	var username string

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the activity log, newest first",
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}

			var entries []*store.ActivityEntry
			var err error
			if username != "" {
				entries, err = a.store.ListActivityByUsername(ctx, username, limit)
			} else {
				entries, err = a.store.ListActivity(ctx, limit)
			}
			if err != nil {
				return err
			}

			for _, e := range entries {
				fmt.Printf("%s  %-12s %s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Username,
					e.Activity)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	cmd.Flags().StringVar(&username, "user", "", "filter by username")
	return cmd
}

func newBookCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage books",
	}
	cmd.AddCommand(newBookAddCmd(configPath), newBookListCmd(configPath), newBookRemoveCmd(configPath))
	return cmd
}

func newBookAddCmd(configPath *string) *cobra.Command {
	var book store.Book

	cmd := &cobra.Command{
		Use:   "add <isbn>",
		Short: "Add a book",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			account, err := a.requireSession()
			if err != nil {
				return err
			}

			book.ISBN = args[0]
			if book.Title == "" {
				return &store.ValidationError{Field: "title"}
			}

			if err := a.store.AddBook(ctx, &book); err != nil {
				return err
			}
			a.recordActivity(ctx, account.Username, fmt.Sprintf("added book %s", book.ISBN))
			fmt.Printf("added %s (%s)\n", book.Title, book.ISBN)
			return nil
		}),
	}
	cmd.Flags().StringVar(&book.Title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&book.AuthorID, "author", "", "author id")
	cmd.Flags().StringVar(&book.PublisherID, "publisher", "", "publisher id")
	cmd.Flags().StringVar(&book.CategoryID, "category", "", "category id")
	cmd.Flags().IntVar(&book.YearPublished, "year", 0, "year published")
	cmd.Flags().Int64Var(&book.Price, "price", 0, "unit price")
	return cmd
}

func newBookListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List books with resolved author names",
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}

			books, err := a.store.ListBooks(ctx)
			if err != nil {
				return err
			}
			for _, b := range books {
				author, err := reports.AuthorName(ctx, a.store, nil, b.AuthorID)
				if err != nil {
					return err
				}
				fmt.Printf("%-16s %-40s %s\n", b.ISBN, b.Title, author)
			}
			return nil
		}),
	}
}

func newBookRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <isbn>",
		Short: "Remove a book",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			account, err := a.requireSession()
			if err != nil {
				return err
			}

			isbn := args[0]
			if err := a.store.DeleteBook(ctx, isbn); err != nil {
				return err
			}
			a.recordActivity(ctx, account.Username, fmt.Sprintf("removed book %s", isbn))
			fmt.Printf("removed %s\n", isbn)
			return nil
		}),
	}
}

func newStockCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Manage stock rows",
	}
	cmd.AddCommand(newStockAddCmd(configPath), newStockListCmd(configPath))
	return cmd
}

func newStockAddCmd(configPath *string) *cobra.Command {
	var row store.Stock

	cmd := &cobra.Command{
		Use:   "add <stock-id>",
		Short: "Add a stock row",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			account, err := a.requireSession()
			if err != nil {
				return err
			}

			row.ID = args[0]
			if row.ISBN == "" {
				return &store.ValidationError{Field: "isbn"}
			}

			if err := a.store.AddStock(ctx, &row); err != nil {
				return err
			}
			a.recordActivity(ctx, account.Username, fmt.Sprintf("added stock %s", row.ID))
			fmt.Printf("added stock %s (%d x %s)\n", row.ID, row.Quantity, row.ISBN)
			return nil
		}),
	}
	cmd.Flags().StringVar(&row.ISBN, "isbn", "", "book isbn (required)")
	cmd.Flags().StringVar(&row.ShelfID, "shelf", "", "shelf id")
	cmd.Flags().IntVar(&row.Quantity, "qty", 0, "quantity")
	return cmd
}

func newStockListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stock with resolved titles and shelves",
		RunE: withApp(configPath, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}

			rows, err := reports.StockRows(ctx, a.store, nil)
			if err != nil {
				return err
			}
			for _, r := range rows {
				fmt.Printf("%-12s %-40s %-8s %d\n", r.Stock.ID, r.BookTitle, r.ShelfCode, r.Stock.Quantity)
			}
			return nil
		}),
	}
}
