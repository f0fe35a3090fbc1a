package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"finbook/internal/auth"
	"finbook/internal/config"
	"finbook/internal/localstore"
	"finbook/internal/models"
	"finbook/internal/query"
	"finbook/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("finbook", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := config.Load()
	storePath := fs.String("store", cfg.StorePath, "Path to the local storage file")
	latencyMS := fs.Int("latency", int(cfg.Latency/time.Millisecond), "Simulated backend latency in milliseconds")
	extra := fs.Int("extra", 0, "Number of extra fabricated transactions to seed")

	if err := fs.Parse(args); err != nil {
		return err
	}

	local, err := localstore.Open(*storePath)
	if err != nil {
		return fmt.Errorf("opening local storage: %w", err)
	}
	defer local.Close()

	store := storage.New(storage.WithLatency(time.Duration(*latencyMS) * time.Millisecond))
	if err := store.Seed(); err != nil {
		return fmt.Errorf("seeding data: %w", err)
	}
	if *extra > 0 {
		store.SeedRandom(*extra)
	}

	flow := auth.NewFlow(store, local, auth.ConsoleNotifier{W: stdout}, []byte(cfg.Secret))
	ctx := context.Background()
	in := bufio.NewScanner(stdin)

	session := flow.ResumeSession(ctx)
	if session.Authenticated {
		fmt.Fprintf(stdout, "Welcome back, %s %s.\n", session.User.FirstName, session.User.LastName)
	} else {
		if err := authenticate(ctx, flow, in, stdin, stdout); err != nil {
			return err
		}
	}

	engine := query.NewEngine(store)
	if err := engine.Refresh(ctx); err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}

	return commandLoop(ctx, flow, engine, store, in, stdout)
}

// authenticate walks the interactive login: email, passcode challenge,
// then password. Each failure is printed and the relevant step repeated.
func authenticate(ctx context.Context, flow *auth.Flow, in *bufio.Scanner, stdin io.Reader, stdout io.Writer) error {
	for {
		fmt.Fprintf(stdout, "Email [%s]: ", storage.DemoEmail)
		email, ok := readLine(in)
		if !ok {
			return io.EOF
		}
		if email == "" {
			email = storage.DemoEmail
		}

		if err := flow.SendChallenge(ctx, email); err != nil {
			fmt.Fprintln(stdout, err)
			continue
		}

		fmt.Fprint(stdout, "Passcode: ")
		code, ok := readLine(in)
		if !ok {
			return io.EOF
		}
		if err := flow.VerifyChallenge(ctx, email, code); err != nil {
			fmt.Fprintln(stdout, err)
			continue
		}

		fmt.Fprint(stdout, "Password: ")
		password, err := readPassword(stdin, in)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)

		user, err := flow.Login(ctx, email, password)
		if err != nil {
			fmt.Fprintln(stdout, err)
			continue
		}
		fmt.Fprintf(stdout, "Signed in as %s %s.\n", user.FirstName, user.LastName)
		return nil
	}
}

func commandLoop(ctx context.Context, flow *auth.Flow, engine *query.Engine, store *storage.Store, in *bufio.Scanner, stdout io.Writer) error {
	fmt.Fprintln(stdout, `Type "help" for commands.`)
	for {
		fmt.Fprint(stdout, "> ")
		line, ok := readLine(in)
		if !ok {
			return nil
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "", "#":
		case "help":
			printHelp(stdout)
		case "list":
			printTransactions(stdout, engine.Transactions())
		case "filter":
			if err := applyFilter(engine, rest); err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			printTransactions(stdout, engine.Transactions())
		case "clear":
			engine.ClearFilters()
			fmt.Fprintln(stdout, "Filters cleared.")
		case "stats":
			for _, ct := range query.SpendingByCategory(engine.Transactions()) {
				fmt.Fprintf(stdout, "%-16s %10s  (%d, %.1f%%)\n", ct.Category, ct.Total.StringFixed(2), ct.Count, ct.Percentage)
			}
		case "accounts":
			accounts, err := store.FetchAccounts(ctx)
			if err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			for _, a := range accounts {
				fmt.Fprintf(stdout, "%-20s %-10s %12s %s\n", a.Name, a.Type, a.Balance.StringFixed(2), a.Currency)
			}
		case "budgets":
			budgets, err := store.FetchBudgets(ctx)
			if err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			for _, b := range budgets {
				fmt.Fprintf(stdout, "%-16s %s of %s (%.0f%%)\n", b.Category, b.Spent.StringFixed(2), b.Amount.StringFixed(2), query.BudgetProgress(b))
			}
		case "goals":
			goals, err := store.FetchGoals(ctx)
			if err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			for _, g := range goals {
				fmt.Fprintf(stdout, "%-16s %s of %s (%.0f%%)\n", g.Name, g.CurrentAmount.StringFixed(2), g.TargetAmount.StringFixed(2), query.GoalProgress(g))
			}
		case "add":
			tx, err := addTransaction(ctx, flow, engine, rest)
			if err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			fmt.Fprintf(stdout, "Added %s (%s) as %s.\n", tx.Description, tx.Amount.StringFixed(2), tx.Category)
		case "rm":
			if err := engine.Remove(ctx, resolveID(engine, rest)); err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			fmt.Fprintln(stdout, "Removed.")
		case "logout":
			flow.Logout(ctx)
			fmt.Fprintln(stdout, "Signed out.")
			return nil
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(stdout, "Unknown command %q; try \"help\".\n", cmd)
		}
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Commands:
  list                         show the filtered transaction view
  filter key=value ...         set filters (type, category, search, from, to)
  clear                        clear all filters
  stats                        spending by category over the current view
  accounts | budgets | goals   show the respective records
  add <amount> <description>   add an expense (category auto-suggested)
  rm <id>                      delete a transaction
  logout | quit
`)
}

func printTransactions(w io.Writer, txs []models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions match.")
		return
	}
	for _, tx := range txs {
		fmt.Fprintf(w, "%s  %s  %8s  %-9s %-16s %s\n",
			shortID(tx.ID), tx.Date.Format("2006-01-02"), tx.Amount.StringFixed(2), tx.Type, tx.Category, tx.Description)
	}
}

// resolveID expands a shortened id back to the full one when exactly one
// visible transaction matches the prefix.
func resolveID(engine *query.Engine, prefix string) string {
	if prefix == "" {
		return prefix
	}
	var match string
	for _, tx := range engine.Transactions() {
		if strings.HasPrefix(tx.ID, prefix) {
			if match != "" {
				return prefix // ambiguous, let the store report it
			}
			match = tx.ID
		}
	}
	if match == "" {
		return prefix
	}
	return match
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// applyFilter parses "key=value" pairs into a filter patch.
func applyFilter(engine *query.Engine, args string) error {
	var patch query.Patch
	for _, field := range strings.Fields(args) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", field)
		}
		switch key {
		case "type":
			t := models.TransactionType(value)
			patch.Type = &t
		case "category":
			c := models.Category(value)
			if value != "" && !c.Valid() {
				return fmt.Errorf("unknown category %q", value)
			}
			patch.Category = &c
		case "search":
			s := value
			patch.Search = &s
		case "from":
			d, err := time.Parse("2006-01-02", value)
			if err != nil {
				return fmt.Errorf("bad date %q: want YYYY-MM-DD", value)
			}
			patch.StartDate = &d
		case "to":
			d, err := time.Parse("2006-01-02", value)
			if err != nil {
				return fmt.Errorf("bad date %q: want YYYY-MM-DD", value)
			}
			patch.EndDate = &d
		default:
			return fmt.Errorf("unknown filter %q", key)
		}
	}
	engine.SetFilters(patch)
	return nil
}

func addTransaction(ctx context.Context, flow *auth.Flow, engine *query.Engine, args string) (models.Transaction, error) {
	amountStr, desc, _ := strings.Cut(args, " ")
	desc = strings.TrimSpace(desc)
	if amountStr == "" || desc == "" {
		return models.Transaction{}, errors.New("usage: add <amount> <description>")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil || !amount.IsPositive() {
		return models.Transaction{}, fmt.Errorf("bad amount %q", amountStr)
	}

	session := flow.Session()
	if !session.Authenticated {
		return models.Transaction{}, errors.New("not signed in")
	}
	category := query.Classify(desc)
	typ := models.TypeExpense
	if category == models.CategoryIncome {
		typ = models.TypeIncome
	}
	return engine.Add(ctx, models.Transaction{
		UserID:      session.User.ID,
		Date:        time.Now(),
		Amount:      amount,
		Description: desc,
		Type:        typ,
		Category:    category,
	})
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func readPassword(stdin io.Reader, in *bufio.Scanner) (string, error) {
	// Hide input when stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	line, ok := readLine(in)
	if !ok {
		return "", io.EOF
	}
	return line, nil
}
