// Command gtindata-cli exercises the dashboard API from a terminal:
// login, API key management, usage metrics, and GTIN lookups, sharing
// its session with other invocations through a credential file (or a
// Redis key when several machines share one session).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	gtindata "github.com/gtindata/gtindata-go"
	"github.com/gtindata/gtindata-go/credential"
	"github.com/gtindata/gtindata-go/session"
)

type cliConfig struct {
	BaseURL        string        `env:"GTINDATA_BASE_URL, default=https://api.gtindata.com"`
	CredentialFile string        `env:"GTINDATA_CREDENTIAL_FILE"`
	RedisAddr      string        `env:"GTINDATA_REDIS_ADDR"`
	Timeout        time.Duration `env:"GTINDATA_TIMEOUT, default=30s"`
	Verbose        bool          `env:"GTINDATA_VERBOSE"`
}

func main() {
	if err := run(); err != nil {
		if apiErr := gtindata.AsAPIError(err); apiErr != nil {
			fmt.Fprintln(os.Stderr, "error:", apiErr.UserMessage())
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg cliConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !cfg.Verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	store, cleanup, err := openCredentialStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := gtindata.New().
		WithBaseURL(cfg.BaseURL).
		WithCredentials(store).
		WithTimeout(cfg.Timeout).
		WithUserAgent("gtindata-cli/" + gtindata.Version).
		WithEventSink(gtindata.NewZerologSink(logger)).
		Build()
	if err != nil {
		return err
	}
	defer client.Close()

	ctrl := session.NewController(client, store)

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "login":
		return cmdLogin(ctx, ctrl, args)
	case "logout":
		ctrl.Logout()
		fmt.Println("logged out")
		return nil
	case "me":
		return cmdMe(ctx, ctrl)
	case "keys":
		return cmdKeys(ctx, client, args)
	case "usage":
		return cmdUsage(ctx, client, args)
	case "lookup":
		return cmdLookup(ctx, client, args)
	case "billing":
		return cmdBilling(ctx, client)
	case "health":
		if !client.Health(ctx) {
			return fmt.Errorf("backend at %s is not healthy", cfg.BaseURL)
		}
		fmt.Println("ok")
		return nil
	default:
		usage()
		os.Exit(2)
		return nil
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: gtindata-cli <command> [flags]

commands:
  login    -email -password      authenticate and store the session
  logout                         drop the stored session
  me                             show the authenticated identity
  keys     list | create | revoke
  usage    [-days N]             usage summary per API key
  lookup   <gtin> [gtin...]      product lookup (batch when several)
  billing                        current subscription
  health                         backend liveness probe`)
}

func openCredentialStore(cfg cliConfig) (credential.Store, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{cfg.RedisAddr},
		})
		store, err := credential.NewRedis(client, "")
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil
	}

	path := cfg.CredentialFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "gtindata", "credential")
	}
	store, err := credential.NewFile(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func cmdLogin(ctx context.Context, ctrl *session.Controller, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	snap, err := ctrl.Login(ctx, gtindata.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s plan)\n", snap.Identity.Email, snap.Identity.Plan)
	return nil
}

func cmdMe(ctx context.Context, ctrl *session.Controller) error {
	snap := ctrl.Boot(ctx)
	if !snap.LoggedIn() {
		if snap.Err != nil {
			return snap.Err
		}
		return fmt.Errorf("not logged in; run: gtindata-cli login")
	}

	id := snap.Identity
	fmt.Printf("email:        %s\n", id.Email)
	fmt.Printf("organization: %s (id %d)\n", id.OrganizationName, id.OrganizationID)
	fmt.Printf("plan:         %s\n", id.Plan)
	fmt.Printf("daily limit:  %d\n", id.DailyLimit)
	return nil
}

func cmdKeys(ctx context.Context, client *gtindata.Client, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		page, err := client.ListAPIKeys(ctx, gtindata.ListOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("%d keys, %d active of %d allowed\n", page.Total, page.ActiveCount, page.ActiveLimit)
		for _, key := range page.Items {
			fmt.Printf("  %4d  %-24s  %-12s  %s\n", key.ID, key.Name, key.Status, key.MaskedKey)
		}
		return nil
	case "create":
		fs := flag.NewFlagSet("keys create", flag.ExitOnError)
		name := fs.String("name", "", "key name")
		_ = fs.Parse(args[1:])

		created, err := client.CreateAPIKeyChecked(ctx, *name)
		if err != nil {
			return err
		}
		fmt.Printf("created key %d (%s)\n", created.ID, created.Name)
		fmt.Printf("secret (shown once): %s\n", created.Key)
		return nil
	case "revoke":
		fs := flag.NewFlagSet("keys revoke", flag.ExitOnError)
		id := fs.Int64("id", 0, "key id")
		_ = fs.Parse(args[1:])

		key, err := client.RevokeAPIKey(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("revoked key %d (%s)\n", key.ID, key.Name)
		return nil
	default:
		return fmt.Errorf("unknown keys subcommand %q", args[0])
	}
}

func cmdUsage(ctx context.Context, client *gtindata.Client, args []string) error {
	fs := flag.NewFlagSet("usage", flag.ExitOnError)
	days := fs.Int("days", 7, "summary window in days")
	_ = fs.Parse(args)

	summary, err := client.UsageSummary(ctx, *days)
	if err != nil {
		return err
	}

	fmt.Printf("%s to %s: %d calls (%d ok, %d errors)\n",
		summary.StartDate, summary.EndDate,
		summary.TotalCalls, summary.TotalSuccess, summary.TotalError)
	for _, key := range summary.ByAPIKey {
		fmt.Printf("  %-24s %8d calls  %8d ok  %8d errors\n",
			key.APIKeyName, key.TotalCalls, key.TotalSuccess, key.TotalError)
	}
	return nil
}

func cmdLookup(ctx context.Context, client *gtindata.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one GTIN required")
	}

	if len(args) == 1 {
		product, err := client.ProductByGTIN(ctx, args[0])
		if err != nil {
			return err
		}
		printProduct(product)
		return nil
	}

	batch, err := client.GTINBatch(ctx, args)
	if err != nil {
		return err
	}
	fmt.Printf("%d of %d found\n", batch.TotalFound, batch.TotalRequested)
	for _, result := range batch.Results {
		if !result.Found {
			fmt.Printf("  %s: not found\n", result.GTIN)
			continue
		}
		fmt.Printf("  %s: %s (%s)\n", result.GTIN, result.Product.ProductName, result.Product.Brand)
	}
	return nil
}

func printProduct(p gtindata.Product) {
	fmt.Printf("gtin:    %s\n", p.GTIN)
	fmt.Printf("name:    %s\n", p.ProductName)
	fmt.Printf("brand:   %s\n", p.Brand)
	fmt.Printf("ncm:     %s\n", p.NCMFormatted)
	if p.GrossWeight.Value > 0 {
		fmt.Printf("weight:  %s %s\n", strconv.FormatFloat(p.GrossWeight.Value, 'f', -1, 64), p.GrossWeight.Unit)
	}
}

func cmdBilling(ctx context.Context, client *gtindata.Client) error {
	sub, err := client.Subscription(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("plan:         %s (%s)\n", sub.Plan, sub.Status)
	fmt.Printf("price:        %.2f / %s\n", sub.Price, sub.BillingCycle)
	fmt.Printf("next billing: %s\n", sub.NextBillingDate)
	return nil
}
