package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"slotbook/internal/auth"
	"slotbook/internal/client"
	"slotbook/internal/config"
	"slotbook/internal/logging"
	"slotbook/internal/registry"
	"slotbook/internal/repository"
	"slotbook/internal/worker"

	"github.com/rs/zerolog"
)

const usage = `usage: admin [-config path] <command> [args]

commands:
  login -email E [-password P]   sign in and store the token
  logout                         drop the stored token
  list [filters]                 print bookings
  toggle <id>                    flip the paid flag of a cash booking
  delete <id>                    delete one booking
  delete-all                     delete every booking (asks twice)
  delete-package <price>         delete bookings of one package (asks twice)
  export -format csv|pdf|xlsx|json [filters]
  packages                       list package prices seen in config and bookings
  students                       print registered students

filters: -q text  -mode all|cash|online  -package all|<price>  -paid all|paid|pending
`

type app struct {
	cfg      *config.Config
	client   *client.Client
	session  *auth.Session
	registry *registry.Registry
	logger   *zerolog.Logger
	in       io.Reader
	out      io.Writer
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	configPath := fs.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "config file")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Logging.Output = "stderr"
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	l := logger.With().Str("component", "admin-cli").Logger()

	c := client.New(cfg.Client.BaseURL, cfg.Client.Timeout)
	if cfg.Client.MaxRetries > 0 {
		c.WithRetry(worker.RetryPolicy{MaxRetries: cfg.Client.MaxRetries})
	}
	if cfg.Redis.Address != "" {
		c.UseRedisCache(repository.NewRedisClient(cfg.Redis), cfg.Client.CacheTTL)
	}

	sess, err := auth.NewSession(auth.NewFileStore(cfg.Client.TokenPath), c, &l)
	if err != nil {
		return err
	}

	a := &app{
		cfg:      cfg,
		client:   c,
		session:  sess,
		registry: registry.New(c, &l),
		logger:   &l,
		in:       os.Stdin,
		out:      os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.session.Logout()
	case "list":
		return a.list(ctx, args)
	case "toggle":
		return a.toggle(ctx, args)
	case "delete":
		return a.deleteOne(ctx, args)
	case "delete-all":
		return a.deleteAll(ctx)
	case "delete-package":
		return a.deletePackage(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "packages":
		return a.packages(ctx)
	case "students":
		return a.students(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
