package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"slotbook/internal/client"
	"slotbook/internal/config"
	"slotbook/internal/gateway"
	"slotbook/internal/logging"
	"slotbook/internal/models"
	"slotbook/internal/orchestrator"
	"slotbook/internal/repository"
	"slotbook/internal/siteconfig"
	"slotbook/internal/validation"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "config file")
	flag.Parse()

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
	l := logger.With().Str("component", "booking-terminal").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(cfg.Client.BaseURL, cfg.Client.Timeout)
	if cfg.Redis.Address != "" {
		c.UseRedisCache(repository.NewRedisClient(cfg.Redis), cfg.Client.CacheTTL)
	}

	cache := siteconfig.New(c, cfg.Booking.DefaultPackage, cfg.Packages, &l)
	if err := cache.Refresh(ctx); err != nil {
		l.Warn().Err(err).Msg("using configured packages")
	}

	in := bufio.NewReader(os.Stdin)
	widget := &consoleWidget{in: in, out: os.Stdout}
	if cfg.Gateway.Mode == "fake" {
		widget.secret = cfg.Gateway.KeySecret
		if widget.secret == "" {
			widget.secret = gateway.FakeSecret
		}
	}

	o := orchestrator.New(c, widget, cache,
		validation.New(validation.Policy{RequireCashProof: cfg.Booking.RequireCashProof}),
		orchestrator.Options{GatewayKey: cfg.Gateway.KeyID, ThemeColor: cfg.Gateway.ThemeColor},
		&l)

	t := &terminal{in: in, out: os.Stdout, cache: cache, orch: o, logger: &l}
	return t.loop(ctx)
}

type terminal struct {
	in     *bufio.Reader
	out    io.Writer
	cache  *siteconfig.Cache
	orch   *orchestrator.Orchestrator
	logger *zerolog.Logger
}

func (t *terminal) loop(ctx context.Context) error {
	t.banner()
	var carry *validation.Form
	for {
		form, err := t.orch.NewBooking()
		if err != nil {
			return err
		}
		if carry != nil {
			form, carry = *carry, nil
		}
		form, err = t.fill(form)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		for {
			res, err := t.orch.Submit(ctx, form)
			if err == nil {
				t.confirmed(res)
				break
			}
			t.explain(err)
			var vfail *orchestrator.VerificationError
			if errors.As(err, &vfail) {
				if _, ackErr := t.orch.Acknowledge(); ackErr == nil {
					kept := form
					carry = &kept
				}
				break
			}
			if !orchestrator.IsRetryable(err) || !t.yes("Try again with the same details?") {
				break
			}
		}

		if ctx.Err() != nil || !t.yes("Make another booking?") {
			return nil
		}
		if err := t.cache.RefreshIfStale(ctx, models.SiteConfigCacheTTL*time.Second); err != nil {
			t.logger.Warn().Err(err).Msg("site config refresh failed")
		}
	}
}

func (t *terminal) banner() {
	cfg := t.cache.Config()
	fmt.Fprintf(t.out, "== %s ==\n", cfg.Workshop.Title)
	if cfg.Workshop.Subtitle != "" {
		fmt.Fprintln(t.out, cfg.Workshop.Subtitle)
	}
	if cfg.BannerURL != "" {
		fmt.Fprintf(t.out, "Banner: %s\n", cfg.BannerURL)
	}
	fmt.Fprintln(t.out)
}

func (t *terminal) fill(form validation.Form) (validation.Form, error) {
	var err error
	if form.Name, err = t.prompt("Name", form.Name); err != nil {
		return form, err
	}
	if form.Phone, err = t.prompt("Phone (10 digits)", form.Phone); err != nil {
		return form, err
	}
	if form.Address, err = t.prompt("Address", form.Address); err != nil {
		return form, err
	}

	fmt.Fprintln(t.out, "Packages:")
	for _, p := range t.cache.Packages() {
		line := fmt.Sprintf("  %s  %s", p.Price, p.Name)
		if bd, qerr := t.orch.Quote(p.Price); qerr == nil {
			line += fmt.Sprintf(" (%d + %d GST = %d)", bd.BaseAmount, bd.GSTAmount, bd.TotalAmount)
		}
		fmt.Fprintln(t.out, line)
	}
	if form.PackagePrice, err = t.prompt("Package price", form.PackagePrice); err != nil {
		return form, err
	}
	if form.PaymentMode, err = t.prompt("Payment mode (cash/online)", form.PaymentMode); err != nil {
		return form, err
	}

	if form.PaymentMode == models.PaymentModeCash {
		path, err := t.prompt("Payment screenshot path (optional)", "")
		if err != nil {
			return form, err
		}
		if path != "" {
			data, rerr := os.ReadFile(path)
			if rerr != nil {
				fmt.Fprintf(t.out, "Could not read %s: %v\n", path, rerr)
			} else {
				form.Screenshot = &models.Upload{FileName: filepath.Base(path), Data: data}
			}
		}
	}
	return form, nil
}

func (t *terminal) confirmed(res *orchestrator.Result) {
	b := res.Booking
	fmt.Fprintln(t.out, "\nBooking confirmed!")
	fmt.Fprintf(t.out, "  Token:   %s\n", res.Token)
	fmt.Fprintf(t.out, "  Name:    %s\n", b.Name)
	fmt.Fprintf(t.out, "  Package: %s\n", b.PackagePrice)
	if res.Order != nil {
		fmt.Fprintf(t.out, "  Paid:    %d (incl. %d GST)\n", res.Order.TotalAmount, res.Order.GSTAmount)
	} else {
		fmt.Fprintf(t.out, "  Due:     %d in cash\n", res.DisplayTotal)
	}
	fmt.Fprintln(t.out)
}

func (t *terminal) explain(err error) {
	var verr *validation.ValidationError
	var gerr *orchestrator.GatewayError
	var vfail *orchestrator.VerificationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			fmt.Fprintf(t.out, "  %s: %s\n", f.Field, f.Message)
		}
	case errors.As(err, &vfail):
		fmt.Fprintln(t.out, "Payment could not be verified. If you were charged, contact support with:")
		fmt.Fprintf(t.out, "  order %s, payment %s\n", vfail.OrderID, vfail.PaymentID)
	case errors.As(err, &gerr):
		fmt.Fprintf(t.out, "%v. No booking was made.\n", gerr)
	case client.IsRetryable(err):
		fmt.Fprintln(t.out, "Could not reach the booking service. Check your connection.")
	default:
		fmt.Fprintf(t.out, "Booking failed: %v\n", err)
	}
}

func (t *terminal) prompt(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(t.out, "%s: ", label)
	}
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return current, err
	}
	if v := strings.TrimSpace(line); v != "" {
		return v, nil
	}
	return current, nil
}

func (t *terminal) yes(question string) bool {
	answer, err := t.prompt(question+" [y/N]", "")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
