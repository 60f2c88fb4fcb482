package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"slotbook/internal/export"
	"slotbook/internal/models"
	"slotbook/internal/registry"
)

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "admin email")
	password := fs.String("password", os.Getenv("SLOTBOOK_ADMIN_PASSWORD"), "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password (or SLOTBOOK_ADMIN_PASSWORD)")
	}
	if err := a.session.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Email())
	return nil
}

func filterFlags(fs *flag.FlagSet, f *registry.Filter) {
	fs.StringVar(&f.Query, "q", "", "match token, name, phone or address")
	fs.StringVar(&f.PaymentMode, "mode", registry.FilterAll, "all, cash or online")
	fs.StringVar(&f.Package, "package", registry.FilterAll, "all or a package price")
	fs.StringVar(&f.PaidStatus, "paid", registry.FilterAll, "all, paid or pending")
}

// view refreshes the registry and projects it through the filter flags.
func (a *app) view(ctx context.Context, name string, args []string, extra func(*flag.FlagSet)) ([]models.Booking, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var f registry.Filter
	filterFlags(fs, &f)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := a.registry.Refresh(ctx, a.session); err != nil {
		return nil, err
	}
	return a.registry.View(f), nil
}

func (a *app) list(ctx context.Context, args []string) error {
	view, err := a.view(ctx, "list", args, nil)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOKEN\tNAME\tPHONE\tPACKAGE\tMODE\tPAID\tCREATED")
	for _, b := range view {
		paid := "pending"
		if b.IsPaid {
			paid = "paid"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Token, b.Name, b.Phone, b.PackagePrice, b.PaymentMode, paid,
			b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d booking(s)\n", len(view), len(a.registry.Records()))
	return nil
}

func (a *app) toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("toggle requires a booking id")
	}
	updated, err := a.registry.TogglePaid(ctx, a.session, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Booking %s is now paid=%t\n", updated.Token, updated.IsPaid)
	return nil
}

func (a *app) deleteOne(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("delete requires a booking id")
	}
	if err := a.registry.DeleteOne(ctx, a.session, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Booking deleted")
	return nil
}

func (a *app) deleteAll(ctx context.Context) error {
	if err := a.registry.Refresh(ctx, a.session); err != nil {
		return err
	}
	n, err := a.registry.DeleteAll(ctx, a.session, a.confirmer())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d booking(s)\n", n)
	return nil
}

func (a *app) deletePackage(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("delete-package requires a package price")
	}
	if err := a.registry.Refresh(ctx, a.session); err != nil {
		return err
	}
	n, err := a.registry.DeleteByPackage(ctx, a.session, args[0], a.confirmer())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d booking(s) in package %s\n", n, args[0])
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	var format, dir string
	view, err := a.view(ctx, "export", args, func(fs *flag.FlagSet) {
		fs.StringVar(&format, "format", string(export.KindCSV), "csv, pdf, xlsx or json")
		fs.StringVar(&dir, "dir", a.cfg.Exports.Path, "output directory")
	})
	if err != nil {
		return err
	}
	kind, err := export.ParseKind(format)
	if err != nil {
		return err
	}
	path, err := export.Save(dir, kind, view, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d booking(s) to %s\n", len(view), path)
	return nil
}

func (a *app) packages(ctx context.Context) error {
	if err := a.registry.Refresh(ctx, a.session); err != nil {
		return err
	}
	configured := make([]string, 0, len(a.cfg.Packages))
	if pkgs, err := a.client.ListPackages(ctx); err == nil {
		for _, p := range pkgs {
			configured = append(configured, p.Price)
		}
	} else {
		a.logger.Warn().Err(err).Msg("falling back to configured packages")
		for _, p := range a.cfg.Packages {
			configured = append(configured, p.Price)
		}
	}
	for _, p := range a.registry.PackageOptions(configured) {
		fmt.Fprintln(a.out, p)
	}
	return nil
}

func (a *app) students(ctx context.Context) error {
	token, err := a.session.Token()
	if err != nil {
		return err
	}
	students, err := a.client.ListStudents(ctx, token)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tWHATSAPP\tQUALIFICATION\tIN IT")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.StudentName, s.WhatsappNumber, s.HighestQualification, s.WorkingInIT)
	}
	return tw.Flush()
}

// confirmer asks on stdin; only "y" or "yes" approves.
func (a *app) confirmer() registry.Confirmer {
	reader := bufio.NewReader(a.in)
	return registry.ConfirmFunc(func(_ context.Context, p registry.Prompt) (bool, error) {
		fmt.Fprintf(a.out, "%s [y/N]: ", p)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}
