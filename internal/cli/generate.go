package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"
)

// Generate creates the pending payments of one month from -owner's
// templates, charged to -account. The current month is the default.
func (a *App) Generate(ctx context.Context, args []string) (err error) {
	today := now()
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	owner := fs.String("owner", "", "uid whose books are used")
	account := fs.String("account", "", "bank account charged by the payments")
	year := fs.Int("year", today.Year(), "year")
	month := fs.Int("month", int(today.Month()), "month, 1..12")
	if err := parseCommandFlags(fs, args); err != nil {
		return err
	}
	if *owner == "" || *account == "" {
		return errors.New("generate: -owner and -account are required")
	}

	s, closeBooks, err := a.openBooks(ctx, *owner)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeBooks()) }()

	svc, err := s.Services()
	if err != nil {
		return err
	}
	res := svc.Payments.GenerateFromTemplates(ctx, *year, time.Month(*month), *account)
	fmt.Fprintf(a.out, "Created %d payments, skipped %d.\n", res.Data.Created, res.Data.Skipped)
	if !res.Success {
		return res.Err
	}
	return nil
}
