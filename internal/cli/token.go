package cli

import (
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/server/auth"
)

// Token prints a bearer token for -uid signed with the configured secret.
func (a *App) Token(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	uid := fs.String("uid", "", "principal uid")
	email := fs.String("email", "", "principal e-mail")
	ttl := fs.Duration("ttl", a.config.AccessTokenValidityDuration, "token validity")
	if err := parseCommandFlags(fs, args); err != nil {
		return err
	}
	if *uid == "" {
		return errors.New("token: -uid is required")
	}
	if *ttl <= 0 {
		return errors.New("token: -ttl must be positive")
	}

	token, err := auth.GenerateToken(auth.Principal{UserID: *uid, Email: *email}, []byte(a.config.SecretKey), *ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	_, err = fmt.Fprintln(a.out, token)
	return err
}
