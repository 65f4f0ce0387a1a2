package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/famledger/internal/flagx"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/server"
	"github.com/dmitrijs2005/famledger/internal/server/config"
	"github.com/dmitrijs2005/famledger/internal/session"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
)

// seams for tests
var (
	openBackend  = server.OpenBackend
	openKV       = kv.Open
	openDocStore = docstore.Open
	now          = time.Now
)

const Usage = `usage: famledger-cli <command> [flags]

commands:
  migrate   -owner UID [-yes]             copy local books to the remote store
  backup    -owner UID [-dir PATH]        export a snapshot to S3 or PATH
  token     -uid UID [-email E] [-ttl D]  mint an API access token
  generate  -owner UID -account ID [-year Y] [-month M]
                                          create the month's pending payments

Configuration flags (-c file, -m backend, -d dsn, ...) are shared with the server.
`

type App struct {
	config *config.Config
	reader *bufio.Reader
	out    io.Writer
	logger logging.Logger
}

// NewApp builds the tool. Prompts and results go to out, logs to logOut.
func NewApp(c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, logOut)
	if err != nil {
		return nil, err
	}
	return &App{
		config: c,
		reader: bufio.NewReader(in),
		out:    out,
		logger: logger.With("component", "cli"),
	}, nil
}

// Run executes command with its args.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "migrate":
		return a.Migrate(ctx, args)
	case "backup":
		return a.Backup(ctx, args)
	case "token":
		return a.Token(args)
	case "generate":
		return a.Generate(ctx, args)
	case "help", "-h", "-help", "--help":
		_, err := fmt.Fprint(a.out, Usage)
		return err
	}
	return fmt.Errorf("unknown command %q", command)
}

// parseCommandFlags parses the flags defined on fs and ignores the shared
// configuration flags around them.
func parseCommandFlags(fs *flag.FlagSet, args []string) error {
	var names []string
	fs.VisitAll(func(f *flag.Flag) {
		names = append(names, "-"+f.Name, "--"+f.Name)
	})
	fs.SetOutput(io.Discard)
	return fs.Parse(flagx.FilterArgs(args, names))
}

func (a *App) sessionOptions() session.Options {
	return session.Options{
		Prefix:     a.config.KeyPrefix,
		Passphrase: []byte(a.config.CredentialsPassphrase),
		Logger:     a.logger,
	}
}

// ensurePassphrase asks for the credentials passphrase on a terminal when
// none is configured. An empty answer keeps website passwords unsealed.
func (a *App) ensurePassphrase() error {
	if a.config.CredentialsPassphrase != "" || !isTerminal(stdinFd()) {
		return nil
	}
	pw, err := GetPassword("Credentials passphrase (empty for none)", a.out)
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	a.config.CredentialsPassphrase = string(pw)
	clear(pw)
	return nil
}

// openBooks opens and initializes ownerUID's books on the configured
// backend. The returned func closes the session and the storage.
func (a *App) openBooks(ctx context.Context, ownerUID string) (*session.Session, func() error, error) {
	if err := a.ensurePassphrase(); err != nil {
		return nil, nil, err
	}
	b, err := openBackend(ctx, a.config, a.logger)
	if err != nil {
		return nil, nil, err
	}
	s, err := b.Open(ctx, ownerUID, ownerUID)
	if err != nil {
		return nil, nil, errors.Join(err, b.Close())
	}
	closeAll := func() error {
		return errors.Join(s.Close(ctx), b.Close())
	}
	if err := s.Initialize(ctx); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to load books: %w", err), closeAll())
	}
	return s, closeAll, nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
