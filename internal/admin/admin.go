// Package admin implements the operator command line: schema migration,
// account creation and record listing against the server database.
package admin

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
	"github.com/dmitrijs2005/gradekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gradekeeper/internal/server/services"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"
)

var ErrPasswordsDiffer = errors.New("passwords do not match")

type App struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	auth    *services.AuthService
	records *services.RecordService
	logger  logging.Logger
	syncLog func() error

	in  *bufio.Reader
	out io.Writer
}

// NewApp opens the database named by c. Prompts read from in and all
// output goes to out; logs go to logOut.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {

	logger, syncLog, err := logging.New(c.LogFormat, logOut)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	hasher, err := passwords.NewHasher(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, dialect, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewSQLRepositoryManager(dialect)

	// registration never touches sessions
	sm := sessions.NewManager(sessions.NewMemoryStore(), c.SessionTTL)

	return &App{
		db:      db,
		rm:      rm,
		auth:    services.NewAuthService(db, rm, hasher, sm, logger),
		records: services.NewRecordService(db, rm, logger),
		logger:  logger.With("module", "admin"),
		syncLog: syncLog,
		in:      bufio.NewReader(in),
		out:     out,
	}, nil
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	err := a.db.Close()
	if syncErr := a.syncLog(); err == nil {
		err = syncErr
	}
	return err
}

// Run executes the command in args, or starts the interactive prompt when
// args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.Root(ctx)
	}
	return a.Dispatch(ctx, args[0], args[1:])
}

func (a *App) Dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, "Available commands: migrate, adduser, records <username>, exit")
		return nil
	case "migrate":
		return a.Migrate(ctx)
	case "adduser":
		return a.AddUser(ctx)
	case "records":
		if len(args) == 0 {
			return errors.New("usage: records <username>")
		}
		return a.Records(ctx, args[0])
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// Root runs commands read line by line until exit or end of input.
func (a *App) Root(ctx context.Context) error {

	fmt.Fprintln(a.out, "Welcome to GradeKeeper admin (type 'help' for commands)")

	for {
		fmt.Fprint(a.out, "gk> ")
		line, err := a.in.ReadString('\n')
		parts := strings.Fields(line)

		if len(parts) > 0 {
			switch parts[0] {
			case "exit", "quit":
				fmt.Fprintln(a.out, "Bye!")
				return nil
			default:
				if cmdErr := a.Dispatch(ctx, parts[0], parts[1:]); cmdErr != nil {
					fmt.Fprintln(a.out, "Error:", cmdErr)
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (a *App) Migrate(ctx context.Context) error {
	if err := a.records.InitDatabase(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Database is up to date")
	a.logger.Info(ctx, "migrations applied")
	return nil
}

// AddUser prompts for the account fields and registers the user with the
// same rules as the public registration endpoint.
func (a *App) AddUser(ctx context.Context) error {

	req := services.RegisterRequest{}
	prompts := []struct {
		text string
		dst  *string
	}{
		{"Full name", &req.FullName},
		{"Username", &req.UserName},
		{"Email", &req.Email},
		{"Role (student|faculty)", &req.Role},
	}
	for _, p := range prompts {
		v, err := GetSimpleText(a.in, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer wipe(pw)

	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer wipe(confirm)

	if string(pw) != string(confirm) {
		return ErrPasswordsDiffer
	}
	req.Password = string(pw)

	if err := a.auth.Register(ctx, req); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return fmt.Errorf("user %q or its email already exists", req.UserName)
		}
		return err
	}

	fmt.Fprintf(a.out, "User %s created\n", req.UserName)
	a.logger.Info(ctx, "user created", "username", req.UserName, "role", req.Role)
	return nil
}

// Records prints the academic records stored for userName.
func (a *App) Records(ctx context.Context, userName string) error {
	list, err := a.rm.Academics(a.db).ListByUsername(ctx, userName)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No records")
		return nil
	}
	fmt.Fprintf(a.out, "%-8s %-24s %6s %10s\n", "SEMESTER", "SUBJECT", "MARKS", "ATTENDANCE")
	for _, r := range list {
		fmt.Fprintf(a.out, "%-8d %-24s %6d %10d\n", r.Semester, r.Subject, r.Marks, r.Attendance)
	}
	return nil
}
