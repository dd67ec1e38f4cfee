// Command client drives the auth API from a terminal: register, login, fetch
// the protected profile and manage the locally stored token.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/jwtdemo/auth-system/internal/client/apiclient"
	"github.com/jwtdemo/auth-system/internal/client/config"
	"github.com/jwtdemo/auth-system/internal/client/platform"
	"github.com/jwtdemo/auth-system/internal/client/session"
	"github.com/jwtdemo/auth-system/internal/client/tokenstore"
	"github.com/jwtdemo/auth-system/pkg/logger"
)

func main() {
	var sess *session.Session
	var closeStore func() error

	app := &cli.App{
		Name:  "jwtdemo",
		Usage: "JWT auth demo client",
		// Exit codes are applied in main, after the store is closed.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"JWTDEMO_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			l := logger.Init(logger.Options{Level: ctx.String("log-level"), Pretty: true, Output: os.Stderr, Service: "jwtdemo-client"})

			cfg, err := config.Load(ctx.Context)
			if err != nil {
				return err
			}
			p, err := platform.NewProbe(cfg.Capabilities()).Platform()
			if err != nil {
				return err
			}
			l.Debug().Str("platform", p.String()).Str("data_dir", cfg.DataDir).Msg("client starting")

			store, closeFn, err := tokenstore.Open(ctx.Context, p, cfg, logger.Component("tokenstore"))
			if err != nil {
				return err
			}
			closeStore = closeFn
			sess = session.New(apiclient.New(cfg, p), store, session.WithLogger(logger.Component("session")))
			return nil
		},
		After: func(ctx *cli.Context) error {
			if closeStore != nil {
				return closeStore()
			}
			return nil
		},
		Commands: []*cli.Command{
			credentialsCmd("register", "Create an account", func(c context.Context, email, password string) session.Status {
				return sess.Register(c, email, password)
			}),
			credentialsCmd("login", "Log in and store the session token", func(c context.Context, email, password string) session.Status {
				return sess.Login(c, email, password)
			}),
			statusCmd("profile", "Fetch the protected profile with the stored token", func(c context.Context) session.Status {
				return sess.Profile(c)
			}),
			statusCmd("logout", "Remove the stored token", func(c context.Context) session.Status {
				return sess.Logout(c)
			}),
			statusCmd("whoami", "Show who the stored token belongs to", func(c context.Context) session.Status {
				return sess.Whoami(c)
			}),
			statusCmd("clear", "Wipe all client-side storage", func(c context.Context) session.Status {
				return sess.Clear(c)
			}),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			fmt.Fprintln(os.Stderr, exit.Error())
			os.Exit(exit.ExitCode())
		}
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}

func credentialsCmd(name, usage string, run func(ctx context.Context, email, password string) session.Status) *cli.Command {
	var email, password string
	return &cli.Command{
		Name:  name,
		Usage: usage + " (password is prompted for unless --password is given)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Destination: &email,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "password",
				Aliases:     []string{"p"},
				Destination: &password,
			},
		},
		Action: func(ctx *cli.Context) error {
			if password == "" {
				var err error
				password, err = readPassword(os.Stdin, ctx.App.ErrWriter)
				if err != nil {
					return err
				}
			}
			return report(ctx.App.Writer, run(ctx.Context, email, password))
		},
	}
}

func statusCmd(name, usage string, run func(ctx context.Context) session.Status) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx *cli.Context) error {
			return report(ctx.App.Writer, run(ctx.Context))
		},
	}
}

// readPassword prompts without echo on a terminal and reads one line from
// piped input otherwise. Only the line ending is stripped.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		fmt.Fprint(prompt, "Enter password: ")
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return "", sc.Err()
	}
	return sc.Text(), nil
}

func report(w io.Writer, st session.Status) error {
	if st.Failed() {
		return cli.Exit(st.String(), 1)
	}
	_, err := fmt.Fprintln(w, st.String())
	return err
}
