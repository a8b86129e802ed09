package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apie237/mern-chatapp/internal/client"
	pkgconfig "github.com/Apie237/mern-chatapp/pkg/config"
	"github.com/Apie237/mern-chatapp/pkg/httpclient"
)

// envDefaults supplies flag defaults from AUTHCTL_* variables.
type envDefaults struct {
	Server      string        `env:"SERVER" envDefault:"http://localhost:5001"`
	SessionFile string        `env:"SESSION_FILE"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

func loadEnvDefaults() envDefaults {
	d := envDefaults{}
	if err := pkgconfig.LoadWithPrefix(&d, "AUTHCTL_"); err != nil {
		return envDefaults{Server: "http://localhost:5001", Timeout: 30 * time.Second}
	}
	return d
}

// rootConfig holds the flags shared by every subcommand.
type rootConfig struct {
	server      string
	sessionFile string
	timeout     time.Duration
}

// NewRootCmd creates the root command for the authctl CLI.
func NewRootCmd() *cobra.Command {
	cfg := &rootConfig{}
	defaults := loadEnvDefaults()

	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Sign up, log in and manage a chat account",
		Long: `authctl talks to the chat auth service. A successful signup or login
stores the session cookie in a local file so later commands reuse it.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfg.server, "server", defaults.Server, "auth service base URL [AUTHCTL_SERVER]")
	cmd.PersistentFlags().StringVar(&cfg.sessionFile, "session-file", defaults.SessionFile, "session file path, default under the user config dir [AUTHCTL_SESSION_FILE]")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", defaults.Timeout, "overall request timeout [AUTHCTL_TIMEOUT]")

	cmd.AddCommand(newSignupCmd(cfg))
	cmd.AddCommand(newLoginCmd(cfg))
	cmd.AddCommand(newWhoamiCmd(cfg))
	cmd.AddCommand(newLogoutCmd(cfg))
	cmd.AddCommand(newUpdateProfileCmd(cfg))
	cmd.AddCommand(newGuardCmd(cfg))

	return cmd
}

// session bundles the client, its store and the file the cookie lives in.
type session struct {
	client *client.Client
	store  *client.Store
	file   string
}

// openSession builds a client for cfg.server and seeds it with the saved
// session cookie, if there is one.
func openSession(cfg *rootConfig) (*session, error) {
	path := cfg.sessionFile
	if path == "" {
		p, err := defaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.timeout
	c, err := client.New(cfg.server, httpCfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	token, err := loadSession(path)
	if err != nil {
		return nil, err
	}
	if token != "" {
		c.SetSessionToken(token)
	}

	return &session{client: c, store: client.NewStore(c), file: path}, nil
}

// save writes the jar's current session cookie back to disk, removing the
// file when the server cleared it.
func (s *session) save() error {
	return saveSession(s.file, s.client.SessionToken())
}

func commandContext(cmd *cobra.Command, cfg *rootConfig) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.timeout)
}
