package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Apie237/mern-chatapp/internal/client"
)

// errNotLoggedIn is returned by commands that need a session when none is
// held.
var errNotLoggedIn = errors.New("not logged in")

type signupConfig struct {
	fullName string
	email    string
	password string
	file     string
	url      string
}

func newSignupCmd(root *rootConfig) *cobra.Command {
	cfg := &signupConfig{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSignup(cmd, root, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.fullName, "name", "", "full name")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&cfg.file, "picture-file", "", "profile picture to upload")
	cmd.Flags().StringVar(&cfg.url, "picture-url", "", "profile picture URL")

	return cmd
}

func runSignup(cmd *cobra.Command, root *rootConfig, cfg *signupConfig) error {
	pic, err := imageSource(cfg.file, cfg.url)
	if err != nil {
		return err
	}
	pw := cfg.password
	if pw == "" {
		if pw, err = promptPassword(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	s, err := openSession(root)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, root)
	defer cancel()

	if err := s.store.Signup(ctx, client.SignupRequest{
		FullName:   cfg.fullName,
		Email:      cfg.email,
		Password:   pw,
		ProfilePic: pic,
	}); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	return printIdentity(cmd, s.store.Snapshot())
}

type loginConfig struct {
	email    string
	password string
}

func newLoginCmd(root *rootConfig) *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, root, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "email address")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password (prompted when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, root *rootConfig, cfg *loginConfig) error {
	pw := cfg.password
	if pw == "" {
		var err error
		if pw, err = promptPassword(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	s, err := openSession(root)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, root)
	defer cancel()

	if err := s.store.Login(ctx, cfg.email, pw); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	return printIdentity(cmd, s.store.Snapshot())
}

func newWhoamiCmd(root *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(root)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, root)
			defer cancel()

			s.store.CheckAuth(ctx)
			return printIdentity(cmd, s.store.Snapshot())
		},
	}
}

func newLogoutCmd(root *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(root)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, root)
			defer cancel()

			logoutErr := s.store.Logout(ctx)
			// The local session is dropped even if the server call failed.
			if err := saveSession(s.file, ""); err != nil {
				return errors.Join(logoutErr, err)
			}
			if logoutErr != nil {
				return logoutErr
			}
			cmd.Println("Logged out successfully")
			return nil
		},
	}
}

type updateProfileConfig struct {
	file string
	url  string
}

func newUpdateProfileCmd(root *rootConfig) *cobra.Command {
	cfg := &updateProfileConfig{}

	cmd := &cobra.Command{
		Use:   "update-profile",
		Short: "Replace the profile picture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdateProfile(cmd, root, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "image file to upload")
	cmd.Flags().StringVar(&cfg.url, "url", "", "image URL")

	return cmd
}

func runUpdateProfile(cmd *cobra.Command, root *rootConfig, cfg *updateProfileConfig) error {
	pic, err := imageSource(cfg.file, cfg.url)
	if err != nil {
		return err
	}

	s, err := openSession(root)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, root)
	defer cancel()

	s.store.CheckAuth(ctx)
	if s.store.Snapshot().Identity == nil {
		return errNotLoggedIn
	}
	if err := s.store.UpdateProfile(ctx, pic); err != nil {
		return err
	}
	return printIdentity(cmd, s.store.Snapshot())
}

func newGuardCmd(root *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "guard <path>",
		Short: "Show how a client route resolves for the saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(root)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, root)
			defer cancel()

			s.store.CheckAuth(ctx)
			d := client.Guard(args[0], s.store.Snapshot())
			if d.Action == client.ActionRedirect {
				cmd.Printf("%s %s -> %s\n", args[0], d.Action, d.RedirectTo)
				return nil
			}
			cmd.Printf("%s %s\n", args[0], d.Action)
			return nil
		},
	}
}

func printIdentity(cmd *cobra.Command, st client.State) error {
	if st.Identity == nil {
		return errNotLoggedIn
	}
	out, err := json.MarshalIndent(st.Identity, "", "  ")
	if err != nil {
		return fmt.Errorf("format identity: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
