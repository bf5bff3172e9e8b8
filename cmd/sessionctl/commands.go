package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"session-portal/internal/apperr"
	"session-portal/internal/domain"
	"session-portal/internal/service"
	"session-portal/internal/validation"
)

// readPassword is swapped out in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// openUsers returns the user service backing the commands and a closer.
type openUsers func(ctx context.Context) (service.UserService, func() error, error)

func newRootCmd(open openUsers) *cobra.Command {
	root := &cobra.Command{
		Use:           "sessionctl",
		Short:         "Administrative tasks for the session portal user store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	userCmd.AddCommand(newUserAddCmd(open), newUserCheckCmd(open))
	root.AddCommand(userCmd)

	return root
}

func newUserAddCmd(open openUsers) *cobra.Command {
	var in validation.SignupInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				pw, err := promptPassword(cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				in.Password = pw
			}
			if err := validation.New().Signup(&in); err != nil {
				return describe(err)
			}

			users, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := users.Register(cmd.Context(), in.Username, in.Email, in.Password)
			if err != nil {
				if errors.Is(err, service.ErrUserAlreadyExists) {
					return fmt.Errorf("user with that email or username already exists")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Username, "username", "", "username, at least 4 characters")
	cmd.Flags().StringVar(&in.Password, "password", "", "password; prompted when omitted")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newUserCheckCmd(open openUsers) *cobra.Command {
	var credential string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify a credential and password against the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := promptPassword(cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}

			users, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := users.Verify(cmd.Context(), domain.Credential{Identifier: credential, Password: pw})
			if err != nil {
				if errors.Is(err, service.ErrInvalidCredentials) {
					return errors.New(service.MsgInvalidCredentials)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: user %d (%s <%s>)\n", user.ID, user.Username, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&credential, "credential", "", "email or username")
	_ = cmd.MarkFlagRequired("credential")

	return cmd
}

func promptPassword(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	pw, err := readPassword()
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// describe flattens a validation error into a single line.
func describe(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && len(appErr.Messages) > 0 {
		return errors.New(strings.Join(appErr.Messages, " "))
	}
	return err
}
