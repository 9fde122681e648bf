package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/librarium/librarium/config"
	"github.com/librarium/librarium/core"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <name> <email>",
	Short: "Create an admin account, prompting for the password",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreateAdmin,
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer closeStore()

	password, err := promptPassword()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := store.InsertUser(cmd.Context(), core.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(args[0]),
		Email:        strings.ToLower(strings.TrimSpace(args[1])),
		PasswordHash: string(hash),
		Role:         core.RoleAdmin,
	})
	if err != nil {
		return err
	}

	cmd.Printf("admin account %s created (%s)\n", user.Email, user.ID)

	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")

	confirmation, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading password confirmation: %w", err)
	}

	if string(password) != string(confirmation) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(password), nil
}
