package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ppe-monitor-go/internal/services/credentials"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage console and login credentials",
}

var usersSetCmd = &cobra.Command{
	Use:   "set <username>",
	Short: "Add a user or replace their password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := credentials.NewStore(cfg.CredentialsFile)

		in := bufio.NewReader(os.Stdin)
		password, err := readPassword(in, "New password: ")
		if err != nil {
			return err
		}
		if password == "" {
			return credentials.ErrEmptyFields
		}
		confirm, err := readPassword(in, "Confirm password: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return errors.New("passwords do not match")
		}

		if err := store.SetPassword(args[0], password); err != nil {
			return err
		}
		fmt.Printf("Password set for %s in %s\n", args[0], store.Path())
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known usernames",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := credentials.NewStore(cfg.CredentialsFile)
		for _, name := range store.Usernames() {
			fmt.Println(name)
		}
	},
}

func init() {
	usersCmd.AddCommand(usersSetCmd)
	usersCmd.AddCommand(usersListCmd)
}
