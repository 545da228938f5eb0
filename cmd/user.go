package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfeditor/internal/auth"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage web application accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create [username]",
	Short: "Create an account, prompting for the password",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserCreate,
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var username string
	if len(args) == 1 {
		username = args[0]
	} else {
		username, err = (&promptui.Prompt{Label: "Username", Validate: required}).Run()
		if err != nil {
			return fmt.Errorf("username: %w", err)
		}
	}

	password, err := (&promptui.Prompt{Label: "Password", Mask: '*', Validate: required}).Run()
	if err != nil {
		return fmt.Errorf("password: %w", err)
	}
	confirm, err := (&promptui.Prompt{Label: "Confirm password", Mask: '*'}).Run()
	if err != nil {
		return fmt.Errorf("confirmation: %w", err)
	}
	if password != confirm {
		return errors.New("passwords don't match")
	}

	u, err := auth.NewStore(database).Register(context.Background(), username, password)
	if errors.Is(err, auth.ErrUserExists) {
		return fmt.Errorf("user %q already exists", username)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Created user %s (%s)\n", u.Username, u.ID)
	return nil
}

func required(s string) error {
	if s == "" {
		return errors.New("required")
	}
	return nil
}
