package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ppe-monitor-go/internal/services/notification"
)

var mailTimeout time.Duration

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mail diagnostics",
}

var mailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a plain test email with the configured SMTP settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := notification.NewSMTPMailer(cfg).SendTest(ctx); err != nil {
			return err
		}
		fmt.Printf("Test email sent to %s\n", cfg.ReceiverEmail)
		return nil
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show which mail settings were loaded",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		fmt.Printf("SENDER_EMAIL:   %s\n", orUnset(cfg.SenderEmail))
		fmt.Printf("EMAIL_PASSWORD: %s\n", maskSecret(cfg.EmailPassword))
		fmt.Printf("RECEIVER_EMAIL: %s\n", orUnset(cfg.ReceiverEmail))
		fmt.Printf("SMTP server:    %s:%d\n", cfg.SMTPHost, cfg.SMTPPort)
	},
}

func init() {
	mailTestCmd.Flags().DurationVar(&mailTimeout, "timeout", 30*time.Second, "Give up after this long")
	mailCmd.AddCommand(mailTestCmd)
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func maskSecret(v string) string {
	if v == "" {
		return "(not set)"
	}
	return fmt.Sprintf("set (%d characters)", len(v))
}
