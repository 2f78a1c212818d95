package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-pilot/internal/contacts"
	"github.com/jonathan/recruit-pilot/internal/observability"
)

var (
	contactsCompany string
	contactsTitle   string
	contactsMax     int
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Look up recruiting contacts for a company",
	Long: `Search the people-search provider for recruiting contacts at a company,
ranked by how well their title matches the given job title.`,
	RunE: runContacts,
}

func init() {
	contactsCmd.Flags().StringVar(&contactsCompany, "company", "", "Company name (required)")
	contactsCmd.Flags().StringVar(&contactsTitle, "title", "", "Job title to match against (required)")
	contactsCmd.Flags().IntVar(&contactsMax, "max", 1, "Maximum contacts to return")
	_ = contactsCmd.MarkFlagRequired("company")
	_ = contactsCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(contactsCmd)
}

func runContacts(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ApolloAPIKey == "" {
		return fmt.Errorf("APOLLO_API_KEY environment variable is required")
	}

	client := contacts.NewSearchClient(cfg.ApolloAPIKey)
	printer := observability.NewPrinter(os.Stdout)
	ctx := context.Background()

	if contactsMax > 1 {
		found := client.FindContacts(ctx, contactsCompany, contactsTitle, contactsMax)
		if len(found) == 0 {
			fmt.Printf("No contacts with unlocked emails found at %q.\n", contactsCompany)
			return nil
		}
		for i := range found {
			printer.PrintContact(&found[i])
		}
		return nil
	}

	contact, err := client.FindContact(ctx, contactsCompany, contactsTitle)
	if err != nil {
		return fmt.Errorf("contact lookup failed: %w", err)
	}
	if contact == nil {
		fmt.Printf("No recruiting contact found at %q.\n", contactsCompany)
		return nil
	}
	printer.PrintContact(contact)
	return nil
}
