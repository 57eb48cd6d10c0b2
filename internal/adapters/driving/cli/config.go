package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Config keys recognised by the composition root.
const (
	keyRetrievalBaseURL = "retrieval.base_url"
	keyRetrievalAPIKey  = "retrieval.api_key"
	keyAnthropicAPIKey  = "anthropic.api_key"
	keyAnthropicModel   = "anthropic.model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change Posture configuration. Values are stored in
~/.posture/config.toml.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [retrieval|anthropic]",
	Short: "Set a service API key",
	Long: `Prompts for a service API key without echoing it to the terminal.

Services:
  retrieval - the evidence retrieval service
  anthropic - the Anthropic classification API`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Base URL: %s\n", valueOrUnset(configStore.GetString(keyRetrievalBaseURL)))
	cmd.Printf("  API key:  %s\n", maskedOrUnset(configStore.GetString(keyRetrievalAPIKey)))
	cmd.Println()

	cmd.Println("[Anthropic]")
	cmd.Printf("  Model:   %s\n", valueOrUnset(configStore.GetString(keyAnthropicModel)))
	cmd.Printf("  API key: %s\n", maskedOrUnset(configStore.GetString(keyAnthropicAPIKey)))
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], args[1]
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	var key string
	switch args[0] {
	case "retrieval":
		key = keyRetrievalAPIKey
	case "anthropic":
		key = keyAnthropicAPIKey
	default:
		return fmt.Errorf("unknown service %q: expected retrieval or anthropic", args[0])
	}

	cmd.Printf("Enter %s API key: ", args[0])
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("no key entered")
	}

	if err := configStore.Set(key, apiKey); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	cmd.Printf("Stored %s key (%s)\n", args[0], maskAPIKey(apiKey))
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func maskedOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return maskAPIKey(v)
}
