// Command posture assesses a company's compliance posture against a
// fixed control catalog using retrieved evidence and LLM
// classification.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/posture-cli/internal/adapters/driven/classifier/anthropic"
	configfile "github.com/custodia-labs/posture-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/posture-cli/internal/adapters/driven/retrieval"
	"github.com/custodia-labs/posture-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/posture-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
	"github.com/custodia-labs/posture-cli/internal/core/services"
	"github.com/custodia-labs/posture-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialise config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("initialise storage: %w", err)
	}
	defer store.Close()

	retriever := buildRetriever(configStore)
	classifier := buildClassifier(configStore)
	if classifier != nil {
		defer classifier.Close()
	}

	assessmentService := services.NewAssessmentService(store)

	// The orchestrator accepts nil collaborators; it reports a
	// configuration error at run time, so read-only commands work
	// without any services configured.
	var orchRetriever driven.EvidenceRetriever
	if retriever != nil {
		orchRetriever = retriever
	}
	var orchClassifier driven.EvidenceClassifier
	if classifier != nil {
		orchClassifier = classifier
	}
	orchestrator := services.NewRunOrchestrator(store, orchRetriever, orchClassifier, 0)

	cli.SetVersion(version)
	cli.SetServices(assessmentService, orchestrator, configStore)
	return cli.Execute()
}

// configValue reads a config key with an environment-variable fallback.
func configValue(config driven.ConfigStore, key, envVar string) string {
	if v := config.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envVar)
}

// buildRetriever constructs the evidence retrieval client from config.
// Returns nil when no retrieval service is configured.
func buildRetriever(config driven.ConfigStore) *retrieval.Client {
	baseURL := configValue(config, "retrieval.base_url", "POSTURE_RETRIEVAL_URL")
	if baseURL == "" {
		return nil
	}

	client, err := retrieval.NewClient(retrieval.Config{
		BaseURL: baseURL,
		APIKey:  configValue(config, "retrieval.api_key", "POSTURE_RETRIEVAL_API_KEY"),
	})
	if err != nil {
		logger.Warn("Retrieval client unavailable: %v", err)
		return nil
	}
	return client
}

// buildClassifier constructs the Anthropic classifier from config.
// Returns nil when no API key is configured.
func buildClassifier(config driven.ConfigStore) *anthropic.Classifier {
	apiKey := configValue(config, "anthropic.api_key", "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil
	}

	classifier, err := anthropic.NewClassifier(anthropic.Config{
		APIKey: apiKey,
		Model:  config.GetString("anthropic.model"),
	})
	if err != nil {
		logger.Warn("Classifier unavailable: %v", err)
		return nil
	}

	// User-editable classification prompt under ~/.posture/prompts/.
	if prompts, err := configfile.NewPromptStore(""); err == nil {
		classifier.SetPromptStore(prompts)
	}
	return classifier
}
