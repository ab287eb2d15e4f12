package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	draftText string
	draftURL  string
	videoURI  string
	draftFile string

	recipeName string
	bucketName string
	projectID  string
	location   string

	diagramMode string
	autoApprove bool
	debugMode   bool

	draftToRecipePromptPath    string
	standardizePromptPath      string
	revisePromptPath           string
	generateGraphPromptPath    string
	improveGraphPromptPath     string
	interactiveGraphPromptPath string
	settingsPath               string
)

var rootCmd = &cobra.Command{
	Use:   "recipe2graph [draft-file]",
	Short: "Turn recipe drafts into process diagrams using AI",
	Long: `Standardizes a raw recipe draft (text, web page, or cooking video) with AI
agents, lets you review and revise the result, then generates a process
diagram and stores everything in Google Cloud Storage.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			draftFile = args[0]
		}

		if projectID == "" {
			projectID = os.Getenv("PROJECT_ID")
		}
		if projectID == "" {
			log.Fatal("Google Cloud project required: use --project flag or PROJECT_ID environment variable")
		}
		if recipeName == "" {
			log.Fatal("Recipe name required: use --name flag")
		}
		if bucketName == "" {
			log.Fatal("Bucket required: use --bucket flag")
		}

		if debugMode {
			SetDebugMode(true)
		}

		overrides := buildOverrides()

		config, err := NewConfig(projectID, overrides)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if location != "" {
			config.Settings.Location = location
		}
		if diagramMode != "" {
			config.Settings.Diagram.Mode = DiagramMode(diagramMode)
		}

		draft, err := resolveDraft()
		if err != nil {
			log.Fatalf("Failed to load recipe draft: %v", err)
		}

		ctx := context.Background()

		gen, err := NewGenerationClient(ctx, config.ProjectID, config.Settings.Location)
		if err != nil {
			log.Fatalf("Failed to create generation client: %v", err)
		}

		store, err := NewGCSStore(ctx)
		if err != nil {
			log.Fatalf("Failed to create storage client: %v", err)
		}

		agents, err := NewRecipeAgents(gen, config)
		if err != nil {
			log.Fatalf("Failed to create agents: %v", err)
		}

		pipeline := NewPipeline(agents, store, NewExecutor(config), config)

		var approver Approver = &ConsoleApprover{}
		if autoApprove {
			approver = &AutoApprover{}
		}

		result, err := pipeline.Run(ctx, draft, recipeName, bucketName, approver)
		if errors.Is(err, ErrUserAborted) {
			log.Println("Run aborted, nothing was uploaded")
			return
		}
		if err != nil {
			if stage := FailedStage(err); stage != "" {
				log.Fatalf("✗ Pipeline failed at stage %q: %v", stage, err)
			}
			log.Fatalf("✗ Pipeline failed: %v", err)
		}

		log.Printf("✓ Recipe stored at %s", result.RecipeURI)
		for role, uri := range result.Artifacts {
			log.Printf("✓ Artifact %s stored at %s", role, uri)
		}
	},
}

// resolveDraft picks the draft source from the mutually exclusive inputs.
func resolveDraft() (DraftInput, error) {
	sources := 0
	for _, s := range []string{draftText, draftURL, videoURI, draftFile} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 {
		return DraftInput{}, fmt.Errorf("no draft given: provide a draft file, --text, --url, or --video")
	}
	if sources > 1 {
		return DraftInput{}, fmt.Errorf("multiple draft sources given: provide exactly one")
	}

	switch {
	case draftText != "":
		return TextDraft(draftText), nil
	case videoURI != "":
		return VideoDraft(videoURI), nil
	case draftURL != "":
		log.Printf("  → Fetching draft from %s", draftURL)
		return NewDraftFetcher().FetchDraft(draftURL)
	default:
		data, err := os.ReadFile(draftFile)
		if err != nil {
			return DraftInput{}, fmt.Errorf("reading draft file: %w", err)
		}
		return TextDraft(string(data)), nil
	}
}

func buildOverrides() *ConfigOverrides {
	overrides := &ConfigOverrides{}
	if draftToRecipePromptPath != "" {
		overrides.DraftToRecipePromptPath = &draftToRecipePromptPath
	}
	if standardizePromptPath != "" {
		overrides.StandardizePromptPath = &standardizePromptPath
	}
	if revisePromptPath != "" {
		overrides.RevisePromptPath = &revisePromptPath
	}
	if generateGraphPromptPath != "" {
		overrides.GenerateGraphPromptPath = &generateGraphPromptPath
	}
	if improveGraphPromptPath != "" {
		overrides.ImproveGraphPromptPath = &improveGraphPromptPath
	}
	if interactiveGraphPromptPath != "" {
		overrides.InteractiveGraphPromptPath = &interactiveGraphPromptPath
	}
	if settingsPath != "" {
		overrides.SettingsPath = &settingsPath
	}
	return overrides
}

// ConsoleApprover runs the review loop on stdin/stdout.
type ConsoleApprover struct{}

func (a *ConsoleApprover) Review(standardized string) (Decision, string, error) {
	fmt.Println("\n--- Standardized Recipe ---")
	fmt.Println(standardized)
	fmt.Println("---------------------------")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Approve [a], revise [r], or quit [q]? ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return DecisionReject, "", fmt.Errorf("reading answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "a", "approve", "y", "yes":
			return DecisionApprove, "", nil
		case "q", "quit", "n", "no":
			return DecisionReject, "", nil
		case "r", "revise":
			fmt.Print("What should change? ")
			feedback, err := reader.ReadString('\n')
			if err != nil {
				return DecisionReject, "", fmt.Errorf("reading feedback: %w", err)
			}
			feedback = strings.TrimSpace(feedback)
			if feedback == "" {
				fmt.Println("Feedback cannot be empty")
				continue
			}
			return DecisionRevise, feedback, nil
		}
	}
}

func init() {
	rootCmd.Flags().StringVar(&draftText, "text", "", "Recipe draft text")
	rootCmd.Flags().StringVar(&draftURL, "url", "", "URL of a recipe page or cooking video")
	rootCmd.Flags().StringVar(&videoURI, "video", "", "URI of a cooking video for the model to watch")
	rootCmd.Flags().StringVar(&recipeName, "name", "", "Recipe name used for artifact naming")
	rootCmd.Flags().StringVar(&bucketName, "bucket", "", "Destination Cloud Storage bucket")
	rootCmd.Flags().StringVar(&projectID, "project", "", "Google Cloud project ID")
	rootCmd.Flags().StringVar(&location, "location", "", "Vertex AI location (default from settings)")
	rootCmd.Flags().StringVar(&diagramMode, "mode", "", "Diagram mode: static or interactive")
	rootCmd.Flags().BoolVar(&autoApprove, "yes", false, "Skip the review loop and approve the first standardized recipe")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&draftToRecipePromptPath, "draft-prompt", "", "Path to custom draft normalization prompt")
	rootCmd.Flags().StringVar(&standardizePromptPath, "standardize-prompt", "", "Path to custom standardization prompt")
	rootCmd.Flags().StringVar(&revisePromptPath, "revise-prompt", "", "Path to custom revision prompt")
	rootCmd.Flags().StringVar(&generateGraphPromptPath, "graph-prompt", "", "Path to custom diagram generation prompt")
	rootCmd.Flags().StringVar(&improveGraphPromptPath, "improve-prompt", "", "Path to custom diagram improvement prompt")
	rootCmd.Flags().StringVar(&interactiveGraphPromptPath, "interactive-prompt", "", "Path to custom interactive diagram prompt")
	rootCmd.Flags().StringVar(&settingsPath, "settings", "", "Path to custom settings file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
