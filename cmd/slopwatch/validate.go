package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/gate"
	"github.com/slopwatch/slopwatch/internal/types"
)

var (
	validateCategory string
	validateStrict   bool
	validateFile     string
	validateRequest  string
	validateProducer string
)

var validateCmd = &cobra.Command{
	Use:   "validate [content]",
	Short: "Score one piece of content and print the verdict",
	Long: `Score content against the quality thresholds for a category.

Content comes from the argument, --file, or stdin, in that order.

Example:
  slopwatch validate --category optimization "Reduce p95 latency from 420ms to 180ms by enabling KV cache."
  cat report.txt | slopwatch validate --category report --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(args)
		if err != nil {
			return err
		}

		category := types.Category(validateCategory)
		if !category.IsValid() {
			return fmt.Errorf("unknown category %q (valid: %v)", validateCategory, types.AllCategories())
		}

		g, err := gate.New(&gate.Config{})
		if err != nil {
			return err
		}

		var context map[string]interface{}
		if validateRequest != "" {
			context = map[string]interface{}{"user_request": validateRequest}
		}

		verdict := g.Validate(cmd.Context(), gate.Request{
			Content:    content,
			Category:   category,
			Context:    context,
			Strict:     validateStrict,
			ProducerID: validateProducer,
		})

		printVerdict(verdict)
		if !verdict.Passed {
			os.Exit(1)
		}
		return nil
	},
}

func readContent(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if validateFile != "" {
		data, err := os.ReadFile(validateFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", validateFile, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no content provided (argument, --file, or stdin)")
	}
	return string(data), nil
}

func printVerdict(verdict *types.ValidationVerdict) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	p := verdict.Profile
	if verdict.Passed {
		fmt.Printf("%s overall=%.2f (%s)\n", green("✓ PASSED"), p.OverallScore, p.QualityLevel)
	} else {
		fmt.Printf("%s overall=%.2f (%s)\n", red("✗ FAILED"), p.OverallScore, p.QualityLevel)
	}

	fmt.Printf("  specificity=%.2f actionability=%.2f quantification=%.2f relevance=%.2f\n",
		p.SpecificityScore, p.ActionabilityScore, p.QuantificationScore, p.RelevanceScore)
	fmt.Printf("  completeness=%.2f clarity=%.2f novelty=%.2f redundancy=%.2f\n",
		p.CompletenessScore, p.ClarityScore, p.NoveltyScore, p.RedundancyRatio)
	fmt.Printf("  generic=%d circular=%v hallucination=%.2f words=%d\n",
		p.GenericPhraseCount, p.CircularReasoning, p.HallucinationRisk, p.WordCount)

	for _, issue := range p.Issues {
		fmt.Printf("  %s %s\n", yellow("issue:"), issue)
	}
	for _, s := range p.Suggestions {
		fmt.Printf("  %s %s\n", yellow("suggest:"), s)
	}
	if verdict.RetrySuggested {
		fmt.Printf("  %s\n", yellow("retry suggested"))
		if adj := verdict.RetryAdjustments; adj != nil {
			fmt.Printf("  retry temperature: %.1f\n", adj.Temperature)
			for _, inst := range adj.Instructions {
				fmt.Printf("    - %s\n", inst)
			}
		}
	}
}

func init() {
	validateCmd.Flags().StringVar(&validateCategory, "category", "general", "content category")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "apply strict thresholds")
	validateCmd.Flags().StringVar(&validateFile, "file", "", "read content from a file")
	validateCmd.Flags().StringVar(&validateRequest, "request", "", "original user request, for relevance scoring")
	validateCmd.Flags().StringVar(&validateProducer, "producer", "cli", "producer id to attribute the event to")
	rootCmd.AddCommand(validateCmd)
}
