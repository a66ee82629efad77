// Package repl provides an interactive shell for scoring content by hand:
// paste text, get the full quality breakdown for the active category.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/slopwatch/slopwatch/internal/gate"
	"github.com/slopwatch/slopwatch/internal/types"
)

// REPL is the interactive scoring shell.
type REPL struct {
	gate     *gate.Gate
	rl       *readline.Instance
	category types.Category
	strict   bool
}

// Config holds REPL configuration.
type Config struct {
	Gate *gate.Gate
}

// New creates a REPL instance.
func New(cfg *Config) (*REPL, error) {
	if cfg == nil || cfg.Gate == nil {
		return nil, fmt.Errorf("gate is required")
	}
	return &REPL{
		gate:     cfg.Gate,
		category: types.CategoryGeneral,
	}, nil
}

// Run starts the interactive loop. Lines starting with ':' are directives
// (:category, :strict, :help, :quit); everything else is scored as content.
func (r *REPL) Run(ctx context.Context) error {
	cyan := color.New(color.FgCyan).SprintFunc()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("slopwatch> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if done := r.handleDirective(line); done {
				return nil
			}
			continue
		}

		r.score(ctx, line)
	}
}

func (r *REPL) printWelcome() {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Println("slopwatch interactive scorer")
	fmt.Printf("category=%s strict=%v (type %s for directives)\n",
		yellow(string(r.category)), r.strict, yellow(":help"))
}

// handleDirective processes a ':' command and reports whether to exit.
func (r *REPL) handleDirective(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true

	case ":strict":
		r.strict = !r.strict
		fmt.Printf("strict mode: %v\n", r.strict)

	case ":category", ":cat":
		if len(fields) < 2 {
			fmt.Println("categories:")
			for _, c := range types.AllCategories() {
				fmt.Printf("  %s\n", c)
			}
			return false
		}
		c := types.Category(fields[1])
		if !c.IsValid() {
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s unknown category %q\n", red("error:"), fields[1])
			return false
		}
		r.category = c
		fmt.Printf("category: %s\n", c)

	case ":help", ":h":
		fmt.Println("  :category <name>  set the scoring category")
		fmt.Println("  :strict           toggle strict mode")
		fmt.Println("  :quit             exit")
		fmt.Println("anything else is scored as content")

	default:
		fmt.Printf("unknown directive %s (try :help)\n", fields[0])
	}
	return false
}

func (r *REPL) score(ctx context.Context, content string) {
	verdict := r.gate.Validate(ctx, gate.Request{
		Content:    content,
		Category:   r.category,
		Strict:     r.strict,
		ProducerID: "repl",
	})

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	p := verdict.Profile
	status := green("PASSED")
	if !verdict.Passed {
		status = red("FAILED")
	}
	fmt.Printf("%s  overall=%.2f (%s)\n", status, p.OverallScore, p.QualityLevel)
	fmt.Printf("  specificity=%.2f actionability=%.2f quantification=%.2f relevance=%.2f\n",
		p.SpecificityScore, p.ActionabilityScore, p.QuantificationScore, p.RelevanceScore)
	fmt.Printf("  completeness=%.2f clarity=%.2f novelty=%.2f redundancy=%.2f\n",
		p.CompletenessScore, p.ClarityScore, p.NoveltyScore, p.RedundancyRatio)
	fmt.Printf("  generic=%d circular=%v hallucination=%.2f\n",
		p.GenericPhraseCount, p.CircularReasoning, p.HallucinationRisk)

	for _, issue := range p.Issues {
		fmt.Printf("  %s %s\n", yellow("issue:"), issue)
	}
	for _, s := range p.Suggestions {
		fmt.Printf("  %s %s\n", yellow("suggest:"), s)
	}
	if verdict.RetrySuggested {
		fmt.Printf("  %s\n", yellow("retry suggested"))
	}
}
