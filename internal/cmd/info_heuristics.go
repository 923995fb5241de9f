package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/drshade/linguist/internal/store"
	"github.com/spf13/cobra"
)

var heuristicsCmd = &cobra.Command{
	Use:   "heuristics [extension]",
	Short: "Show content heuristics",
	Long: `Without an argument, list every extension that has content heuristics.
With an extension (".h" or "h"), show its rules in evaluation order and the
fallback used when no rule holds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHeuristics,
}

// HeuristicRuleInfo describes one rule
type HeuristicRuleInfo struct {
	Languages []string `json:"languages" yaml:"languages"`
	Condition string   `json:"condition" yaml:"condition"`
}

// HeuristicGroupInfo describes the heuristics of one extension
type HeuristicGroupInfo struct {
	Extension string              `json:"extension" yaml:"extension"`
	Languages []string            `json:"languages" yaml:"languages"`
	Rules     []HeuristicRuleInfo `json:"rules,omitempty" yaml:"rules,omitempty"`
	RuleCount int                 `json:"rule_count" yaml:"rule_count"`
	Fallback  []string            `json:"fallback" yaml:"fallback"`
}

// HeuristicsResult is the output for the heuristics command
type HeuristicsResult struct {
	Groups   []HeuristicGroupInfo `json:"groups" yaml:"groups"`
	detailed bool
}

func (r *HeuristicsResult) ToJSON() interface{} {
	return r
}

func (r *HeuristicsResult) ToText(w io.Writer, st styles) {
	if !r.detailed {
		for _, g := range r.Groups {
			fmt.Fprintf(w, "%-14s %2d rules  %s\n", g.Extension, g.RuleCount, st.languages(g.Languages))
		}
		fmt.Fprintf(w, "\nTotal: %d extensions\n", len(r.Groups))
		return
	}

	for _, g := range r.Groups {
		fmt.Fprintf(w, "%s\n", g.Extension)
		for i, rule := range g.Rules {
			fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1, st.languages(rule.Languages), st.note(rule.Condition))
		}
		if len(g.Fallback) == 0 {
			fmt.Fprintln(w, "  fallback: none")
		} else {
			fmt.Fprintf(w, "  fallback: %s\n", st.languages(g.Fallback))
		}
	}
}

func runHeuristics(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	ext := ""
	if len(args) == 1 {
		ext = args[0]
	}
	result, err := buildHeuristicsResult(s, ext)
	if err != nil {
		return err
	}
	return Output(result)
}

func buildHeuristicsResult(s *store.Store, ext string) (*HeuristicsResult, error) {
	if ext == "" {
		result := &HeuristicsResult{Groups: []HeuristicGroupInfo{}}
		for _, e := range s.HeuristicExtensions() {
			g, _ := s.HeuristicGroupFor(e)
			result.Groups = append(result.Groups, HeuristicGroupInfo{
				Extension: e,
				Languages: g.Languages(),
				RuleCount: len(g.Rules),
				Fallback:  append([]string{}, g.Fallback...),
			})
		}
		return result, nil
	}

	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	g, ok := s.HeuristicGroupFor(ext)
	if !ok {
		return nil, fmt.Errorf("no heuristics for extension %s", ext)
	}

	info := HeuristicGroupInfo{
		Extension: ext,
		Languages: g.Languages(),
		RuleCount: len(g.Rules),
		Fallback:  append([]string{}, g.Fallback...),
	}
	for _, r := range g.Rules {
		info.Rules = append(info.Rules, HeuristicRuleInfo{
			Languages: r.Languages,
			Condition: r.Predicate.String(),
		})
	}
	return &HeuristicsResult{Groups: []HeuristicGroupInfo{info}, detailed: true}, nil
}
