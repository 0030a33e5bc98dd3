package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nicorema/wedding/internal/words"
	"github.com/nicorema/wedding/internal/wordsearch"
)

var (
	answerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	fillerStyle = lipgloss.NewStyle().Faint(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

type puzzleOut struct {
	Seed       uint64                  `json:"seed"`
	Grid       wordsearch.Grid         `json:"grid"`
	Placements []wordsearch.PlacedWord `json:"placements"`
	Missing    []string                `json:"missing,omitempty"`
}

func (a *app) puzzleCmd() *cobra.Command {
	var (
		size    int
		seed    uint64
		answers bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Generate and print a puzzle grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size <= 0 {
				size = a.cfg.Game.GridSize
			}
			list, err := words.Load(a.cfg.Game.WordsFile, size)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = rand.Uint64()
			}
			out := buildPuzzle(list, size, seed)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			renderPuzzle(cmd.OutOrStdout(), out, answers)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "grid size (default from config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed; 0 picks one")
	cmd.Flags().BoolVar(&answers, "answers", false, "highlight placed words")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

// buildPuzzle is deterministic for a given list, size and seed.
func buildPuzzle(list words.List, size int, seed uint64) puzzleOut {
	g := &wordsearch.Generator{
		Size:     size,
		Attempts: wordsearch.MaxAttempts,
		Rand:     rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	grid, placed := g.Generate(list.Words())

	got := make(map[string]bool, len(placed))
	for _, p := range placed {
		got[p.Word] = true
	}
	var missing []string
	for _, w := range list.Words() {
		if !got[w] {
			missing = append(missing, w)
		}
	}
	return puzzleOut{Seed: seed, Grid: grid, Placements: placed, Missing: missing}
}

func renderPuzzle(w io.Writer, p puzzleOut, answers bool) {
	hit := make(map[wordsearch.Cell]bool)
	if answers {
		for _, pw := range p.Placements {
			for _, c := range pw.Cells() {
				hit[c] = true
			}
		}
	}

	var sb strings.Builder
	for r, row := range p.Grid {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c, letter := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			s := string(letter)
			switch {
			case !answers:
				sb.WriteString(s)
			case hit[wordsearch.Cell{Row: r, Col: c}]:
				sb.WriteString(answerStyle.Render(s))
			default:
				sb.WriteString(fillerStyle.Render(s))
			}
		}
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Puzzle %dx%d (seed %d)", p.Grid.Size(), p.Grid.Size(), p.Seed)))
	fmt.Fprintln(w, sb.String())
	fmt.Fprintln(w)
	for _, pw := range p.Placements {
		fmt.Fprintf(w, "%-16s row %2d col %2d %s\n", pw.Word, pw.Row, pw.Col, pw.Direction)
	}
	if len(p.Missing) > 0 {
		fmt.Fprintf(w, "not placed: %s\n", strings.Join(p.Missing, ", "))
	}
}
