package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/output"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/screen"
)

// WaitResult is the output of a wait command.
type WaitResult struct {
	OK       bool             `yaml:"ok" json:"ok"`
	Action   string           `yaml:"action" json:"action"`
	Pattern  string           `yaml:"pattern" json:"pattern"`
	Elapsed  string           `yaml:"elapsed" json:"elapsed"`
	Match    *platform.Bounds `yaml:"match,omitempty" json:"match,omitempty"`
	Score    float64          `yaml:"score,omitempty" json:"score,omitempty"`
	TimedOut bool             `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

// waitRequest is a wait shared by the CLI and the MCP tool.
type waitRequest struct {
	Pattern    string
	Similarity float64
	Gone       bool
	Timeout    time.Duration
	// Region is "x,y,w,h"; empty searches the whole screen.
	Region string
}

var waitCmd = &cobra.Command{
	Use:   "wait <pattern>",
	Short: "Wait for a pattern to appear or vanish",
	Long: `Poll the screen until the pattern shows up, or with --gone until it no
longer matches. Exits non-zero on timeout.`,
	Args: cobra.ExactArgs(1),
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().Bool("gone", false, "Invert: wait until the pattern is NO LONGER on screen")
	waitCmd.Flags().Duration("timeout", 10*time.Second, "Max time to wait")
	waitCmd.Flags().Float64("similarity", 0, "Match similarity (0 = catalog default)")
	waitCmd.Flags().String("region", "", "Limit the search to x,y,w,h")
}

func runWait(cmd *cobra.Command, args []string) error {
	gone, _ := cmd.Flags().GetBool("gone")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	similarity, _ := cmd.Flags().GetFloat64("similarity")
	region, _ := cmd.Flags().GetString("region")

	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	result, err := e.wait(waitRequest{
		Pattern:    args[0],
		Similarity: similarity,
		Gone:       gone,
		Timeout:    timeout,
		Region:     region,
	})
	if err != nil {
		return err
	}
	return output.Print(result)
}

// wait runs req. A timeout is reported both in the result and as the error.
func (e *engine) wait(req waitRequest) (WaitResult, error) {
	result := WaitResult{Action: "wait", Pattern: req.Pattern}
	if req.Gone {
		result.Action = "wait-gone"
	}
	if req.Timeout < 0 {
		return result, fmt.Errorf("timeout must not be negative")
	}

	p, err := e.pattern(req.Pattern, req.Similarity)
	if err != nil {
		return result, err
	}
	s := e.actions.Screen()
	if req.Region != "" {
		b, err := platform.ParseBBox(req.Region)
		if err != nil {
			return result, err
		}
		r, err := screen.NewRegion(b.X, b.Y, b.Width, b.Height)
		if err != nil {
			return result, err
		}
		s = s.In(r)
	}

	start := s.Clock().Now()
	if req.Gone {
		err = s.WaitVanish(p, req.Timeout)
	} else {
		var m screen.Match
		m, err = s.Wait(p, req.Timeout)
		if err == nil {
			b := m.Bounds()
			result.Match = &b
			result.Score = m.Score
		}
	}
	result.Elapsed = s.Clock().Now().Sub(start).Round(time.Millisecond).String()
	result.TimedOut = outcome.KindOf(err) == outcome.Timeout
	result.OK = err == nil
	return result, err
}
