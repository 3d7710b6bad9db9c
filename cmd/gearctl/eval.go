package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/gearscore/internal/grading"
)

var (
	evalJSON     bool
	evalMinPower int
	evalCeiling  int
)

var evalCmd = &cobra.Command{
	Use:   "eval <request.json|request.yaml|->",
	Short: "Score a gear evaluation request",
	Long: `Eval reads a request in the same layout POST /calculate accepts, either as
JSON or YAML, and prints the score, tier and match log. Use - for stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadRequest(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		res := grading.NewScorer(grading.WithPowerCap(evalMinPower, evalCeiling)).Evaluate(req)
		if evalJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		renderResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "Print the raw result as JSON")
	evalCmd.Flags().IntVar(&evalMinPower, "min-power", grading.DefaultPowerCapMin, "Item power below which the score is capped")
	evalCmd.Flags().IntVar(&evalCeiling, "cap", grading.DefaultPowerCapCeiling, "Score ceiling for under-powered drops")
	rootCmd.AddCommand(evalCmd)
}

// loadRequest decodes YAML for .yaml/.yml files and JSON otherwise. Stdin is
// sniffed: a leading '{' means JSON.
func loadRequest(path string, stdin io.Reader) (grading.GearEvaluationRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return grading.GearEvaluationRequest{}, fmt.Errorf("read request: %w", err)
	}

	var req grading.GearEvaluationRequest
	if isYAML(path, data) {
		err = yaml.Unmarshal(data, &req)
	} else {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return grading.GearEvaluationRequest{}, fmt.Errorf("decode request %s: %w", path, err)
	}
	return req, nil
}

func isYAML(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}
	return !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}
