// internal/api/http/calculate.go
package http

import (
	"encoding/json"
	"net/http"

	"github.com/mind-engage/gearscore/internal/grading"
	"github.com/mind-engage/gearscore/internal/logger"
)

// calculateResp adds the rendered log lines that string-only clients display.
type calculateResp struct {
	grading.GearEvaluationResult
	MatchedAffixes []string `json:"matched_affixes"`
}

func newCalculateResp(res grading.GearEvaluationResult) calculateResp {
	return calculateResp{GearEvaluationResult: res, MatchedAffixes: res.Lines()}
}

// POST /calculate
func CalculateHandler(scorer grading.Scorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grading.GearEvaluationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		res := scorer.Evaluate(req)
		logger.Debugf("[calculate] score=%d tier=%s weight=%d earned=%d bricks=%d",
			res.Score, res.Tier, res.Tally.TotalWeight, res.Tally.EarnedScore, res.Tally.BrickCount)
		writeJSON(w, http.StatusOK, newCalculateResp(res))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
