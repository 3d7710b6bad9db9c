// internal/api/http/masterwork.go
package http

import (
	"net/http"
	"strconv"

	"github.com/mind-engage/gearscore/internal/grading"
)

// GET /masterwork?value=&rank=
func MasterworkHandler() http.HandlerFunc {
	type resp struct {
		Value        float64                `json:"value"`
		Rank         grading.MasterworkRank `json:"rank"`
		Multiplier   float64                `json:"multiplier"`
		Masterworked float64                `json:"masterworked"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
		if err != nil {
			http.Error(w, "value must be a number", http.StatusBadRequest)
			return
		}
		n, err := strconv.Atoi(r.URL.Query().Get("rank"))
		if err != nil {
			http.Error(w, "rank must be 0, 1 or 2", http.StatusBadRequest)
			return
		}
		rank := grading.MasterworkRank(n)
		out, err := grading.MasterworkValue(v, rank)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, resp{Value: v, Rank: rank, Multiplier: rank.Multiplier(), Masterworked: out})
	}
}
