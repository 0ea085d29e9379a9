// Package confidence folds per-field, verification and completeness scores into one.
package confidence

import (
	"math"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

// Weights of the three inputs to the overall score.
type Weights struct {
	Extraction   float64
	Verification float64
	Completeness float64
}

func DefaultWeights() Weights {
	return Weights{Extraction: 0.55, Verification: 0.25, Completeness: 0.20}
}

// Clamp01 pins v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// ExtractionOverall is the mean of the per-field confidences over fields.
// Fields without a score count as 0.
func ExtractionOverall(perField map[string]float64, fields []string) float64 {
	if len(fields) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range fields {
		sum += Clamp01(perField[f])
	}
	return sum / float64(len(fields))
}

// Aggregate builds the record's ConfidenceScores.
func Aggregate(perField map[string]float64, verification, completeness float64, w Weights) entity.ConfidenceScores {
	fields := make(map[string]float64, len(entity.ExtractedFields))
	for _, f := range entity.ExtractedFields {
		fields[f] = Clamp01(perField[f])
	}
	ext := ExtractionOverall(fields, entity.ExtractedFields)
	overall := w.Extraction*ext + w.Verification*Clamp01(verification) + w.Completeness*Clamp01(completeness)
	return entity.ConfidenceScores{Fields: fields, Overall: Clamp01(overall)}
}
