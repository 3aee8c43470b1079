package analysis

import (
	"fmt"
	"math"

	"github.com/couchcryptid/harbinger/internal/imaging"
)

// Verdict messages, from most to least trustworthy.
const (
	VerdictVerified     = "High confidence - Image verified authentic"
	VerdictLikely       = "Good confidence - Likely authentic"
	VerdictProbably     = "Moderate confidence - Probably authentic"
	VerdictPossiblyFake = "Low confidence - Possibly manipulated"
	VerdictLikelyFake   = "Very low confidence - Likely fake/manipulated"
)

// Authenticity is the verdict of the authenticity scorer.
type Authenticity struct {
	Authentic bool    `json:"authentic"`
	Score     float64 `json:"score"`
	Verdict   string  `json:"verdict"`
}

// AuthenticityFailure is the sentinel result for a failed analysis.
func AuthenticityFailure(err error) Authenticity {
	return Authenticity{
		Authentic: false,
		Score:     neutralScore,
		Verdict:   fmt.Sprintf("authenticity analysis failed: %v", err),
	}
}

// ScoreAuthenticity extracts authenticity features from img and scores
// them. It never fails: errors and panics become the failure sentinel.
func ScoreAuthenticity(img *imaging.RGB) (a Authenticity) {
	defer func() {
		if r := recover(); r != nil {
			a = AuthenticityFailure(fmt.Errorf("%w: %v", ErrInternal, r))
		}
	}()

	f, err := ExtractAuthenticityFeatures(img)
	if err != nil {
		return AuthenticityFailure(err)
	}
	return JudgeAuthenticity(AuthenticityScore(f))
}

// AuthenticityScore adds up the bounded evidence contributions of f and
// clamps the total to [0, 100].
func AuthenticityScore(f AuthenticityFeatures) float64 {
	var score float64

	switch {
	case f.Variance > 1200:
		score += 30
	case f.Variance > 800:
		score += 20
	case f.Variance > 400:
		score += 10
	default:
		score += 3
	}

	switch {
	case f.EdgeDensity > 0.08 && f.EdgeDensity < 0.35:
		score += 25
	case f.EdgeDensity > 0.05:
		score += 15
	}

	if f.EdgeVariance > 50 {
		score += 10
	}

	score += math.Min((f.ColorVariance[0]+f.ColorVariance[1]+f.ColorVariance[2])/80, 25)

	if f.SaturationMean > 50 && f.SaturationMean < 200 {
		score += 15
		if f.SaturationStd > 30 {
			score += 5
		}
	}

	if f.LabVariance[0]+f.LabVariance[1]+f.LabVariance[2] > 300 {
		score += 10
	}

	if f.FreqVariance > 4 {
		score += 15
	}
	if f.FreqPeakCount > 5 && f.FreqPeakCount < 50 {
		score += 5
	}

	switch {
	case f.CompressionScore > 40 && f.CompressionScore < 85:
		score += 20
	case f.CompressionScore > 20:
		score += 10
	}

	if f.WaterAuthenticity > 60 {
		score += 10
	}

	return clamp(score, 0, 100)
}

// JudgeAuthenticity maps a score onto a verdict.
func JudgeAuthenticity(score float64) Authenticity {
	a := Authenticity{Score: clamp(score, 0, 100)}
	switch {
	case a.Score > 85:
		a.Authentic, a.Verdict = true, VerdictVerified
	case a.Score > 70:
		a.Authentic, a.Verdict = true, VerdictLikely
	case a.Score > 55:
		a.Authentic, a.Verdict = true, VerdictProbably
	case a.Score > 40:
		a.Verdict = VerdictPossiblyFake
	default:
		a.Verdict = VerdictLikelyFake
	}
	return a
}
