package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/harbinger/internal/imaging"
)

// MaxConfidence caps every classification confidence.
const MaxConfidence = 95.0

// Fallback results.
const (
	NoMatchConfidence = 60.0
	FailedConfidence  = 50.0
)

// Classification is the outcome of the disaster rule table.
type Classification struct {
	DisasterType DisasterType `json:"disaster_type"`
	Confidence   float64      `json:"confidence"`
	Explanation  string       `json:"explanation"`
}

// Failed reports whether c is the sentinel returned on extraction failure.
func (c Classification) Failed() bool { return c.DisasterType == Unknown }

// ClassificationFailure is the sentinel result for a failed classification.
func ClassificationFailure(err error) Classification {
	return Classification{
		DisasterType: Unknown,
		Confidence:   FailedConfidence,
		Explanation:  fmt.Sprintf("classification error: %v", err),
	}
}

// Classify extracts classification features from img and runs the rule
// table with the given location text and extra context. It never fails:
// extraction errors and panics become the Unknown sentinel.
func Classify(img *imaging.RGB, location, context string) (c Classification) {
	defer func() {
		if r := recover(); r != nil {
			c = ClassificationFailure(fmt.Errorf("%w: %v", ErrInternal, r))
		}
	}()

	f, err := ExtractClassificationFeatures(img)
	if err != nil {
		return ClassificationFailure(err)
	}
	return ClassifyFeatures(f, location, context)
}

// ClassifyFeatures runs the rule table over already-extracted features.
func ClassifyFeatures(f ClassificationFeatures, location, context string) Classification {
	board := newScoreboard()

	waterIndicators := 0
	if !f.Dark {
		waterIndicators = countWaterIndicators(f)
		for _, r := range rules {
			if v, ok := r.score(f, waterIndicators); ok {
				board.set(r.label, v)
			}
		}
	}

	applyLocationBoosts(board, strings.ToLower(location+" "+context), f.BlueRatio)

	label, confidence, ok := board.best()
	if !ok {
		label, confidence = NaturalDisaster, NoMatchConfidence
	}

	return Classification{
		DisasterType: label,
		Confidence:   clamp(confidence, 0, MaxConfidence),
		Explanation:  explain(f, waterIndicators),
	}
}

func explain(f ClassificationFeatures, waterIndicators int) string {
	return fmt.Sprintf(
		"Enhanced AI Analysis: Color ratios (R:%.2f, G:%.2f, B:%.2f), Water indicators: %d, Surface smoothness: %.1f, Edge patterns: %.3f, Location context applied",
		f.RedRatio, f.GreenRatio, f.BlueRatio, waterIndicators, f.WaterSmoothness, f.EdgeDensity,
	)
}

func countWaterIndicators(f ClassificationFeatures) int {
	n := 0
	if f.BlueRatio > 0.32 {
		n++
	}
	if f.AvgSaturation > 80 && f.BlueRatio > 0.3 {
		n++
	}
	if f.WaterSmoothness < 50 && f.BlueRatio > 0.28 {
		n++
	}
	if f.AvgHue > 90 && f.AvgHue < 140 && f.AvgSaturation > 60 {
		n++
	}
	return n
}

// rule scores one label. Rules are independent; order decides ties.
type rule struct {
	label DisasterType
	score func(f ClassificationFeatures, waterIndicators int) (float64, bool)
}

var rules = []rule{
	{Flood, func(f ClassificationFeatures, water int) (float64, bool) {
		if water < 2 {
			return 0, false
		}
		enhancement := 0.0
		if f.BlueRatio > 0.25 {
			enhancement = (f.BlueRatio - 0.25) * 100
		}
		return math.Min(40+float64(water)*15+enhancement+f.AvgSaturation/255*25, 95), true
	}},
	{Tsunami, func(f ClassificationFeatures, _ int) (float64, bool) {
		if f.BlueRatio > 0.45 && f.WaterSmoothness > 60 && f.AvgSaturation > 120 {
			return math.Min((f.BlueRatio-0.35)*200+f.WaterSmoothness, 90), true
		}
		return 0, false
	}},
	{CoastalSurge, func(f ClassificationFeatures, _ int) (float64, bool) {
		if f.BlueRatio > 0.4 && f.EdgeDensity > 0.1 && f.AvgValue > 100 {
			return math.Min((f.BlueRatio-0.3)*150+f.EdgeDensity*200, 85), true
		}
		return 0, false
	}},
	{StormSurge, func(f ClassificationFeatures, _ int) (float64, bool) {
		if f.BlueRatio > 0.35 && f.AvgValue < 120 && f.EdgeDensity > 0.15 {
			return math.Min((f.BlueRatio-0.25)*120+(1-f.AvgValue/255)*80, 80), true
		}
		return 0, false
	}},
	{HarmfulAlgalBloom, func(f ClassificationFeatures, _ int) (float64, bool) {
		if f.GreenRatio > 0.35 && f.GreenRatio < 0.55 && f.RedRatio > 0.25 && f.AvgSaturation > 100 &&
			f.AvgHue > 40 && f.AvgHue < 80 {
			return math.Min((f.GreenRatio-0.3)*180+f.AvgSaturation/255*30, 75), true
		}
		return 0, false
	}},
	{Wildfire, func(f ClassificationFeatures, _ int) (float64, bool) {
		if f.RedRatio > 0.38 && f.AvgHue < 35 {
			return math.Min((f.RedRatio-0.3)*250+f.AvgSaturation/255*40, 95), true
		}
		return 0, false
	}},
	{CycloneStorm, func(f ClassificationFeatures, _ int) (float64, bool) {
		if f.AvgValue < 110 && f.EdgeDensity > 0.12 {
			return math.Min((1-f.AvgValue/255)*80+f.EdgeDensity*120, 85), true
		}
		return 0, false
	}},
	{BuildingCollapse, func(f ClassificationFeatures, _ int) (float64, bool) {
		spread := f.MeanColorStd()
		if spread > 45 && f.EdgeDensity > 0.18 {
			return math.Min(spread/1.8+f.EdgeDensity*180, 80), true
		}
		return 0, false
	}},
	{Landslide, func(f ClassificationFeatures, _ int) (float64, bool) {
		brown := f.RedRatio*0.65 + f.GreenRatio*0.35 + f.BlueRatio*0.1
		if brown > 0.38 && f.AvgHue > 15 && f.AvgHue < 65 {
			return math.Min(brown*120+(f.AvgHue-15)*1.5, 75), true
		}
		return 0, false
	}},
}

var (
	oceanKeywords  = []string{"sea", "ocean", "coast", "coastal", "beach", "shore", "marine", "bay", "gulf", "island", "port", "harbor", "tide", "wave"}
	waterKeywords  = []string{"river", "lake", "dam", "reservoir", "canal", "stream", "pond"}
	ruralKeywords  = []string{"forest", "mountain", "hill", "rural", "village"}
	urbanKeywords  = []string{"urban", "city", "building", "residential", "tower", "complex"}
	oceanHazardSet = []DisasterType{Tsunami, CoastalSurge, StormSurge, HarmfulAlgalBloom}
)

func applyLocationBoosts(board *scoreboard, text string, blueRatio float64) {
	if containsAny(text, oceanKeywords) {
		for _, label := range oceanHazardSet {
			if board.add(label, 20) {
				continue
			}
			if label == CoastalSurge && blueRatio > 0.3 {
				board.set(CoastalSurge, 60)
			}
		}
	}

	if containsAny(text, waterKeywords) {
		if !board.add(Flood, 25) && blueRatio > 0.28 {
			board.set(Flood, 70)
		}
	}

	if containsAny(text, ruralKeywords) {
		board.add(Wildfire, 15)
		board.add(Landslide, 12)
	}

	if containsAny(text, urbanKeywords) {
		board.add(BuildingCollapse, 15)
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// scoreboard is an insertion-ordered label->confidence map.
type scoreboard struct {
	order  []DisasterType
	scores map[DisasterType]float64
}

func newScoreboard() *scoreboard {
	return &scoreboard{scores: make(map[DisasterType]float64)}
}

func (s *scoreboard) set(label DisasterType, v float64) {
	if _, ok := s.scores[label]; !ok {
		s.order = append(s.order, label)
	}
	s.scores[label] = v
}

// add boosts an existing label and reports whether it was present.
func (s *scoreboard) add(label DisasterType, delta float64) bool {
	if _, ok := s.scores[label]; !ok {
		return false
	}
	s.scores[label] += delta
	return true
}

// best returns the highest score; the earliest inserted label wins ties.
func (s *scoreboard) best() (DisasterType, float64, bool) {
	if len(s.order) == 0 {
		return "", 0, false
	}
	label := s.order[0]
	top := s.scores[label]
	for _, l := range s.order[1:] {
		if s.scores[l] > top {
			label, top = l, s.scores[l]
		}
	}
	return label, top, true
}
