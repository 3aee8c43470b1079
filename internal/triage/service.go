// Package triage turns citizen reports into prioritised incidents by running
// the image heuristics, evidence checks and geocoding in order.
package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/harbinger/internal/analysis"
	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/evidence"
	"github.com/couchcryptid/harbinger/internal/imaging"
	"github.com/couchcryptid/harbinger/internal/observability"
	gocache "github.com/patrickmn/go-cache"
)

// Authenticity assumed for reports that carry no image.
const (
	noImageAuthenticity = 75.0
	noImageVerdict      = "No image provided"
)

// Analysis is the full heuristic verdict for one image.
type Analysis struct {
	Format           string                  `json:"format"`
	Width            int                     `json:"width"`
	Height           int                     `json:"height"`
	Classification   analysis.Classification `json:"classification"`
	Authenticity     analysis.Authenticity   `json:"authenticity"`
	OceanHazardLevel int                     `json:"ocean_hazard_level"`
	Evidence         evidence.Evidence       `json:"evidence"`
}

// imageResult holds the location-independent part of an analysis.
type imageResult struct {
	format       string
	width        int
	height       int
	features     analysis.ClassificationFeatures
	featureErr   error
	authenticity analysis.Authenticity
}

// Service runs triage. It is safe for concurrent use.
type Service struct {
	geocoder domain.Geocoder
	cache    *gocache.Cache
	logger   *slog.Logger
	metrics  *observability.Metrics

	maxPixels int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxImagePixels bounds the decoded size of evidence images. Larger
// images fail with imaging.ErrTooLarge before any pixels are allocated.
func WithMaxImagePixels(n int) Option {
	return func(s *Service) { s.maxPixels = n }
}

// NewService creates a triage service. geocoder may be nil to skip
// coordinate lookup. Pixel analyses are cached by image hash for cacheTTL;
// a non-positive TTL disables caching.
func NewService(geocoder domain.Geocoder, cacheTTL time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{geocoder: geocoder, logger: logger, metrics: metrics, maxPixels: imaging.DefaultMaxPixels}
	for _, opt := range opts {
		opt(s)
	}
	if cacheTTL > 0 {
		s.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

// Analyze classifies and scores an encoded image. location and extra are
// free text that boosts location-sensitive labels. Undecodable input
// returns an error wrapping imaging.ErrMalformed, and images over the pixel
// limit one wrapping imaging.ErrTooLarge.
func (s *Service) Analyze(ctx context.Context, image []byte, location, extra string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	res, err := s.analyzeImage(image)
	if err != nil {
		return Analysis{}, err
	}

	var c analysis.Classification
	if res.featureErr != nil {
		c = analysis.ClassificationFailure(res.featureErr)
	} else {
		c = analysis.ClassifyFeatures(res.features, location, extra)
	}
	s.metrics.Classifications.WithLabelValues(string(c.DisasterType)).Inc()

	return Analysis{
		Format:           res.format,
		Width:            res.width,
		Height:           res.height,
		Classification:   c,
		Authenticity:     res.authenticity,
		OceanHazardLevel: analysis.OceanHazardLevel(c.DisasterType),
		Evidence:         evidence.Inspect(image, domain.Now()),
	}, nil
}

func (s *Service) analyzeImage(image []byte) (imageResult, error) {
	key := domain.ImageSHA256(image)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.AnalysisCache.WithLabelValues("hit").Inc()
			return v.(imageResult), nil
		}
		s.metrics.AnalysisCache.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	img, format, err := imaging.DecodeBytesLimit(image, s.maxPixels)
	if err != nil {
		return imageResult{}, fmt.Errorf("analyze image: %w", err)
	}

	res := imageResult{format: format, width: img.Width, height: img.Height}
	res.features, res.featureErr = analysis.ExtractClassificationFeatures(img)
	af, authErr := analysis.ExtractAuthenticityFeatures(img)
	if authErr != nil {
		res.authenticity = analysis.AuthenticityFailure(authErr)
	} else {
		res.authenticity = analysis.JudgeAuthenticity(analysis.AuthenticityScore(af))
	}
	s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	s.metrics.Analyses.WithLabelValues("classify", outcome(res.featureErr)).Inc()
	s.metrics.Analyses.WithLabelValues("authenticity", outcome(authErr)).Inc()
	s.metrics.AuthenticityScore.Observe(res.authenticity.Score)

	if s.cache != nil {
		s.cache.SetDefault(key, res)
	}
	return res, nil
}

// Triage normalizes a report and builds the scored incident. Image problems
// degrade the analysis instead of rejecting the report; only reports with
// neither description nor image are refused.
func (s *Service) Triage(ctx context.Context, report domain.Report) (domain.Incident, error) {
	r, err := domain.NormalizeReport(report)
	if err != nil {
		return domain.Incident{}, err
	}
	inc := domain.NewIncident(r)

	if inc.HasImage {
		a, err := s.Analyze(ctx, r.Image, r.Location, r.Context)
		switch {
		case errors.Is(err, imaging.ErrMalformed), errors.Is(err, imaging.ErrTooLarge):
			s.logger.Warn("evidence image unreadable", "incident_id", inc.ID, "error", err)
			a = Analysis{
				Classification: analysis.ClassificationFailure(err),
				Authenticity:   analysis.AuthenticityFailure(err),
				Evidence:       evidence.Inspect(r.Image, domain.Now()),
			}
		case err != nil:
			return domain.Incident{}, err
		}
		applyAnalysis(&inc, a)
	} else {
		inc.ClassifiedType = inc.ReportedType
		inc.AuthenticityScore = noImageAuthenticity
		inc.AuthenticityVerdict = noImageVerdict
		inc.OceanHazardLevel = analysis.OceanHazardNone
	}

	priorityType := inc.ReportedType
	if priorityType == "" {
		priorityType = inc.ClassifiedType
	}
	inc.Priority = analysis.Priority(inc.Severity, priorityType, inc.AuthenticityScore, inc.OceanHazardLevel)
	s.metrics.PriorityScore.Observe(float64(inc.Priority))

	inc = domain.EnrichWithGeocoding(ctx, inc, s.geocoder, s.logger)

	s.logger.Debug("report triaged",
		"incident_id", inc.ID,
		"classified_type", inc.ClassifiedType,
		"priority", inc.Priority,
		"ocean_hazard_level", inc.OceanHazardLevel,
	)
	return inc, nil
}

func applyAnalysis(inc *domain.Incident, a Analysis) {
	inc.ClassifiedType = a.Classification.DisasterType
	inc.Confidence = a.Classification.Confidence
	inc.Explanation = a.Classification.Explanation
	inc.Authentic = a.Authenticity.Authentic
	inc.AuthenticityScore = a.Authenticity.Score
	inc.AuthenticityVerdict = a.Authenticity.Verdict
	inc.OceanHazardLevel = a.OceanHazardLevel

	ev := a.Evidence
	inc.Camera = ev.Camera.String()
	inc.CaptureNote = ev.RecencyNote
	inc.RecentCapture = ev.Recent
	if ev.HasGPS {
		inc.Geo = domain.Geo{Lat: ev.Lat, Lon: ev.Lon}
		inc.GeoSource = domain.GeoSourceEXIF
	}
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
