// Command genmock writes synthetic evidence fixtures: one PNG per scene, a
// JSON array of citizen reports that reference them, and the same reports as
// triaged incidents. It runs the real triage service so the incident file
// matches what the pipeline would publish.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -size 128
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/fixtures"
	"github.com/couchcryptid/harbinger/internal/observability"
	"github.com/couchcryptid/harbinger/internal/triage"
	"github.com/jonboulle/clockwork"
)

var reportedAt = time.Date(2024, time.December, 26, 3, 0, 0, 0, time.UTC)

// mockReport pairs a scene with the report a citizen might file about it.
type mockReport struct {
	scene        string
	reporter     string
	location     string
	disasterType string
	severity     string
	description  string
}

var mockReports = []mockReport{
	{scene: "water", reporter: "priya", location: "Marina Beach, Chennai", disasterType: "Coastal Surge", severity: "High", description: "Sea water crossing the promenade"},
	{scene: "fire", reporter: "arjun", location: "Dehradun", disasterType: "Fire/Wildfire", severity: "Critical", description: "Forest fire spreading towards the road"},
	{scene: "landslide", reporter: "tenzin", location: "Shimla", disasterType: "Landslide", severity: "Medium", description: "Hillside collapsed onto the highway"},
	{scene: "collapse", reporter: "farah", location: "Mumbai", disasterType: "Earthquake/Building Collapse", severity: "High", description: "Old building partly collapsed"},
	{scene: "noise", reporter: "", location: "Puri", disasterType: "Other", severity: "Low", description: "Unclear photo sent from the beach"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory for the generated fixtures")
	size := flag.Int("size", 128, "width and height of generated scenes in pixels")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if *size < 16 {
		return fmt.Errorf("size must be at least 16, got %d", *size)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Fixed clock so capture-recency notes and timestamps are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(reportedAt.Add(2 * time.Hour)))
	defer domain.SetClock(nil)

	svc := triage.NewService(nil, 0, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())

	reports := make([]domain.Report, 0, len(mockReports))
	incidents := make([]domain.Incident, 0, len(mockReports))
	for _, mr := range mockReports {
		img, err := fixtures.Scene(mr.scene, *size, *size)
		if err != nil {
			return err
		}
		data, err := fixtures.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("%s: %w", mr.scene, err)
		}
		if err := os.WriteFile(filepath.Join(*outDir, mr.scene+".png"), data, 0o644); err != nil {
			return fmt.Errorf("write %s.png: %w", mr.scene, err)
		}

		r := domain.Report{
			Reporter:     mr.reporter,
			Location:     mr.location,
			DisasterType: mr.disasterType,
			Severity:     mr.severity,
			Description:  mr.description,
			Image:        data,
			ReportedAt:   reportedAt,
		}
		inc, err := svc.Triage(context.Background(), r)
		if err != nil {
			return fmt.Errorf("triage %s: %w", mr.scene, err)
		}
		reports = append(reports, r)
		incidents = append(incidents, inc)
		log.Printf("%s: %s priority=%d authenticity=%.1f", mr.scene, inc.ClassifiedType, inc.Priority, inc.AuthenticityScore)
	}
	domain.SortQueue(incidents)

	if err := writeJSON(filepath.Join(*outDir, "reports.json"), reports); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(*outDir, "incidents.json"), incidents); err != nil {
		return err
	}
	log.Printf("wrote %d scenes, reports and incidents to %s", len(mockReports), *outDir)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
