package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/couchcryptid/harbinger/internal/analysis"
	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/triage"
	"github.com/couchcryptid/harbinger/internal/worker"
	"github.com/spf13/cobra"
)

type fileResult struct {
	File     string           `json:"file"`
	Analysis *triage.Analysis `json:"analysis,omitempty"`
	Priority int              `json:"priority"`
	Error    string           `json:"error,omitempty"`
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Classify evidence images and score their authenticity",
		Long: `Analyze runs disaster classification and authenticity scoring on each
image file in parallel and prints one verdict per file.

Example:
  harbinger-cli analyze flood.jpg
  harbinger-cli analyze *.png --location "Chennai Port" --severity high
  harbinger-cli analyze shots/*.jpg --workers 8 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}

	cmd.Flags().String("location", "", "free-text location used for location-sensitive labels")
	cmd.Flags().String("context", "", "extra free-text context")
	cmd.Flags().String("severity", "", "reporter severity used for the priority column")
	cmd.Flags().Int("workers", runtime.NumCPU(), "number of images analyzed concurrently")
	for _, name := range []string{"location", "context", "severity", "workers"} {
		_ = a.v.BindPFlag("analyze."+name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func (a *app) runAnalyze(ctx context.Context, out, errOut io.Writer, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc := a.newService(errOut)
	location := a.v.GetString("analyze.location")
	extra := a.v.GetString("analyze.context")
	severity := domain.NormalizeSeverity(a.v.GetString("analyze.severity"))

	results := worker.Map(ctx, a.v.GetInt("analyze.workers"), files, func(ctx context.Context, file string) (fileResult, error) {
		data, err := os.ReadFile(file)
		if err != nil {
			return fileResult{}, err
		}
		res, err := svc.Analyze(ctx, data, location, extra)
		if err != nil {
			return fileResult{}, err
		}
		return fileResult{
			File:     file,
			Analysis: &res,
			Priority: analysis.Priority(severity, res.Classification.DisasterType, res.Authenticity.Score, res.OceanHazardLevel),
		}, nil
	})

	report := make([]fileResult, len(results))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			report[r.Index] = fileResult{File: files[r.Index], Error: r.Err.Error()}
			continue
		}
		report[r.Index] = r.Value
	}

	if err := render(out, a.v.GetString("output"), report, func(w io.Writer) error {
		return writeAnalysisText(w, report)
	}); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, len(files))
	}
	return nil
}

func writeAnalysisText(w io.Writer, report []fileResult) error {
	for _, r := range report {
		if r.Error != "" {
			fmt.Fprintf(w, "%s  %s\n\n", infoColor(r.File), errorColor("error: "+r.Error))
			continue
		}
		res := r.Analysis
		fmt.Fprintf(w, "%s  %s %dx%d\n", infoColor(r.File), res.Format, res.Width, res.Height)
		fmt.Fprintf(w, "  disaster:      %s (%.0f%%)\n", res.Classification.DisasterType, res.Classification.Confidence)
		fmt.Fprintf(w, "  authenticity:  %.1f  %s\n", res.Authenticity.Score, verdictColor(res.Authenticity)(res.Authenticity.Verdict))
		if res.OceanHazardLevel > 0 {
			fmt.Fprintf(w, "  ocean hazard:  %s\n", alertColor(fmt.Sprintf("level %d", res.OceanHazardLevel)))
		}
		fmt.Fprintf(w, "  priority:      %d\n", r.Priority)
		if res.Evidence.HasGPS {
			fmt.Fprintf(w, "  gps:           %.5f, %.5f\n", res.Evidence.Lat, res.Evidence.Lon)
		}
		fmt.Fprintf(w, "  capture:       %s\n", res.Evidence.RecencyNote)
		fmt.Fprintf(w, "  why:           %s\n\n", res.Classification.Explanation)
	}
	return nil
}

func verdictColor(a analysis.Authenticity) func(...any) string {
	switch {
	case a.Score >= 70:
		return successColor
	case a.Authentic:
		return warningColor
	default:
		return errorColor
	}
}
