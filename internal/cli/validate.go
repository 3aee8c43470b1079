package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/couchcryptid/harbinger/internal/analysis"
	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/spf13/cobra"
)

var incidentIDPattern = regexp.MustCompile(`^inc-[0-9a-f]{16}$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	Name   string   `json:"name"`
	Errors []string `json:"errors,omitempty"`
}

func (p *phase) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.Errors) == 0 }

type validationReport struct {
	File    string   `json:"file"`
	Records int      `json:"records"`
	Passed  bool     `json:"passed"`
	Phases  []*phase `json:"phases"`
}

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a triaged incident export for integrity",
		Long: `Validate re-checks a JSON export of triaged incidents (an array, or a
single incident): field presence, score ranges, derived priority and ocean
hazard values, and responder workflow state.

Example:
  curl -s localhost:8080/v1/incidents > incidents.json
  harbinger-cli validate incidents.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runValidate(out io.Writer, path string) error {
	incidents, err := loadIncidents(path)
	if err != nil {
		return err
	}

	report := validationReport{
		File:    path,
		Records: len(incidents),
		Phases: []*phase{
			validateFields(incidents),
			validateRanges(incidents),
			validateDerived(incidents),
			validateWorkflow(incidents),
		},
	}
	report.Passed = true
	for _, p := range report.Phases {
		report.Passed = report.Passed && p.passed()
	}

	if err := render(out, a.v.GetString("output"), report, func(w io.Writer) error {
		return writeValidationText(w, report)
	}); err != nil {
		return err
	}
	if !report.Passed {
		return errors.New("validation failed")
	}
	return nil
}

func loadIncidents(path string) ([]domain.Incident, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var inc domain.Incident
		if err := json.Unmarshal(data, &inc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return []domain.Incident{inc}, nil
	}
	var incidents []domain.Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return incidents, nil
}

func writeValidationText(w io.Writer, r validationReport) error {
	fmt.Fprintf(w, "=== Incident Integrity Validation ===\n\n")
	for _, p := range r.Phases {
		status := successColor("PASS")
		if !p.passed() {
			status = errorColor(fmt.Sprintf("FAIL (%d errors)", len(p.Errors)))
		}
		fmt.Fprintf(w, "  %-24s %s\n", p.Name, status)
	}
	fmt.Fprintf(w, "\nRecords: %d\n", r.Records)

	for _, p := range r.Phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.Name)
		for i, e := range p.Errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if r.Passed {
		fmt.Fprintln(w, "\nAll validations passed.")
	} else {
		fmt.Fprintln(w, "\nValidation FAILED.")
	}
	return nil
}

func validateFields(incidents []domain.Incident) *phase {
	p := &phase{Name: "Field presence"}
	seen := make(map[string]int, len(incidents))
	for i, inc := range incidents {
		if !incidentIDPattern.MatchString(inc.ID) {
			p.errorf("record %d: malformed id %q", i, inc.ID)
		}
		if j, dup := seen[inc.ID]; dup {
			p.errorf("record %d: duplicate id %s (first at record %d)", i, inc.ID, j)
		}
		seen[inc.ID] = i
		if inc.CreatedAt.IsZero() {
			p.errorf("%s: missing created_at", inc.ID)
		}
		if inc.Reporter == "" {
			p.errorf("%s: missing reporter", inc.ID)
		}
		if inc.Description == "" && !inc.HasImage {
			p.errorf("%s: neither description nor image", inc.ID)
		}
		if inc.HasImage && inc.ImageSHA256 == "" {
			p.errorf("%s: image without sha256", inc.ID)
		}
	}
	return p
}

func validateRanges(incidents []domain.Incident) *phase {
	p := &phase{Name: "Score ranges"}
	for _, inc := range incidents {
		if inc.Priority < 0 || inc.Priority > 100 {
			p.errorf("%s: priority %d outside 0-100", inc.ID, inc.Priority)
		}
		if inc.AuthenticityScore < 0 || inc.AuthenticityScore > 100 {
			p.errorf("%s: authenticity %.2f outside 0-100", inc.ID, inc.AuthenticityScore)
		}
		if inc.Confidence < 0 || inc.Confidence > 100 {
			p.errorf("%s: confidence %.2f outside 0-100", inc.ID, inc.Confidence)
		}
		if inc.OceanHazardLevel < analysis.OceanHazardNone || inc.OceanHazardLevel > analysis.OceanHazardCritical {
			p.errorf("%s: ocean hazard level %d outside 0-3", inc.ID, inc.OceanHazardLevel)
		}
	}
	return p
}

// validateDerived recomputes the values triage derives from other fields.
func validateDerived(incidents []domain.Incident) *phase {
	p := &phase{Name: "Derived values"}
	for _, inc := range incidents {
		want := analysis.OceanHazardNone
		if inc.HasImage {
			want = analysis.OceanHazardLevel(inc.ClassifiedType)
		}
		if inc.OceanHazardLevel != want {
			p.errorf("%s: ocean hazard level %d, want %d for %q", inc.ID, inc.OceanHazardLevel, want, inc.ClassifiedType)
		}
		priorityType := inc.ReportedType
		if priorityType == "" {
			priorityType = inc.ClassifiedType
		}
		if want := analysis.Priority(inc.Severity, priorityType, inc.AuthenticityScore, inc.OceanHazardLevel); inc.Priority != want {
			p.errorf("%s: priority %d, want %d", inc.ID, inc.Priority, want)
		}
		if !inc.HasImage && inc.ClassifiedType != inc.ReportedType {
			p.errorf("%s: classified as %q without an image", inc.ID, inc.ClassifiedType)
		}
	}
	return p
}

func validateWorkflow(incidents []domain.Incident) *phase {
	p := &phase{Name: "Workflow state"}
	for _, inc := range incidents {
		switch inc.Status {
		case domain.StatusPending:
			if inc.VerifiedBy != "" || inc.VerifiedAt != nil {
				p.errorf("%s: pending but verified by %q", inc.ID, inc.VerifiedBy)
			}
		case domain.StatusVerified, domain.StatusRejected, domain.StatusUnderReview:
			if inc.VerifiedBy == "" || inc.VerifiedAt == nil {
				p.errorf("%s: status %s without verifier", inc.ID, inc.Status)
			}
		default:
			p.errorf("%s: unknown status %q", inc.ID, inc.Status)
		}
		if (inc.Volunteer == "") != (inc.AssignedAt == nil) {
			p.errorf("%s: volunteer and assigned_at must be set together", inc.ID)
		}
		if inc.UpdatedAt.Before(inc.CreatedAt) {
			p.errorf("%s: updated_at before created_at", inc.ID)
		}
	}
	return p
}
