package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/harbinger/internal/analysis"
	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/spf13/cobra"
)

type priorityResult struct {
	Severity         analysis.Severity     `json:"severity"`
	DisasterType     analysis.DisasterType `json:"disaster_type"`
	Authenticity     float64               `json:"authenticity"`
	OceanHazardLevel int                   `json:"ocean_hazard_level"`
	Priority         int                   `json:"priority"`
}

func (a *app) newPriorityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priority",
		Short: "Score dispatch priority for a report",
		Long: `Priority combines severity, disaster type, authenticity and ocean hazard
level into the 0-100 score responders sort by. The hazard level defaults to
the one implied by the disaster type.

Example:
  harbinger-cli priority --severity critical --type tsunami
  harbinger-cli priority --severity medium --type flood --authenticity 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPriority(cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("severity", "", "Critical, High, Medium or Low")
	cmd.Flags().String("type", "", "disaster type label")
	cmd.Flags().Float64("authenticity", 75, "authenticity score 0-100")
	cmd.Flags().Int("ocean-level", 0, "ocean hazard level 0-3")
	for _, name := range []string{"severity", "type", "authenticity"} {
		_ = a.v.BindPFlag("priority."+name, cmd.Flags().Lookup(name))
	}
	_ = a.v.BindPFlag("priority.ocean_level", cmd.Flags().Lookup("ocean-level"))
	return cmd
}

func (a *app) runPriority(out io.Writer) error {
	res := priorityResult{
		Severity:     domain.NormalizeSeverity(a.v.GetString("priority.severity")),
		DisasterType: domain.NormalizeDisasterType(a.v.GetString("priority.type")),
		Authenticity: a.v.GetFloat64("priority.authenticity"),
	}
	if res.Authenticity < 0 || res.Authenticity > 100 {
		return errors.New("authenticity must be between 0 and 100")
	}

	res.OceanHazardLevel = analysis.OceanHazardLevel(res.DisasterType)
	if a.v.IsSet("priority.ocean_level") {
		res.OceanHazardLevel = a.v.GetInt("priority.ocean_level")
	}
	if res.OceanHazardLevel < analysis.OceanHazardNone || res.OceanHazardLevel > analysis.OceanHazardCritical {
		return errors.New("ocean-level must be between 0 and 3")
	}
	res.Priority = analysis.Priority(res.Severity, res.DisasterType, res.Authenticity, res.OceanHazardLevel)

	return render(out, a.v.GetString("output"), res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "priority %s  (severity=%q type=%q authenticity=%.1f ocean_hazard_level=%d)\n",
			priorityColor(res.Priority)(res.Priority), res.Severity, res.DisasterType, res.Authenticity, res.OceanHazardLevel)
		return err
	})
}

func priorityColor(p int) func(...any) string {
	switch {
	case p >= 80:
		return alertColor
	case p >= 50:
		return warningColor
	default:
		return successColor
	}
}
