// Package risk implements the rule-based F-1/J-1 compliance risk scoring
// that backs the student and DSO dashboards. Scoring is deterministic for a
// given profile and date.
package risk

import (
	"fmt"
	"sort"
	"time"

	"univisa.org/internal/compliance"
)

// Severity levels in descending urgency.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Flag is one triggered compliance rule.
type Flag struct {
	Category          string `json:"category"`
	Severity          string `json:"severity"`
	Explanation       string `json:"explanation"`
	DaysUntilCritical *int   `json:"days_until_critical,omitempty"`
}

// Output is the full risk assessment for one student.
type Output struct {
	StudentID   string             `json:"student_id"`
	RiskScore   int                `json:"risk_score"`
	RiskLevel   string             `json:"risk_level"`
	Flags       []Flag             `json:"flags"`
	Alerts      []compliance.Alert `json:"alerts"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Evaluate scores a profile against the rule set as of the given day.
func Evaluate(p compliance.StudentProfile, today time.Time) Output {
	score := 0
	var flags []Flag

	// OPT application timing: the window opens 90 days before program end.
	if !p.OnOPT && !p.OnCPT {
		daysToEnd := p.ProgramEndDate.DaysUntil(today)
		optWindow := daysToEnd - 90
		if optWindow < 30 {
			score += 35
			flags = append(flags, Flag{
				Category: "OPT Application Timing",
				Severity: SeverityHigh,
				Explanation: fmt.Sprintf(
					"Your OPT application window opens in approximately %d days. "+
						"Missing this window means losing your right to work post-graduation.", optWindow),
				DaysUntilCritical: intp(optWindow),
			})
		} else if optWindow < 60 {
			score += 15
			flags = append(flags, Flag{
				Category:          "OPT Application Timing",
				Severity:          SeverityMedium,
				Explanation:       "Your OPT application window is approaching. Begin gathering documents now.",
				DaysUntilCritical: intp(optWindow),
			})
		}
	}

	// Full-time enrollment requirement.
	if p.EnrollmentStatus == compliance.EnrollmentPartTime {
		score += 40
		flags = append(flags, Flag{
			Category: "Enrollment Status Violation",
			Severity: SeverityHigh,
			Explanation: "F-1 students must maintain full-time enrollment during the academic year unless " +
				"authorized by DSO. Part-time status without authorization is a SEVIS violation.",
		})
	}

	// On-campus work hours.
	if p.WeeklyWorkHours > 20 {
		score += 30
		flags = append(flags, Flag{
			Category: "Work Hour Violation",
			Severity: SeverityHigh,
			Explanation: fmt.Sprintf(
				"You reported %.0f hours/week. F-1 students may not work more than 20 hours per week "+
					"on campus during the academic year. This is a deportable offense.", p.WeeklyWorkHours),
		})
	} else if p.WeeklyWorkHours > 17 {
		score += 10
		flags = append(flags, Flag{
			Category: "Work Hours Approaching Limit",
			Severity: SeverityMedium,
			Explanation: fmt.Sprintf(
				"You are at %.0f hrs/week, close to the 20hr limit. Track carefully.", p.WeeklyWorkHours),
		})
	}

	// Travel without verified documents.
	if p.TravelingSoon {
		score += 15
		flags = append(flags, Flag{
			Category: "International Travel Risk",
			Severity: SeverityMedium,
			Explanation: "Ensure your visa stamp, I-20, and travel signature are all valid before departing. " +
				"Expired visa stamps require renewal at a US consulate abroad before reentry.",
		})
	}

	// Program end proximity without OPT.
	daysToEnd := p.ProgramEndDate.DaysUntil(today)
	if daysToEnd < 60 && !p.OnOPT {
		score += 20
		flags = append(flags, Flag{
			Category: "Program End Approaching",
			Severity: SeverityHigh,
			Explanation: fmt.Sprintf(
				"Your program ends in %d days and you have no active OPT/CPT. You must have authorization "+
					"to remain in the US after your program end date.", daysToEnd),
			DaysUntilCritical: intp(daysToEnd),
		})
	}

	// OPT expiring soon.
	if p.OnOPT && p.OPTEndDate != nil {
		daysToOPTEnd := p.OPTEndDate.DaysUntil(today)
		if daysToOPTEnd < 30 {
			score += 25
			flags = append(flags, Flag{
				Category: "OPT Expiring Soon",
				Severity: SeverityHigh,
				Explanation: fmt.Sprintf(
					"Your OPT expires in %d days. Ensure you have an H-1B cap-gap extension or other "+
						"status if remaining in US.", daysToOPTEnd),
				DaysUntilCritical: intp(daysToOPTEnd),
			})
		}
	}

	if score > 100 {
		score = 100
	}
	level := SeverityLow
	switch {
	case score > 65:
		level = SeverityHigh
	case score > 35:
		level = SeverityMedium
	}

	return Output{
		StudentID:   p.StudentID,
		RiskScore:   score,
		RiskLevel:   level,
		Flags:       flags,
		Alerts:      Alerts(flags),
		GeneratedAt: today.UTC(),
	}
}

// Alerts converts triggered flags into display alerts sorted by urgency,
// then by days until critical.
func Alerts(flags []Flag) []compliance.Alert {
	severityOrder := map[string]int{
		SeverityHigh:   1,
		SeverityMedium: 2,
		SeverityLow:    3,
	}
	alerts := make([]compliance.Alert, 0, len(flags))
	for _, f := range flags {
		urgency, ok := severityOrder[f.Severity]
		if !ok {
			urgency = 3
		}
		typ := compliance.AlertInfo
		if f.DaysUntilCritical != nil {
			typ = compliance.AlertDeadline
		} else if f.Severity == SeverityHigh {
			typ = compliance.AlertWarning
		}
		alerts = append(alerts, compliance.Alert{
			Type:              typ,
			Title:             f.Category,
			Description:       f.Explanation,
			Severity:          f.Severity,
			Urgency:           urgency,
			DaysUntilCritical: f.DaysUntilCritical,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Urgency != alerts[j].Urgency {
			return alerts[i].Urgency < alerts[j].Urgency
		}
		return daysOr(alerts[i].DaysUntilCritical) < daysOr(alerts[j].DaysUntilCritical)
	})
	return alerts
}

// TopFlag names the dominant concern for cohort rows.
func TopFlag(flags []Flag) string {
	if len(flags) == 0 {
		return "All requirements met"
	}
	return flags[0].Category
}

func daysOr(v *int) int {
	if v == nil {
		return 999
	}
	return *v
}

func intp(v int) *int { return &v }
