package sync

import "univisa.org/internal/compliance"

// FallbackAlerts returns the static alert list shown when the remote
// authority cannot be reached. The entries mirror the seeded demo
// student's situation so the alerts page is never empty.
func FallbackAlerts() []compliance.Alert {
	return []compliance.Alert{
		{
			Type:              compliance.AlertDeadline,
			Title:             "OPT Application Window Opens in 18 Days",
			Description:       "Your OPT application window is opening soon. You must submit your application within 30 days before and up to 60 days after your program completion date. Start gathering required documents now: completed I-765 form, two passport photos, copy of I-94, copy of F-1 visa, and filing fee. Missing this window could result in losing your work authorization.",
			Severity:          "high",
			Urgency:           1,
			DaysUntilCritical: intp(18),
		},
		{
			Type:        compliance.AlertWarning,
			Title:       "Work Hours Approaching Legal Limit",
			Description: "You're currently working 18 hours per week during the academic term. F-1 students are limited to 20 hours per week of on-campus employment during the school year. Consider reducing hours or ensuring you don't exceed this limit, as violations can result in loss of visa status.",
			Severity:    "medium",
			Urgency:     2,
		},
		{
			Type:              compliance.AlertInfo,
			Title:             "Spring Semester Enrollment Verification Due",
			Description:       "Your DSO will need to verify your enrollment for Spring 2026 semester within the next 32 days. Make sure you're registered for the minimum credit hours (typically 12 credits for graduate students, 9 for undergraduates) to maintain full-time status.",
			Severity:          "low",
			Urgency:           3,
			DaysUntilCritical: intp(32),
		},
		{
			Type:              compliance.AlertDeadline,
			Title:             "SEVIS Fee Renewal Required",
			Description:       "Your SEVIS I-901 fee needs to be renewed in 53 days. This fee is required to maintain your F-1 status. You can pay online through the SEVIS payment portal. Keep your payment receipt as proof of payment.",
			Severity:          "high",
			Urgency:           4,
			DaysUntilCritical: intp(53),
		},
		{
			Type:        compliance.AlertInfo,
			Title:       "New USCIS Policy Update Available",
			Description: "USCIS has published updated guidance on F-1 student employment during school breaks. Review the new policy to ensure you remain compliant during summer vacation. The AI Advisor has been updated with this information.",
			Severity:    "low",
			Urgency:     5,
		},
	}
}

func intp(v int) *int { return &v }
