package drink

var healthTips = []string{
	"Alternate every alcoholic drink with at least 12 oz water.",
	"Cap at one standard drink per hour, stop at a light buzz.",
	"Do not drink if you need to drive or operate anything that can harm others.",
	"Avoid mixing with sedatives or sleep meds.",
	"If cutting weight, prefer spirits with soda water or brut champagne.",
}

// HealthTips 固定的健康提醒
func HealthTips() []string {
	return append([]string(nil), healthTips...)
}
