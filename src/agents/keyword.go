package agents

import "strings"

// Keyword fallback used when LLM classification is unavailable or returns
// nothing usable. Correlation is checked first since multi-domain phrasing
// often contains single-domain words too; the remaining order resolves
// overlaps like "endpoint" appearing in both hunt and asset queries.

var keywordRouting = []struct {
	agent    string
	keywords []string
}{
	{"correlation", []string{
		"risk posture", "correlate", "correlation", "security overview", "comprehensive", "investigate",
	}},
	{"threat_hunt", []string{
		"hunt", "hunting", "process", "network connection", "lateral movement",
		"persistence", "powerquery", "telemetry", "deep visibility", "purple ai",
		"endpoint activity", "file operation", "dns", "registry",
	}},
	{"alert_triage", []string{
		"alert", "alerts", "incident", "incidents", "detection", "detections", "threat", "threats",
	}},
	{"vulnerability", []string{
		"vulnerability", "vulnerabilities", "cve", "cves", "patch", "exploit", "cvss",
	}},
	{"posture", []string{
		"misconfiguration", "misconfig", "compliance", "posture", "cloud security", "iam", "benchmark",
	}},
	{"asset_intel", []string{
		"inventory", "asset", "assets", "endpoint", "endpoints", "server", "servers", "device", "devices",
	}},
}

// KeywordClassify routes a query by keyword matching, returning the general
// agent when nothing matches.
func KeywordClassify(query string) string {
	lower := strings.ToLower(query)
	for _, route := range keywordRouting {
		for _, kw := range route.keywords {
			if strings.Contains(lower, kw) {
				return route.agent
			}
		}
	}
	return GeneralAgentName
}
