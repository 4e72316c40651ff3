// Package agents defines the specialist agents and the orchestrator that
// routes analyst queries to them.
package agents

// Spec describes one specialist agent: its routing description, the tools it
// may call, and its system prompt.
type Spec struct {
	Name         string
	Description  string
	ToolNames    []string
	Instructions string
}

// GeneralAgentName is the pseudo-agent used when no specialist matches. It
// runs with the full tool catalog and is never registered as a specialist.
const GeneralAgentName = "general"

// Builtins returns the default specialist set in registration order.
func Builtins() []Spec {
	return []Spec{
		{
			Name: "alert_triage",
			Description: "Investigates security alerts and incidents. Handles questions about alerts, " +
				"detections, threats, incidents, alert severity, alert history, and triage workflows. " +
				"Example queries: 'show critical alerts', 'alert details for X', 'alerts from endpoint Y', " +
				"'recent high severity incidents'.",
			ToolNames: []string{
				"get_alert",
				"list_alerts",
				"search_alerts",
				"get_alert_notes",
				"get_alert_history",
			},
			Instructions: alertTriageInstructions,
		},
		{
			Name: "threat_hunt",
			Description: "Performs threat hunting, telemetry analysis, and deep visibility queries. " +
				"Handles questions about process activity, network connections, file operations, " +
				"IOCs, TTPs, lateral movement, persistence, PowerQueries, and behavioral analysis. " +
				"Example queries: 'hunt for lateral movement', 'search for process creation events', " +
				"'network connections from endpoint X', 'what happened on TheBorg-1AWC last Tuesday'.",
			ToolNames: []string{
				"purple_ai",
				"powerquery",
				"get_timestamp_range",
				"iso_to_unix_timestamp",
			},
			Instructions: threatHuntInstructions,
		},
		{
			Name: "vulnerability",
			Description: "Analyzes vulnerabilities and exposure. Handles questions about CVEs, " +
				"vulnerability severity, CVSS scores, patching, exploits, and affected applications. " +
				"Example queries: 'critical vulnerabilities', 'details for CVE-2026-1234', " +
				"'which endpoints have the most CVEs', 'unpatched software'.",
			ToolNames: []string{
				"get_vulnerability",
				"list_vulnerabilities",
				"search_vulnerabilities",
				"get_vulnerability_notes",
				"get_vulnerability_history",
			},
			Instructions: vulnerabilityInstructions,
		},
		{
			Name: "asset_intel",
			Description: "Manages asset inventory and endpoint intelligence. Handles questions about " +
				"endpoints, servers, devices, assets, inventory, cloud resources, and identities. " +
				"Example queries: 'find all Windows servers', 'inactive endpoints', " +
				"'cloud assets in production', 'show device inventory'.",
			ToolNames: []string{
				"get_inventory_item",
				"list_inventory_items",
				"search_inventory_items",
			},
			Instructions: assetIntelInstructions,
		},
		{
			Name: "posture",
			Description: "Manages cloud and Kubernetes security misconfigurations. Handles questions about " +
				"misconfigurations, compliance, cloud security posture, IAM issues, encryption, " +
				"network policies, and security benchmarks (CIS, NIST, SOC2). " +
				"Example queries: 'list critical misconfigurations', 'AWS IAM issues', " +
				"'compliance status', 'cloud security posture'.",
			ToolNames: []string{
				"get_misconfiguration",
				"list_misconfigurations",
				"search_misconfigurations",
				"get_misconfiguration_notes",
				"get_misconfiguration_history",
			},
			Instructions: postureInstructions,
		},
		{
			Name: "correlation",
			Description: "Performs cross-domain security correlation and risk analysis. Handles questions " +
				"that span multiple domains like 'what is the risk posture of endpoint X', " +
				"'correlate alerts with vulnerabilities', 'security overview', 'risk assessment', " +
				"'investigate endpoint X across all data sources', 'comprehensive security analysis'.",
			ToolNames: []string{
				"purple_ai",
				"powerquery",
				"get_timestamp_range",
				"iso_to_unix_timestamp",
				"get_alert",
				"list_alerts",
				"search_alerts",
				"get_alert_notes",
				"get_alert_history",
				"get_vulnerability",
				"list_vulnerabilities",
				"search_vulnerabilities",
				"get_vulnerability_notes",
				"get_vulnerability_history",
				"get_misconfiguration",
				"list_misconfigurations",
				"search_misconfigurations",
				"get_misconfiguration_notes",
				"get_misconfiguration_history",
				"get_inventory_item",
				"list_inventory_items",
				"search_inventory_items",
			},
			Instructions: correlationInstructions,
		},
	}
}
