package types

import (
	"time"
)

// Risk is the severity classification attached to a finding.
type Risk string

const (
	RiskHigh     Risk = "HIGH"
	RiskCritical Risk = "CRITICAL"
)

// FindingType identifies which check produced a finding.
type FindingType string

const (
	FindingExposedRoute        FindingType = "EXPOSED_ROUTE"
	FindingMissingAuth         FindingType = "MISSING_AUTH"
	FindingIDOR                FindingType = "IDOR"
	FindingPrivilegeEscalation FindingType = "PRIVILEGE_ESCALATION"
	FindingWorkflowBypass      FindingType = "WORKFLOW_BYPASS"
)

// Impact is a downstream business-impact category linked to a finding type
// in the correlation graph.
type Impact string

const (
	ImpactDataDisclosure  Impact = "DATA_DISCLOSURE"
	ImpactAdminAction     Impact = "ADMIN_ACTION"
	ImpactFinancialImpact Impact = "FINANCIAL_IMPACT"
)

// Finding is a single positive probe result. Findings are immutable once
// created; the finding log is append-only for the lifetime of a scan.
type Finding struct {
	Type     FindingType `json:"type"`
	Endpoint string      `json:"endpoint"`
	Risk     Risk        `json:"risk"`
}

// Summary groups findings by risk level.
type Summary struct {
	Total  int          `json:"total"`
	ByRisk map[Risk]int `json:"by_risk"`
}

// ScanResult is the envelope handed to the reporting collaborator once a
// scan has run to completion.
type ScanResult struct {
	ScanID       string              `json:"scan_id"`
	Target       string              `json:"target"`
	Findings     []Finding           `json:"findings"`
	Summary      Summary             `json:"summary"`
	Correlations map[string][]string `json:"correlations"`
	Stopped      bool                `json:"stopped"`
	StartedAt    time.Time           `json:"started_at"`
	CompletedAt  time.Time           `json:"completed_at"`
}

// Summarize derives a per-risk count summary from a finding sequence.
func Summarize(findings []Finding) Summary {
	s := Summary{
		Total:  len(findings),
		ByRisk: make(map[Risk]int),
	}
	for _, f := range findings {
		s.ByRisk[f.Risk]++
	}
	return s
}
