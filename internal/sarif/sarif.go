package sarif

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/pkg/shared/files"
)

const (
	DefaultFileName = "portal-lens.sarif"
	informationURI  = "https://github.com/scan-io-git/portal-lens"
)

// ToolMetadata describes the driver recorded in the report.
type ToolMetadata struct {
	Name    string
	Version *string
}

// Linker returns the portal page of a finding.
type Linker func(f findings.Finding) string

// Report is a single-run SARIF log built from stored findings.
type Report struct {
	*sarif.Report
	logger hclog.Logger
	run    *sarif.Run
	link   Linker
}

// NewReport prepares an empty report for tool. link may be nil.
func NewReport(tool ToolMetadata, link Linker, logger hclog.Logger) (*Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(tool.Name, informationURI)
	run.Tool.Driver.Version = tool.Version
	report.AddRun(run)

	return &Report{
		Report: report,
		logger: logger,
		run:    run,
		link:   link,
	}, nil
}

// AddFindings appends one result per finding. Findings without a file path get no location.
func (r *Report) AddFindings(list []findings.Finding) {
	for _, f := range list {
		rule := r.run.AddRule(RuleID(f.Name)).
			WithName(f.Name).
			WithDescription(f.Name).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: f.Severity.SarifLevel(),
			})

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(resultMessage(f))).
			WithLevel(f.Severity.SarifLevel())

		if loc := location(f); loc != nil {
			result.WithLocations([]*sarif.Location{loc})
		}

		result.PropertyBag = *sarif.NewPropertyBag()
		result.Add("FindingID", f.ID)
		result.Add("Severity", f.Severity.String())
		result.Add("TriageStatus", f.TriageStatus.String())
		result.Add("Product", f.Product)
		if f.CVSS != nil {
			result.Add("CVSS", f.CVSS.Display())
		}
		if r.link != nil {
			result.Add("PortalURL", r.link(f))
		}
		if len(f.Tags) > 0 {
			result.Add("tags", f.Tags)
		}

		r.run.AddResult(result)
	}
	r.logger.Debug("findings added to SARIF report", "count", len(list), "rules", len(r.run.Tool.Driver.Rules))
}

// Write pretty-prints the report to w.
func (r *Report) Write(w io.Writer) error {
	return r.PrettyWrite(w)
}

// Save writes the report to path and returns the file written. A directory path gets
// DefaultFileName appended.
func (r *Report) Save(path string) (string, error) {
	fullPath, folder, err := files.DetermineFileFullPath(path, DefaultFileName)
	if err != nil {
		return "", err
	}
	if err := files.CreateFolderIfNotExists(folder); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.PrettyWrite(&buf); err != nil {
		return "", fmt.Errorf("failed to encode SARIF report: %w", err)
	}
	if err := files.WriteJsonFile(fullPath, buf.Bytes()); err != nil {
		return "", err
	}
	r.logger.Info("SARIF report written", "path", fullPath)
	return fullPath, nil
}

// RuleID turns a finding name into a stable rule identifier.
// Spaces become underscores and anything but letters, digits, hyphens and underscores is dropped.
func RuleID(name string) string {
	slug := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	clean := make([]rune, 0, len(slug))
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return "unnamed"
	}
	return string(clean)
}

func resultMessage(f findings.Finding) string {
	if f.Description == "" {
		return f.Name
	}
	return f.Name + "\n\n" + f.Description
}

func location(f findings.Finding) *sarif.Location {
	if f.FilePath == nil {
		return nil
	}
	physical := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithUri(strings.ReplaceAll(*f.FilePath, "\\", "/")))

	if f.Line != nil && *f.Line > 0 {
		region := sarif.NewRegion().WithStartLine(*f.Line)
		if isSnapshot(f.LineText) {
			region.WithSnippet(sarif.NewArtifactContent().WithText(f.LineText))
		}
		physical.WithRegion(region)
	}
	return sarif.NewLocation().WithPhysicalLocation(physical)
}

// isSnapshot reports whether text is real line content rather than an anchor sentinel.
func isSnapshot(text string) bool {
	switch text {
	case "", findings.LineNotProvided, findings.FileNotProvided, findings.FileNotReadable, findings.LineOutOfRange:
		return false
	}
	return true
}
