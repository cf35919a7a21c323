package annotate

import (
	"fmt"
	"strings"
	"time"

	"github.com/scan-io-git/portal-lens/internal/findings"
)

const notAvailable = "N / A"

// Permalinker links a file line to its source view. It returns "" when no link can be built.
type Permalinker func(path string, line int) string

// Renderer turns findings into hover markdown.
type Renderer struct {
	PortalURL string
	Permalink Permalinker
	// Binary is the command shown in reject hints.
	Binary string
}

// FindingURL is the portal page of a finding.
func (r Renderer) FindingURL(f findings.Finding) string {
	return fmt.Sprintf("%s/products/%d/findings/%d", strings.TrimRight(r.PortalURL, "/"), f.Product, f.ID)
}

// RejectCommand is the command that rejects f.
func (r Renderer) RejectCommand(f findings.Finding) string {
	bin := r.Binary
	if bin == "" {
		bin = "portal-lens"
	}
	return fmt.Sprintf("%s reject %d", bin, f.ID)
}

// Hover renders the markdown details of one finding. prefix is put before the title link.
func (r Renderer) Hover(f findings.Finding, outdated bool, prefix string) string {
	var b strings.Builder

	title := fmt.Sprintf("## %s[%d](%s): %s %s - %s", prefix, f.ID, r.FindingURL(f), f.Severity.Emoji(), f.Severity, f.Name)
	if outdated {
		title += " (possibly outdated)"
	}
	b.WriteString(title + "\n\n")

	if !outdated && f.TriageStatus != findings.TriageRejected {
		fmt.Fprintf(&b, "Reject this finding: `%s`\n\n", r.RejectCommand(f))
	}

	location := fmt.Sprintf("%s:%s", orNull(f.FilePath), lineOrNull(f.Line))
	if r.Permalink != nil && f.HasAnchor() {
		if link := r.Permalink(*f.FilePath, *f.Line); link != "" {
			location = fmt.Sprintf("[%s](%s)", location, link)
		}
	}
	b.WriteString(location + "\n\n")

	b.WriteString("Code snippet:\n\n")
	fmt.Fprintf(&b, "```%s\n%s\n```\n\n", f.Language, f.LineText)

	if f.Description != "" {
		b.WriteString(f.Description + "\n\n")
	}

	details := []string{
		"Status: " + f.TriageStatus.String(),
		"CVSS: " + f.CVSS.Display(),
		"Verified: " + formatDate(f.DateVerified),
	}
	b.WriteString(strings.Join(details, "\n\n"))

	return b.String()
}

func orNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

func lineOrNull(n *int) string {
	if n == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *n)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return notAvailable
	}
	return t.Local().Format("02.01.2006 15:04")
}
