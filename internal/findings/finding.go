package findings

import (
	"strconv"
	"time"
)

// Anchor sentinels stored in LineText when the anchor line cannot be captured.
const (
	LineNotProvided     = "[Line is not provided]"
	FileNotProvided     = "[File path is not provided]"
	FileNotReadable     = "[File not found or unreadable]"
	LineOutOfRange      = "[Line out of range]"
	RejectedByDeveloper = "rejected_by_developer"
)

// AssetType is the kind of resource an asset represents.
type AssetType int

const (
	AssetRepository AssetType = iota
	AssetDockerImage
	AssetDomain
	AssetHost
	AssetCloud
)

// Asset is a portal record for a trackable resource, here always a repository.
type Asset struct {
	ID                      int       `json:"id" validate:"required"`
	Value                   string    `json:"value" validate:"required"`
	AssetType               AssetType `json:"asset_type"`
	Product                 int       `json:"product"`
	Tags                    []string  `json:"tags"`
	VerifiedFindingsCount   int       `json:"verified_and_assigned_findings_count"`
	UnverifiedFindingsCount int       `json:"unverified_findings_count"`
}

// CVSSScore is one scored CVSS vector.
type CVSSScore struct {
	Vector string   `json:"vector"`
	Score  *float64 `json:"score"`
}

// CVSS holds the scored vectors per CVSS version.
type CVSS struct {
	V31 *CVSSScore `json:"3.1,omitempty"`
	V40 *CVSSScore `json:"4.0,omitempty"`
}

// Display prefers the 4.0 score, then 3.1.
func (c *CVSS) Display() string {
	if c == nil {
		return "N / A"
	}
	for _, v := range []*CVSSScore{c.V40, c.V31} {
		if v != nil && v.Score != nil {
			return strconv.FormatFloat(*v.Score, 'f', -1, 64)
		}
	}
	return "N / A"
}

// Finding is a portal finding extended with the anchor snapshot captured locally.
type Finding struct {
	ID           int          `json:"id" validate:"required"`
	Name         string       `json:"name" validate:"required"`
	Description  string       `json:"description"`
	FilePath     *string      `json:"file_path"`
	Line         *int         `json:"line"`
	Severity     Severity     `json:"severity" validate:"gte=0,lte=4"`
	TriageStatus TriageStatus `json:"current_sla_level" validate:"gte=0,lte=6"`
	Product      int          `json:"product"`
	Tags         []string     `json:"tags"`
	CVSS         *CVSS        `json:"cvss,omitempty"`
	Branch       *string      `json:"branch"`
	DateCreated  *time.Time   `json:"date_created"`
	DateVerified *time.Time   `json:"date_verified"`

	// Local only. LineText is set once per fetch, never derived lazily.
	LineText string `json:"line_text"`
	Language string `json:"language,omitempty"`
}

// HasAnchor reports whether both the path and the line are known.
func (f Finding) HasAnchor() bool {
	return f.FilePath != nil && f.Line != nil
}

// Path returns the file path or an empty string.
func (f Finding) Path() string {
	if f.FilePath == nil {
		return ""
	}
	return *f.FilePath
}

// LineNumber returns the 1-based line or 0 when it is not provided.
func (f Finding) LineNumber() int {
	if f.Line == nil {
		return 0
	}
	return *f.Line
}

// Clone returns a deep copy so readers cannot alias store state.
func (f Finding) Clone() Finding {
	c := f
	if f.FilePath != nil {
		p := *f.FilePath
		c.FilePath = &p
	}
	if f.Line != nil {
		l := *f.Line
		c.Line = &l
	}
	if f.Branch != nil {
		b := *f.Branch
		c.Branch = &b
	}
	if f.Tags != nil {
		c.Tags = append([]string(nil), f.Tags...)
	}
	if f.CVSS != nil {
		cv := *f.CVSS
		c.CVSS = &cv
	}
	return c
}

// CloneAll copies a list of findings.
func CloneAll(list []Finding) []Finding {
	if list == nil {
		return nil
	}
	out := make([]Finding, len(list))
	for i, f := range list {
		out[i] = f.Clone()
	}
	return out
}

// Profile is the portal user behind the configured token.
type Profile struct {
	ID       int    `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}
