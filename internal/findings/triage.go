package findings

import "fmt"

// TriageStatus is the portal-side review state of a finding. Transitions happen on the portal only.
type TriageStatus int

const (
	TriageResolved TriageStatus = iota
	TriageUnverified
	TriageVerified
	TriageAssigned
	TriageRejected
	TriageTemporarilyAccepted
	TriagePermanentlyAccepted
)

var triageTitles = map[TriageStatus]string{
	TriageResolved:            "Resolved",
	TriageUnverified:          "Unverified",
	TriageVerified:            "Verified",
	TriageAssigned:            "Assigned",
	TriageRejected:            "Rejected",
	TriageTemporarilyAccepted: "Temporarily Risk Accepted",
	TriagePermanentlyAccepted: "Permanently Risk Accepted",
}

func (t TriageStatus) Valid() bool {
	return t >= TriageResolved && t <= TriagePermanentlyAccepted
}

func (t TriageStatus) String() string {
	if title, ok := triageTitles[t]; ok {
		return title
	}
	return fmt.Sprintf("TriageStatus(%d)", int(t))
}

// Editable reports whether a client may request this status through set-status.
func (t TriageStatus) Editable() bool {
	return t.Valid() && t != TriageAssigned
}

// ParseTriageStatus resolves a title such as "verified" or "Temporarily Risk Accepted".
func ParseTriageStatus(title string) (TriageStatus, error) {
	key := folder.String(title)
	for t, s := range triageTitles {
		if folder.String(s) == key {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown triage status %q", title)
}

// ParseTriageStatuses resolves a list of titles, failing on the first unknown one.
func ParseTriageStatuses(titles []string) ([]TriageStatus, error) {
	out := make([]TriageStatus, 0, len(titles))
	for _, title := range titles {
		t, err := ParseTriageStatus(title)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
