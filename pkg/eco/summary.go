package eco

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// https://www.ecobee.com/home/developer/api/documentation/v1/operations/get-thermostat-summary.shtml

var ErrMalformedRevision = errors.New("malformed revision record")

// Revision is one decoded revisionList entry. The revision values are opaque
// and only ever compared for equality.
type Revision struct {
	ThermostatID       string
	ThermostatName     string
	Connected          bool
	ThermostatRevision string
	AlertsRevision     string
	RuntimeRevision    string
	IntervalRevision   string
}

// ParseRevision decodes a colon separated revision record, e.g.
//
//	522697894617:My ecobee:true:220115212500:220103232041:220115222447:220115222000
func ParseRevision(s string) (Revision, error) {
	f := strings.Split(s, ":")
	if len(f) < 7 {
		return Revision{}, fmt.Errorf("%w: %q has %d of 7 fields", ErrMalformedRevision, s, len(f))
	}

	var connected bool
	switch f[2] {
	case "true":
		connected = true
	case "false":
	default:
		return Revision{}, fmt.Errorf("%w: connected flag %q in %q", ErrMalformedRevision, f[2], s)
	}

	return Revision{
		ThermostatID:       f[0],
		ThermostatName:     f[1],
		Connected:          connected,
		ThermostatRevision: f[3],
		AlertsRevision:     f[4],
		RuntimeRevision:    f[5],
		IntervalRevision:   f[6],
	}, nil
}

// EquipmentStatus is one decoded statusList entry: the thermostat and the
// equipment currently running on it.
type EquipmentStatus struct {
	ThermostatID string
	Running      []string
}

func ParseEquipmentStatus(s string) (EquipmentStatus, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return EquipmentStatus{}, fmt.Errorf("malformed status record %q", s)
	}
	es := EquipmentStatus{ThermostatID: s[:i]}
	if rest := s[i+1:]; rest != "" {
		es.Running = strings.Split(rest, ",")
	}
	return es, nil
}

type summaryResponse struct {
	RevisionList    []string `json:"revisionList"`
	ThermostatCount int      `json:"thermostatCount"`
	StatusList      []string `json:"statusList"`
	RequestStatus
}

type ThermostatSummary struct {
	Revisions       []Revision
	ThermostatCount int
	StatusList      []string
	Status          Status
}

// Revision finds the record for a thermostat identifier.
func (s ThermostatSummary) Revision(id string) (Revision, bool) {
	for _, r := range s.Revisions {
		if r.ThermostatID == id {
			return r, true
		}
	}
	return Revision{}, false
}

// Equipment decodes the statusList.
func (s ThermostatSummary) Equipment() ([]EquipmentStatus, error) {
	out := make([]EquipmentStatus, 0, len(s.StatusList))
	for _, st := range s.StatusList {
		es, err := ParseEquipmentStatus(st)
		if err != nil {
			return nil, err
		}
		out = append(out, es)
	}
	return out, nil
}

// DecodeThermostatSummary decodes a summary response. A single bad revision
// record fails the whole response.
func DecodeThermostatSummary(d []byte) (ThermostatSummary, error) {
	var raw summaryResponse
	if err := json.Unmarshal(d, &raw); err != nil {
		return ThermostatSummary{}, fmt.Errorf("decode summary: %w", err)
	}

	sum := ThermostatSummary{
		Revisions:       make([]Revision, 0, len(raw.RevisionList)),
		ThermostatCount: raw.ThermostatCount,
		StatusList:      raw.StatusList,
		Status:          raw.Status,
	}
	for _, r := range raw.RevisionList {
		rev, err := ParseRevision(r)
		if err != nil {
			return ThermostatSummary{}, fmt.Errorf("decode summary: %w", err)
		}
		sum.Revisions = append(sum.Revisions, rev)
	}
	return sum, nil
}

// BuildSummaryQuery is the query string of a thermostatSummary request.
func BuildSummaryQuery(sel Selection) (url.Values, error) {
	req, err := json.Marshal(struct {
		Selection Selection `json:"selection"`
	}{sel})
	if err != nil {
		return nil, fmt.Errorf("encode summary request: %w", err)
	}
	params := url.Values{}
	params.Add("format", "json")
	params.Add("body", string(req))
	return params, nil
}

func (c *Client) ThermostatSummary(ctx context.Context, sel Selection) (ThermostatSummary, error) {
	params, err := BuildSummaryQuery(sel)
	if err != nil {
		return ThermostatSummary{}, err
	}
	body, err := c.fetch(ctx, http.MethodGet, "/1/thermostatSummary", params, nil)
	if err != nil {
		return ThermostatSummary{}, err
	}
	return DecodeThermostatSummary(body)
}
