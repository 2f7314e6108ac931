package eco

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// https://www.ecobee.com/home/developer/api/documentation/v1/operations/post-update-thermostats.shtml

const (
	ModeAuto    = "auto"
	ModeAuxHeat = "auxHeatOnly"
	ModeCool    = "cool"
	ModeHeat    = "heat"
	ModeOff     = "off"
)

type Settings struct {
	HVACMode string `json:"hvacMode,omitempty"`
}

// ThermostatPatch holds the writable thermostat properties of an update.
type ThermostatPatch struct {
	Identifier string    `json:"identifier"`
	Settings   *Settings `json:"settings,omitempty"`
}

type Function struct {
	Type   string      `json:"type"`
	Params interface{} `json:"params"`
}

type UpdateThermostatRequest struct {
	Selection  Selection        `json:"selection"`
	Thermostat *ThermostatPatch `json:"thermostat,omitempty"`
	Functions  []Function       `json:"functions,omitempty"`
}

// SetHVACMode builds an update switching one thermostat's mode.
func SetHVACMode(id string, mode string) UpdateThermostatRequest {
	return UpdateThermostatRequest{
		Selection: Registered(NoInclude),
		Thermostat: &ThermostatPatch{
			Identifier: id,
			Settings:   &Settings{HVACMode: mode},
		},
	}
}

// ResumeProgram builds an update cancelling holds on the given thermostats.
func ResumeProgram(all bool, ids ...string) UpdateThermostatRequest {
	return UpdateThermostatRequest{
		Selection: Thermostats(NoInclude, ids...),
		Functions: []Function{{
			Type:   "resumeProgram",
			Params: map[string]bool{"resumeAll": all},
		}},
	}
}

type UpdateResponse struct {
	Status Status `json:"status"`
}

func DecodeUpdateResponse(d []byte) (UpdateResponse, error) {
	var res UpdateResponse
	if err := json.Unmarshal(d, &res); err != nil {
		return UpdateResponse{}, fmt.Errorf("decode update response: %w", err)
	}
	return res, nil
}

// BuildUpdateBody is the percent-encoded JSON body of an update request.
func BuildUpdateBody(r UpdateThermostatRequest) ([]byte, error) {
	req, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode update request: %w", err)
	}
	return []byte(percentEncode(string(req))), nil
}

// percentEncode escapes everything but unreserved characters, spaces as %20.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (c *Client) UpdateThermostat(ctx context.Context, r UpdateThermostatRequest) (UpdateResponse, error) {
	body, err := BuildUpdateBody(r)
	if err != nil {
		return UpdateResponse{}, err
	}
	params := url.Values{}
	params.Add("format", "json")

	res, err := c.fetch(ctx, http.MethodPost, "/1/thermostat", params, body)
	if err != nil {
		return UpdateResponse{}, err
	}
	return DecodeUpdateResponse(res)
}
