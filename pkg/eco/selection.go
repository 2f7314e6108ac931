package eco

import (
	"encoding/json"
	"strings"
)

// https://www.ecobee.com/home/developer/api/documentation/v1/objects/Selection.shtml

type SelectionType string

const (
	SelectRegistered    SelectionType = "registered"
	SelectThermostats   SelectionType = "thermostats"
	SelectManagementSet SelectionType = "managementSet"
)

// Include names one of the selection's include* flags. The zero value means no
// flag is sent.
type Include string

const (
	NoInclude                  Include = ""
	IncludeRuntime             Include = "includeRuntime"
	IncludeExtendedRuntime     Include = "includeExtendedRuntime"
	IncludeElectricity         Include = "includeElectricity"
	IncludeSettings            Include = "includeSettings"
	IncludeLocation            Include = "includeLocation"
	IncludeProgram             Include = "includeProgram"
	IncludeEvents              Include = "includeEvents"
	IncludeDevice              Include = "includeDevice"
	IncludeTechnician          Include = "includeTechnician"
	IncludeUtility             Include = "includeUtility"
	IncludeManagement          Include = "includeManagement"
	IncludeAlerts              Include = "includeAlerts"
	IncludeReminders           Include = "includeReminders"
	IncludeWeather             Include = "includeWeather"
	IncludeHouseDetails        Include = "includeHouseDetails"
	IncludeOemCfg              Include = "includeOemCfg"
	IncludeEquipmentStatus     Include = "includeEquipmentStatus"
	IncludeNotificationSetting Include = "includeNotificationSettings"
	IncludePrivacy             Include = "includePrivacy"
	IncludeVersion             Include = "includeVersion"
	IncludeSecuritySettings    Include = "includeSecuritySettings"
	IncludeSensors             Include = "includeSensors"
	IncludeAudio               Include = "includeAudio"
	IncludeEnergy              Include = "includeEnergy"
	IncludeCapabilities        Include = "includeCapabilities"
)

// Includes lists every flag the API accepts.
var Includes = []Include{
	IncludeRuntime, IncludeExtendedRuntime, IncludeElectricity, IncludeSettings,
	IncludeLocation, IncludeProgram, IncludeEvents, IncludeDevice, IncludeTechnician,
	IncludeUtility, IncludeManagement, IncludeAlerts, IncludeReminders, IncludeWeather,
	IncludeHouseDetails, IncludeOemCfg, IncludeEquipmentStatus, IncludeNotificationSetting,
	IncludePrivacy, IncludeVersion, IncludeSecuritySettings, IncludeSensors, IncludeAudio,
	IncludeEnergy, IncludeCapabilities,
}

type Selection struct {
	Type    SelectionType
	Match   string
	Include Include
}

// Registered selects every thermostat registered to the account.
func Registered(inc Include) Selection {
	return Selection{Type: SelectRegistered, Include: inc}
}

// Thermostats selects thermostats by identifier.
func Thermostats(inc Include, ids ...string) Selection {
	return Selection{Type: SelectThermostats, Match: strings.Join(ids, ","), Include: inc}
}

// MarshalJSON renders the selection as a flat object:
// {"selectionType":..,"selectionMatch":..} with "<include>":true appended when
// an include flag is set.
func (s Selection) MarshalJSON() ([]byte, error) {
	typ, err := json.Marshal(string(s.Type))
	if err != nil {
		return nil, err
	}
	match, err := json.Marshal(s.Match)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`{"selectionType":`)
	b.Write(typ)
	b.WriteString(`,"selectionMatch":`)
	b.Write(match)
	if s.Include != NoInclude {
		inc, err := json.Marshal(string(s.Include))
		if err != nil {
			return nil, err
		}
		b.WriteByte(',')
		b.Write(inc)
		b.WriteString(`:true`)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// JSON is the selection fragment as a string.
func (s Selection) JSON() string {
	b, _ := s.MarshalJSON() // marshaling strings cannot fail
	return string(b)
}
