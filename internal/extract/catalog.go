package extract

import "fmt"

// Kind selects how a rule turns a matching line into a value.
type Kind int

const (
	// Value takes the text after the marker up to the next ':' or end of line.
	Value Kind = iota
	// State records "inactive" when the line carries _profilestate=i, else "active".
	State
)

const (
	InactiveMarker = "_profilestate=i"
	StateActive    = "active"
	StateInactive  = "inactive"
)

// Rule is one entry of the extraction catalog.
// Scope, when set, must appear in the line before Marker is looked for.
// State rules match on Scope alone.
type Rule struct {
	Scope  string
	Marker string
	Field  string
	Kind   Kind
}

// Catalog is the fixed set of device specific parameters pulled out of a
// Mobotix configuration export.
var Catalog = buildCatalog()

func buildCatalog() []Rule {
	rules := []Rule{
		// ethernet
		{Marker: "HOSTNAME=", Field: "HOSTNAME"},
		{Marker: "IPADDR=", Field: "IPADDR"},
		{Marker: "Camera IP: ", Field: "DefaultIP"},
	}

	// action handler arming
	for i := 1; i <= 20; i++ {
		f := fmt.Sprintf("ah%d_arming", i)
		rules = append(rules, Rule{Marker: f + "=", Field: f})
	}

	rules = append(rules,
		// audio
		Rule{Marker: "MICRO=", Field: "MICRO"},
		Rule{Marker: "SPEAKER=", Field: "SPEAKER"},
		Rule{Marker: "SPEAKERLEVEL=", Field: "SPEAKERLEVEL"},
		// voip
		Rule{Marker: "VOIPVOIP=", Field: "VOIPVOIP"},
		Rule{Marker: ":userid=", Field: "userid"},
		Rule{Marker: ":authid=", Field: "authid"},
		Rule{Marker: "authpwd=", Field: "authpwd"},
		// events
		Rule{Marker: "motion_area=", Field: "motion_area"},
	)

	for i := 1; i <= 5; i++ {
		vm := fmt.Sprintf("VM%d", i)
		scope := "ima=" + vm + ":"
		rules = append(rules,
			Rule{Scope: scope, Marker: ":activity_area=", Field: "activity_area_" + vm},
			Rule{Scope: scope, Field: "profilestate_" + vm, Kind: State},
			Rule{Scope: scope, Marker: "activity_directions=", Field: "activity_directions_" + vm},
			Rule{Scope: scope, Marker: "vm_list=", Field: "vm_list_" + vm},
		)
	}

	rules = append(rules,
		Rule{Scope: "msg=Virtuele_Ronde:", Field: "profilestate_Virtuele_Ronde", Kind: State},
		Rule{Scope: "env=MI:", Field: "profilestate_MI", Kind: State},
		Rule{Scope: "env=MI:", Marker: "mi_lvl=", Field: "MI_lvl"},
		Rule{Scope: "msg=Logo_On:", Field: "profilestate_Logo_On", Kind: State},
		Rule{Scope: "msg=Logo_Off:", Field: "profilestate_Logo_Off", Kind: State},
	)

	for i := 1; i <= 5; i++ {
		bell := fmt.Sprintf("Bell%d", i)
		rules = append(rules, Rule{Scope: "met=" + bell + ":", Field: "profilestate_" + bell, Kind: State})
	}

	return rules
}
