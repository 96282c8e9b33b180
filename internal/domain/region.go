package domain

import "strings"

// DefaultRegion is reported when no state keyword matches the address.
const DefaultRegion = "India"

// CentralSubsidyPercent is the national rooftop subsidy when the customer opts in.
const CentralSubsidyPercent = 30.0

// regionKeywords is checked in order; the first matching region wins.
var regionKeywords = []struct {
	region   string
	keywords []string
}{
	{"Maharashtra", []string{"mumbai", "pune", "maharashtra"}},
	{"Karnataka", []string{"bangalore", "bengaluru", "karnataka"}},
	{"Tamil Nadu", []string{"chennai", "tamil nadu"}},
	{"Delhi", []string{"delhi", "new delhi"}},
	{"Telangana", []string{"hyderabad", "telangana"}},
	{"Gujarat", []string{"ahmedabad", "gujarat"}},
}

var stateSubsidyPercent = map[string]float64{
	"Maharashtra": 10,
	"Karnataka":   8,
	"Tamil Nadu":  12,
	"Delhi":       15,
	"Gujarat":     20,
	"Telangana":   5,
}

// DetectRegion infers the state from city or state names in a free-form address.
func DetectRegion(address string) string {
	lower := strings.ToLower(address)
	for _, rk := range regionKeywords {
		for _, kw := range rk.keywords {
			if strings.Contains(lower, kw) {
				return rk.region
			}
		}
	}
	return DefaultRegion
}

// StateSubsidyPercent returns the state-level subsidy for a detected region.
func StateSubsidyPercent(region string) float64 {
	return stateSubsidyPercent[region]
}

// SubsidyInfo describes how a customer in a given state claims subsidies.
type SubsidyInfo struct {
	CentralSubsidy     float64 `json:"central_subsidy"`
	StateSubsidy       float64 `json:"state_subsidy"`
	MaxCapacityKW      float64 `json:"max_capacity_kw"`
	ApplicationProcess string  `json:"application_process"`
	ProcessingTimeDays int     `json:"processing_time_days"`
}

var subsidyProcesses = map[string]SubsidyInfo{
	"maharashtra": {
		ApplicationProcess: "Online through MSEDCL portal",
		ProcessingTimeDays: 30,
	},
}

var defaultSubsidyProcess = SubsidyInfo{
	ApplicationProcess: "Contact local electricity board",
	ProcessingTimeDays: 45,
}

// LookupSubsidy returns subsidy details for a state name. Lookup ignores case
// and spaces ("Tamil Nadu" and "tamilnadu" match). Unknown states get the
// central subsidy only.
func LookupSubsidy(state string) SubsidyInfo {
	key := strings.ToLower(strings.ReplaceAll(state, " ", ""))

	info, ok := subsidyProcesses[key]
	if !ok {
		info = defaultSubsidyProcess
	}
	info.CentralSubsidy = CentralSubsidyPercent
	info.MaxCapacityKW = 10
	for region, pct := range stateSubsidyPercent {
		if strings.ToLower(strings.ReplaceAll(region, " ", "")) == key {
			info.StateSubsidy = pct
			break
		}
	}
	return info
}
