package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		address  string
		expected string
	}{
		{"12 Linking Road, Bandra West, Mumbai 400050", "Maharashtra"},
		{"Koregaon Park, PUNE", "Maharashtra"},
		{"Indiranagar, Bengaluru", "Karnataka"},
		{"T. Nagar, Chennai, Tamil Nadu", "Tamil Nadu"},
		{"Connaught Place, New Delhi", "Delhi"},
		{"Banjara Hills, Hyderabad", "Telangana"},
		{"SG Highway, Ahmedabad", "Gujarat"},
		{"MG Road, Kochi, Kerala", DefaultRegion},
		{"", DefaultRegion},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectRegion(tt.address))
		})
	}
}

func TestStateSubsidyPercent(t *testing.T) {
	assert.Equal(t, 20.0, StateSubsidyPercent("Gujarat"))
	assert.Equal(t, 12.0, StateSubsidyPercent("Tamil Nadu"))
	assert.Equal(t, 0.0, StateSubsidyPercent(DefaultRegion))
}

func TestLookupSubsidy(t *testing.T) {
	t.Run("maharashtra has an online process", func(t *testing.T) {
		info := LookupSubsidy("Maharashtra")
		assert.Equal(t, SubsidyInfo{
			CentralSubsidy:     30,
			StateSubsidy:       10,
			MaxCapacityKW:      10,
			ApplicationProcess: "Online through MSEDCL portal",
			ProcessingTimeDays: 30,
		}, info)
	})

	t.Run("case and spaces ignored", func(t *testing.T) {
		info := LookupSubsidy("tamilnadu")
		assert.Equal(t, 12.0, info.StateSubsidy)
		assert.Equal(t, "Contact local electricity board", info.ApplicationProcess)
		assert.Equal(t, 45, info.ProcessingTimeDays)

		assert.Equal(t, info, LookupSubsidy("TAMIL NADU"))
	})

	t.Run("unknown state gets central subsidy only", func(t *testing.T) {
		info := LookupSubsidy("Goa")
		assert.Equal(t, 30.0, info.CentralSubsidy)
		assert.Equal(t, 0.0, info.StateSubsidy)
		assert.Equal(t, 10.0, info.MaxCapacityKW)
	})
}
