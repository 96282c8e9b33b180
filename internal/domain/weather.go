package domain

import (
	"context"
	"math"
)

const (
	// MinSunHours is the floor applied when deriving sun hours from cloud cover.
	MinSunHours = 4.0

	// sunHoursYield accounts for low sun angles at the ends of the day.
	sunHoursYield = 0.8
)

// WeatherReading is the current weather at a property, with sun hours already
// derated for cloud cover.
type WeatherReading struct {
	AverageSunHours      float64 `json:"average_sun_hours"`
	CloudCoveragePercent float64 `json:"cloud_coverage"`
	TemperatureCelsius   float64 `json:"temperature"`
	HumidityPercent      float64 `json:"humidity"`
	ConditionDescription string  `json:"weather_condition"`
	WindSpeed            float64 `json:"wind_speed"` // m/s
}

// WeatherProvider fetches current conditions for a coordinate pair.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (WeatherReading, error)
}

// DeriveSunHours converts cloud coverage (percent) into usable sun hours:
// 8 * (1 - cloud/100) * 0.8, floored at 4 and rounded to 1 decimal.
// Coverage outside [0, 100] is clamped first.
func DeriveSunHours(cloudCoveragePercent float64) float64 {
	cloud := math.Max(0, math.Min(100, cloudCoveragePercent))
	if math.IsNaN(cloudCoveragePercent) {
		cloud = 100
	}
	hours := BaseDaylightHours * (1 - cloud/100) * sunHoursYield
	return round1(math.Max(MinSunHours, hours))
}

// CleanEnergyPercent estimates the share of demand covered by solar for a
// given number of sun hours: 75 + 3 per hour above 4, capped at 95.
func CleanEnergyPercent(sunHours float64) float64 {
	return round1(math.Min(95, 75+(sunHours-MinSunHours)*3))
}
