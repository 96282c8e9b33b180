// Package domain models rooftop solar sizing for residential properties.
//
// # Sizing Model
//
// [Calculator.Compute] turns a monthly electricity bill and a current weather
// reading into a system estimate. The model is closed form:
//
//	consumption  = bill / tariff                (kWh per month)
//	required kW  = daily kWh / (sun hours * efficiency)
//	panels       = ceil(required kW * 1000 / panel watts)
//	installed kW = panels * panel watts / 1000
//	savings      = min(generation, consumption) * tariff
//
// Efficiency is the panel's base rating scaled by a linear temperature factor,
// 1 - (T - 25) * 0.004. Hot roofs lose efficiency; cold readings gain it, and
// in extreme cold the result can exceed the panel's base rating. That is
// preserved as-is.
//
// Panel constants:
//
//	standard: 17% efficient, 400 W, 50,000 per kW
//	premium:  20% efficient, 450 W, 65,000 per kW
//
// # Weather Contract
//
// Sun hours reach the calculator already derated for cloud cover by
// [DeriveSunHours]: 8 * (1 - cloud/100) * 0.8, floored at 4 hours. When no
// reading can be fetched the calculator is not invoked at all.
//
// # Enrichment
//
// The narrative layer ([Enricher]) may restate computed figures such as
// payback or CO2 reduction. [Reconcile] overwrites every such figure from
// [SolarMetrics] so the two can never disagree.
//
// # Rounding
//
// Energy, currency and size are rounded to 2 decimals; percentages and years
// to 1. Rounding is half away from zero on the shortest decimal form of the
// value, so 2.675 rounds to 2.68.
package domain
