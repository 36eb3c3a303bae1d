// Package report reconstructs distance and consumption figures from the
// unordered stream of refueling readings. Odometer data is sparse and
// dirty: pairs that fail the numeric/monotonic check are skipped, never
// zero-filled, so they cannot deflate the averages.
package report

import (
	"sort"
	"time"
)

// Reading is one refueling observation for a vehicle.
type Reading struct {
	VehicleID  string
	Time       time.Time
	OdometerKm *float64
	Liters     float64
	TotalCost  float64
}

// VehicleReport aggregates one vehicle with at least two readings.
type VehicleReport struct {
	VehicleID    string  `json:"vehicleId"`
	DistanceKm   float64 `json:"distanceKm"`
	Liters       float64 `json:"liters"`
	TotalCost    float64 `json:"costTotal"`
	ValidSamples int     `json:"validSamples"`
	KmPerLiter   float64 `json:"kmPerLiter"`
	CostPerKm    float64 `json:"costPerKm"`
}

// FleetReport is the dashboard aggregate.
type FleetReport struct {
	Vehicles         []VehicleReport `json:"vehicles"`
	InsufficientData []string        `json:"insufficientData"`
	TotalDistanceKm  float64         `json:"totalDistanceKm"`
	TotalLiters      float64         `json:"totalLiters"`
	TotalCost        float64         `json:"totalCost"`
	KmPerLiter       float64         `json:"kmPerLiter"`
	CostPerKm        float64         `json:"costPerKm"`
}

// Build groups readings by vehicle, sorts each group by time and diffs
// consecutive odometer pairs. Vehicles with fewer than two readings are
// listed under InsufficientData and excluded from the averages.
func Build(readings []Reading) FleetReport {
	byVehicle := make(map[string][]Reading)
	for _, r := range readings {
		byVehicle[r.VehicleID] = append(byVehicle[r.VehicleID], r)
	}

	ids := make([]string, 0, len(byVehicle))
	for id := range byVehicle {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out FleetReport
	for _, id := range ids {
		group := byVehicle[id]
		if len(group) < 2 {
			out.InsufficientData = append(out.InsufficientData, id)
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].Time.Before(group[j].Time)
		})

		v := VehicleReport{VehicleID: id}
		for i, r := range group {
			v.Liters += r.Liters
			v.TotalCost += r.TotalCost
			if i == 0 {
				continue
			}
			prev := group[i-1].OdometerKm
			cur := r.OdometerKm
			if prev == nil || cur == nil || *cur <= *prev {
				continue
			}
			v.DistanceKm += *cur - *prev
			v.ValidSamples++
		}

		if v.Liters > 0 {
			v.KmPerLiter = v.DistanceKm / v.Liters
		}
		if v.DistanceKm > 0 {
			v.CostPerKm = v.TotalCost / v.DistanceKm
		}

		out.Vehicles = append(out.Vehicles, v)
		out.TotalDistanceKm += v.DistanceKm
		out.TotalLiters += v.Liters
		out.TotalCost += v.TotalCost
	}

	if out.TotalLiters > 0 {
		out.KmPerLiter = out.TotalDistanceKm / out.TotalLiters
	}
	if out.TotalDistanceKm > 0 {
		out.CostPerKm = out.TotalCost / out.TotalDistanceKm
	}
	return out
}
