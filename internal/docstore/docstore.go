// Package docstore defines how the field agent talks to the remote
// document backend: which collection a write targets, which merge
// strategy each field uses, and the typed extra data that rides along
// with an attachment upload.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the target document does not exist.
var ErrNotFound = errors.New("document not found")

// Domain identifies the record family a pending upload targets.
type Domain string

const (
	DomainMaintenance Domain = "maintenance"
	DomainRefueling   Domain = "refueling"
	DomainVehicle     Domain = "vehicle"
)

// Collection returns the backend collection name for the domain.
func (d Domain) Collection() string {
	switch d {
	case DomainVehicle:
		return "vehicles"
	default:
		return string(d)
	}
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	switch d {
	case DomainMaintenance, DomainRefueling, DomainVehicle:
		return true
	}
	return false
}

// MergeStrategy decides how an attachment URL lands on its target field.
type MergeStrategy int

const (
	// Replace overwrites the scalar field with the new URL.
	Replace MergeStrategy = iota
	// ArrayUnion appends the URL to a list field unless already present.
	ArrayUnion
)

// unionFields are the multi-valued attachment fields. Everything else is
// a scalar overwrite.
var unionFields = map[string]bool{
	"photos":       true,
	"audioHistory": true,
}

// StrategyFor returns the merge strategy declared for a target field.
func StrategyFor(field string) MergeStrategy {
	if unionFields[field] {
		return ArrayUnion
	}
	return Replace
}

// Patch describes one attachment application: put URL onto Field of the
// document DocumentID in the domain's collection, merging Extra in the
// same update.
type Patch struct {
	Domain     Domain
	DocumentID string
	Field      string
	URL        string
	Extra      Extra
}

// Extra is the typed merge bag attached to a pending upload. Each domain
// has its own patch type so mismatched fields fail at compile time.
type Extra interface {
	// Fields returns the non-nil fields as a backend-ready map.
	Fields() map[string]any
}

// MaintenancePatch carries extra maintenance fields to merge.
type MaintenancePatch struct {
	Description *string  `json:"description,omitempty"`
	Kind        *string  `json:"kind,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`
	OdometerKm  *float64 `json:"odometerKm,omitempty"`
}

func (p MaintenancePatch) Fields() map[string]any {
	m := map[string]any{}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Kind != nil {
		m["kind"] = *p.Kind
	}
	if p.Cost != nil {
		m["cost"] = *p.Cost
	}
	if p.OdometerKm != nil {
		m["odometerKm"] = *p.OdometerKm
	}
	return m
}

// RefuelingPatch carries extra refueling fields to merge.
type RefuelingPatch struct {
	Liters     *float64 `json:"liters,omitempty"`
	TotalCost  *float64 `json:"totalCost,omitempty"`
	OdometerKm *float64 `json:"odometerKm,omitempty"`
	FullTank   *bool    `json:"fullTank,omitempty"`
}

func (p RefuelingPatch) Fields() map[string]any {
	m := map[string]any{}
	if p.Liters != nil {
		m["liters"] = *p.Liters
	}
	if p.TotalCost != nil {
		m["totalCost"] = *p.TotalCost
	}
	if p.OdometerKm != nil {
		m["odometerKm"] = *p.OdometerKm
	}
	if p.FullTank != nil {
		m["fullTank"] = *p.FullTank
	}
	return m
}

// VehiclePatch carries extra vehicle fields to merge.
type VehiclePatch struct {
	Status *string `json:"status,omitempty"`
	Plate  *string `json:"plate,omitempty"`
}

func (p VehiclePatch) Fields() map[string]any {
	m := map[string]any{}
	if p.Status != nil {
		m["status"] = *p.Status
	}
	if p.Plate != nil {
		m["plate"] = *p.Plate
	}
	return m
}

// EncodeExtra serializes a typed extra for durable queue storage.
// A nil extra encodes to nil.
func EncodeExtra(e Extra) ([]byte, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// DecodeExtra restores the typed extra for the given domain. Empty data
// decodes to nil.
func DecodeExtra(d Domain, data []byte) (Extra, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch d {
	case DomainMaintenance:
		var p MaintenancePatch
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case DomainRefueling:
		var p RefuelingPatch
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case DomainVehicle:
		var p VehiclePatch
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown domain %q", d)
	}
}

// Profile is the slice of a user document the agent caches locally.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Store is the remote document backend as seen by the sync engine and
// the agent's profile loader.
type Store interface {
	ApplyPatch(ctx context.Context, p Patch) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
