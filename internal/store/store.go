package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fleetlog-backend/internal/docstore"
	"fleetlog-backend/internal/model"
	"fleetlog-backend/internal/report"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a slug is already taken.
	ErrConflict = errors.New("slug already exists")
	// ErrUnknownField is returned for attachment fields no collection
	// declares.
	ErrUnknownField = errors.New("unknown attachment field")
)

// Store defines the server-side database operations.
type Store interface {
	DB() *gorm.DB
	ApplyAttachment(ctx context.Context, collection, id, field, url string, extra map[string]any) error
	ResolveLink(ctx context.Context, slug string) (string, error)
	CreateLink(ctx context.Context, link *model.AttachmentLink) error
	RespondApproval(ctx context.Context, messageID, status, sender string) error
	RefuelingReadings(ctx context.Context) ([]report.Reading, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for plain CRUD handlers.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ApplyAttachment puts an uploaded attachment URL onto the target
// record's field using the field's declared merge strategy, and merges
// any extra fields in the same transaction. This is the write the field
// agent's sync engine performs for each drained queue entry.
func (s *gormStore) ApplyAttachment(ctx context.Context, collection, id, field, url string, extra map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch collection {
		case "maintenance":
			return applyMaintenance(tx, id, field, url, extra)
		case "refueling":
			return applyRefueling(tx, id, field, url, extra)
		case "vehicles":
			return applyVehicle(tx, id, field, url, extra)
		default:
			return fmt.Errorf("unknown collection %q: %w", collection, ErrNotFound)
		}
	})
}

// mergeList applies the array-union strategy: append unless present.
func mergeList(list model.StringList, url string) model.StringList {
	if list.Contains(url) {
		return list
	}
	return append(list, url)
}

func applyMaintenance(tx *gorm.DB, id, field, url string, extra map[string]any) error {
	var m model.Maintenance
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("maintenance %s: %w", id, ErrNotFound)
		}
		return err
	}

	switch docstore.StrategyFor(field) {
	case docstore.ArrayUnion:
		switch field {
		case "photos":
			m.Photos = mergeList(m.Photos, url)
		case "audioHistory":
			m.AudioHistory = mergeList(m.AudioHistory, url)
		default:
			return fmt.Errorf("maintenance field %q: %w", field, ErrUnknownField)
		}
	default:
		switch field {
		case "audioUrl":
			m.AudioURL = url
		default:
			return fmt.Errorf("maintenance field %q: %w", field, ErrUnknownField)
		}
	}

	for k, v := range extra {
		switch k {
		case "description":
			if s, ok := v.(string); ok {
				m.Description = s
			}
		case "kind":
			if s, ok := v.(string); ok {
				m.Kind = s
			}
		case "cost":
			if f, ok := toFloat(v); ok {
				m.Cost = f
			}
		case "odometerKm":
			if f, ok := toFloat(v); ok {
				m.OdometerKm = &f
			}
		}
	}

	return tx.Save(&m).Error
}

func applyRefueling(tx *gorm.DB, id, field, url string, extra map[string]any) error {
	var r model.Refueling
	if err := tx.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("refueling %s: %w", id, ErrNotFound)
		}
		return err
	}

	switch docstore.StrategyFor(field) {
	case docstore.ArrayUnion:
		switch field {
		case "photos":
			r.Photos = mergeList(r.Photos, url)
		case "audioHistory":
			r.AudioHistory = mergeList(r.AudioHistory, url)
		default:
			return fmt.Errorf("refueling field %q: %w", field, ErrUnknownField)
		}
	default:
		switch field {
		case "audioUrl":
			r.AudioURL = url
		default:
			return fmt.Errorf("refueling field %q: %w", field, ErrUnknownField)
		}
	}

	for k, v := range extra {
		switch k {
		case "liters":
			if f, ok := toFloat(v); ok {
				r.Liters = f
			}
		case "totalCost":
			if f, ok := toFloat(v); ok {
				r.TotalCost = f
			}
		case "odometerKm":
			if f, ok := toFloat(v); ok {
				r.OdometerKm = &f
			}
		case "fullTank":
			if b, ok := v.(bool); ok {
				r.FullTank = b
			}
		}
	}

	return tx.Save(&r).Error
}

func applyVehicle(tx *gorm.DB, id, field, url string, extra map[string]any) error {
	var v model.Vehicle
	if err := tx.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
		}
		return err
	}

	if docstore.StrategyFor(field) != docstore.ArrayUnion || field != "photos" {
		return fmt.Errorf("vehicle field %q: %w", field, ErrUnknownField)
	}
	v.Photos = mergeList(v.Photos, url)

	for k, val := range extra {
		switch k {
		case "status":
			if s, ok := val.(string); ok {
				v.Status = s
			}
		case "plate":
			if s, ok := val.(string); ok {
				v.Plate = s
			}
		}
	}

	return tx.Save(&v).Error
}

// toFloat accepts the numeric shapes JSON decoding produces.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ResolveLink returns the stored URL for a normalized slug.
func (s *gormStore) ResolveLink(ctx context.Context, slug string) (string, error) {
	var link model.AttachmentLink
	err := s.db.WithContext(ctx).First(&link, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("link %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

// CreateLink stores a new slug → URL mapping.
func (s *gormStore) CreateLink(ctx context.Context, link *model.AttachmentLink) error {
	var existing model.AttachmentLink
	err := s.db.WithContext(ctx).First(&existing, "slug = ?", link.Slug).Error
	if err == nil {
		return fmt.Errorf("link %s: %w", link.Slug, ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.WithContext(ctx).Create(link).Error
}

// RespondApproval records a director's answer on the approval message
// and mirrors the status onto the referenced maintenance record.
func (s *gormStore) RespondApproval(ctx context.Context, messageID, status, sender string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg model.ApprovalMessage
		if err := tx.First(&msg, "id = ?", messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("approval message %s: %w", messageID, ErrNotFound)
			}
			return err
		}

		now := time.Now()
		msg.Status = status
		msg.RespondedBy = sender
		msg.RespondedAt = &now
		if err := tx.Save(&msg).Error; err != nil {
			return err
		}

		return tx.Model(&model.Maintenance{}).
			Where("id = ?", msg.MaintenanceID).
			Update("cost_approval", status).Error
	})
}

// RefuelingReadings loads all refueling rows as report readings.
func (s *gormStore) RefuelingReadings(ctx context.Context) ([]report.Reading, error) {
	var rows []model.Refueling
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch refuelings: %w", err)
	}

	readings := make([]report.Reading, 0, len(rows))
	for _, r := range rows {
		readings = append(readings, report.Reading{
			VehicleID:  r.VehicleID,
			Time:       r.Date,
			OdometerKm: r.OdometerKm,
			Liters:     r.Liters,
			TotalCost:  r.TotalCost,
		})
	}
	return readings, nil
}
