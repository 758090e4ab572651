package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/shiftlog/internal/db"
	"github.com/alexanderramin/shiftlog/internal/domain"
)

const travelColumns = `id, user_id, start_time, end_time,
	start_lat, start_lng, start_address, end_lat, end_lng, end_address,
	distance_km, destination, purpose, project_id, created_at, updated_at`

// SQLiteTravelRepo implements TravelRepo using a SQLite database.
type SQLiteTravelRepo struct {
	db db.DBTX
}

func NewSQLiteTravelRepo(db db.DBTX) *SQLiteTravelRepo {
	return &SQLiteTravelRepo{db: db}
}

func (r *SQLiteTravelRepo) Create(ctx context.Context, t *domain.TravelOrder) error {
	query := `INSERT INTO travel_orders (` + travelColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	endLat, endLng, endAddr := endLocationValues(t.EndLocation)
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		formatTime(t.StartTime),
		nullableTimeToString(t.EndTime),
		t.StartLocation.Lat,
		t.StartLocation.Lng,
		t.StartLocation.Address,
		endLat, endLng, endAddr,
		t.DistanceKm,
		t.Destination,
		t.Purpose,
		nullableStr(t.ProjectID),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting travel order: %w", err)
	}
	return nil
}

func (r *SQLiteTravelRepo) GetByID(ctx context.Context, id string) (*domain.TravelOrder, error) {
	query := `SELECT ` + travelColumns + ` FROM travel_orders WHERE id = ?`
	return r.scanTravel(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTravelRepo) GetOpen(ctx context.Context, userID string) (*domain.TravelOrder, error) {
	query := `SELECT ` + travelColumns + ` FROM travel_orders
		WHERE user_id = ? AND end_time IS NULL
		ORDER BY start_time DESC LIMIT 1`
	return r.scanTravel(r.db.QueryRowContext(ctx, query, userID))
}

func (r *SQLiteTravelRepo) Update(ctx context.Context, t *domain.TravelOrder) error {
	query := `UPDATE travel_orders SET
		end_time = ?, end_lat = ?, end_lng = ?, end_address = ?,
		distance_km = ?, destination = ?, purpose = ?, project_id = ?, updated_at = ?
		WHERE id = ?`
	endLat, endLng, endAddr := endLocationValues(t.EndLocation)
	res, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(t.EndTime),
		endLat, endLng, endAddr,
		t.DistanceKm,
		t.Destination,
		t.Purpose,
		nullableStr(t.ProjectID),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating travel order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating travel order: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("travel order %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTravelRepo) ListByStartRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.TravelOrder, error) {
	query := `SELECT ` + travelColumns + ` FROM travel_orders
		WHERE user_id = ? AND start_time >= ? AND start_time <= ?
		ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, query, userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("listing travel orders by range: %w", err)
	}
	defer rows.Close()

	var travels []*domain.TravelOrder
	for rows.Next() {
		t, err := r.scanTravel(rows)
		if err != nil {
			return nil, err
		}
		travels = append(travels, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating travel orders: %w", err)
	}
	return travels, nil
}

func (r *SQLiteTravelRepo) scanTravel(row rowScanner) (*domain.TravelOrder, error) {
	var t domain.TravelOrder
	var startStr, createdStr, updatedStr string
	var endStr, endAddr, projectID sql.NullString
	var endLat, endLng sql.NullFloat64

	err := row.Scan(
		&t.ID, &t.UserID, &startStr, &endStr,
		&t.StartLocation.Lat, &t.StartLocation.Lng, &t.StartLocation.Address,
		&endLat, &endLng, &endAddr,
		&t.DistanceKm, &t.Destination, &t.Purpose, &projectID,
		&createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("travel order: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning travel order: %w", err)
	}

	if t.StartTime, err = parseTime(startStr, "start_time"); err != nil {
		return nil, err
	}
	if t.EndTime, err = parseNullableTime(endStr, "end_time"); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedStr, "updated_at"); err != nil {
		return nil, err
	}
	if endLat.Valid && endLng.Valid {
		t.EndLocation = &domain.Location{Lat: endLat.Float64, Lng: endLng.Float64, Address: endAddr.String}
	}
	if projectID.Valid {
		id := projectID.String
		t.ProjectID = &id
	}
	return &t, nil
}

func endLocationValues(loc *domain.Location) (lat, lng, addr interface{}) {
	if loc == nil {
		return nil, nil, nil
	}
	return loc.Lat, loc.Lng, loc.Address
}
