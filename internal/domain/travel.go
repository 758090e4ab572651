package domain

import "time"

// Location is a coordinate pair with an optional resolved address.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

// TravelOrder is one trip. EndTime and EndLocation are nil while the trip is open.
type TravelOrder struct {
	ID     string
	UserID string

	StartTime     time.Time
	EndTime       *time.Time
	StartLocation Location
	EndLocation   *Location

	DistanceKm  float64
	Destination string
	Purpose     string
	ProjectID   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTravelOrder returns an open trip starting at now from start.
func NewTravelOrder(id, userID string, now time.Time, start Location) *TravelOrder {
	return &TravelOrder{
		ID:            id,
		UserID:        userID,
		StartTime:     now,
		StartLocation: start,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (t *TravelOrder) IsOpen() bool {
	return t.EndTime == nil
}

func (t *TravelOrder) Clone() *TravelOrder {
	if t == nil {
		return nil
	}
	c := *t
	c.EndTime = cloneTime(t.EndTime)
	if t.EndLocation != nil {
		loc := *t.EndLocation
		c.EndLocation = &loc
	}
	if t.ProjectID != nil {
		id := *t.ProjectID
		c.ProjectID = &id
	}
	return &c
}

// Describe overwrites destination, purpose and project when the new values are non-empty.
func (t *TravelOrder) Describe(destination, purpose string, projectID *string) {
	if destination != "" {
		t.Destination = destination
	}
	if purpose != "" {
		t.Purpose = purpose
	}
	if projectID != nil && *projectID != "" {
		id := *projectID
		t.ProjectID = &id
	}
}

// Close fixes the end of the trip and its computed distance.
func (t *TravelOrder) Close(now time.Time, end Location, distanceKm float64) error {
	if !t.IsOpen() {
		return Reject(RejectNotActive, "end_travel", "travel already ended")
	}
	endAt := now
	t.EndTime = &endAt
	t.EndLocation = &end
	t.DistanceKm = distanceKm
	t.UpdatedAt = now
	return nil
}

// ElapsedUntil returns seconds from start to end, or to now while open.
func (t *TravelOrder) ElapsedUntil(now time.Time) int64 {
	if t.EndTime != nil {
		return ElapsedSeconds(t.StartTime, *t.EndTime)
	}
	return ElapsedSeconds(t.StartTime, now)
}

// StrPtrOrNil returns nil for the empty string, so an unset project ID is
// stored as NULL.
func StrPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
