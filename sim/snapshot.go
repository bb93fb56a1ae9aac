package sim

import "github.com/samber/lo"

// VisitorSnapshot is an immutable view of a visitor for presentation and
// reporting. Durations are seconds.
type VisitorSnapshot struct {
	ID               string       `json:"id"`
	Accessible       bool         `json:"accessible"`
	State            VisitorState `json:"state"`
	WalkSpeed        float64      `json:"walk_speed"`
	LotSpeed         float64      `json:"lot_speed"`
	ShopDuration     float64      `json:"shop_duration"`
	LastLegWalkTime  float64      `json:"last_leg_walk_time"`
	TotalWalkingTime float64      `json:"total_walking_time"`
	TotalDrivingTime float64      `json:"total_driving_time"`
	WalkLegs         []float64    `json:"walk_legs"`
	Walking          bool         `json:"walking"`
	WalkKind         WalkKind     `json:"walk_kind"`
	InShop           bool         `json:"in_shop"`
	Position         Point        `json:"position"`
}

// VehicleSnapshot is an immutable view of a vehicle. Optional timestamps
// are nil until the corresponding transition happened.
type VehicleSnapshot struct {
	ID               string          `json:"id"`
	Color            string          `json:"color"`
	Glyph            string          `json:"glyph"`
	Status           VehicleStatus   `json:"status"`
	Position         Point           `json:"position"`
	OriginalArrival  float64         `json:"original_arrival"`
	ScheduledArrival float64         `json:"scheduled_arrival"`
	Retries          int             `json:"retries"`
	ActualArrival    *float64        `json:"actual_arrival,omitempty"`
	DrivingStart     *float64        `json:"driving_start,omitempty"`
	ParkingTime      *float64        `json:"parking_time,omitempty"`
	ExitDrivingStart *float64        `json:"exit_driving_start,omitempty"`
	ExitTime         *float64        `json:"exit_time,omitempty"`
	SpaceIndex       int             `json:"space_index"` // -1 if never assigned
	HoldsSpace       bool            `json:"holds_space"`
	Visitor          VisitorSnapshot `json:"visitor"`
}

// SpaceSnapshot is an immutable view of one space.
type SpaceSnapshot struct {
	Index        int            `json:"index"`
	Bounds       Rect           `json:"bounds"`
	Center       Point          `json:"center"`
	Accessible   bool           `json:"accessible"`
	Occupied     bool           `json:"occupied"`
	Occupant     string         `json:"occupant,omitempty"`
	WalkDistance float64        `json:"walk_distance"`
	Stats        OccupancyStats `json:"stats"`
	Formatted    FormattedStats `json:"formatted"`
}

// FacilitySnapshot is the static geometry plus the current state of every
// space.
type FacilitySnapshot struct {
	Width            float64         `json:"width"`
	Height           float64         `json:"height"`
	Entrance         Rect            `json:"entrance"`
	Exit             Rect            `json:"exit"`
	BuildingEntrance Rect            `json:"building_entrance"`
	Spaces           []SpaceSnapshot `json:"spaces"`
}

// Snapshot is the state of a run right after a tick.
type Snapshot struct {
	Clock   float64           `json:"clock"`
	Running bool              `json:"running"`
	Summary Summary           `json:"summary"`
	Active  []VehicleSnapshot `json:"active"`
}

func snapshotOptional(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return ptr(*p)
}

func (v *Visitor) snapshot() VisitorSnapshot {
	return VisitorSnapshot{
		ID:               v.id,
		Accessible:       v.accessible,
		State:            v.state,
		WalkSpeed:        v.walkSpeed,
		LotSpeed:         v.lotSpeed,
		ShopDuration:     v.shopDuration,
		LastLegWalkTime:  v.lastLegDuration,
		TotalWalkingTime: v.totalWalkingTime,
		TotalDrivingTime: v.totalDrivingTime,
		WalkLegs:         v.WalkLegs(),
		Walking:          v.IsWalking(),
		WalkKind:         v.WalkKind(),
		InShop:           v.InShop(),
		Position:         v.position,
	}
}

func (v *Vehicle) snapshot() VehicleSnapshot {
	return VehicleSnapshot{
		ID:               v.id,
		Color:            v.color,
		Glyph:            v.glyph,
		Status:           v.status,
		Position:         v.position,
		OriginalArrival:  v.originalArrival,
		ScheduledArrival: v.scheduledArrival,
		Retries:          v.retries,
		ActualArrival:    snapshotOptional(v.actualArrival),
		DrivingStart:     snapshotOptional(v.drivingStart),
		ParkingTime:      snapshotOptional(v.parkingTime),
		ExitDrivingStart: snapshotOptional(v.exitDrivingStart),
		ExitTime:         snapshotOptional(v.exitTime),
		SpaceIndex:       v.lastSpace,
		HoldsSpace:       v.space != nil,
		Visitor:          v.visitor.snapshot(),
	}
}

func (s *Space) snapshot(atTime float64) SpaceSnapshot {
	return SpaceSnapshot{
		Index:        s.index,
		Bounds:       s.bounds,
		Center:       s.Center(),
		Accessible:   s.accessible,
		Occupied:     s.occupied,
		Occupant:     s.occupant,
		WalkDistance: s.walkDistance,
		Stats:        s.OccupancyStats(atTime),
		Formatted:    s.FormattedStats(atTime),
	}
}

func vehicleSnapshots(vs []*Vehicle) []VehicleSnapshot {
	return lo.Map(vs, func(v *Vehicle, _ int) VehicleSnapshot { return v.snapshot() })
}

// Snapshot returns the current clock, summary and active vehicles.
func (s *Simulator) Snapshot() Snapshot {
	return Snapshot{
		Clock:   s.clock,
		Running: s.running,
		Summary: s.Summary(),
		Active:  s.ActiveVehicles(),
	}
}

// ActiveVehicles returns the vehicles currently in the lot, in arrival order.
func (s *Simulator) ActiveVehicles() []VehicleSnapshot {
	return vehicleSnapshots(s.active)
}

// PendingSchedule returns the vehicles that have not arrived yet, in the
// order they will be promoted.
func (s *Simulator) PendingSchedule() []VehicleSnapshot {
	return vehicleSnapshots(s.pending.Ordered())
}

// CompletedLog returns exited vehicles in exit order.
func (s *Simulator) CompletedLog() []VehicleSnapshot {
	return vehicleSnapshots(s.completed)
}

// FacilitySnapshot returns portal geometry and the state of every space.
func (s *Simulator) FacilitySnapshot() FacilitySnapshot {
	f := s.facility
	return FacilitySnapshot{
		Width:            f.Width,
		Height:           f.Height,
		Entrance:         f.Entrance,
		Exit:             f.Exit,
		BuildingEntrance: f.BuildingEntrance,
		Spaces:           lo.Map(f.Spaces, func(sp *Space, _ int) SpaceSnapshot { return sp.snapshot(s.clock) }),
	}
}
