package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// VehicleStatus is the lifecycle state of a vehicle.
type VehicleStatus string

const (
	StatusScheduled VehicleStatus = "scheduled"
	StatusArrived   VehicleStatus = "arrived"
	StatusDriving   VehicleStatus = "driving"
	StatusParked    VehicleStatus = "parked"
	StatusShopping  VehicleStatus = "shopping"
	StatusExiting   VehicleStatus = "exiting"
	StatusExited    VehicleStatus = "exited"
)

// HoldsSpace reports whether a vehicle in this status must hold a space.
func (s VehicleStatus) HoldsSpace() bool {
	switch s {
	case StatusDriving, StatusParked, StatusShopping, StatusExiting:
		return true
	default:
		return false
	}
}

type vehicleEvent int

const (
	vehicleArrive vehicleEvent = iota
	vehicleAssigned
	vehicleLotFull
	vehicleMotionDone
	vehicleBeginShopping
	vehicleVisitorReturned
)

func (e vehicleEvent) String() string {
	switch e {
	case vehicleArrive:
		return "arrive"
	case vehicleAssigned:
		return "assigned"
	case vehicleLotFull:
		return "lot-full"
	case vehicleMotionDone:
		return "motion-done"
	case vehicleBeginShopping:
		return "begin-shopping"
	case vehicleVisitorReturned:
		return "visitor-returned"
	default:
		return fmt.Sprintf("vehicleEvent(%d)", int(e))
	}
}

// Vehicle models one car's trip through the lot.
// Status changes only through transition.
type Vehicle struct {
	id    string
	color string
	glyph string

	facility *Facility
	visitor  *Visitor

	originalArrival  float64 // scheduled arrival before any full-lot retry
	scheduledArrival float64
	seq              uint64 // pending-queue tie breaker
	retries          int

	status           VehicleStatus
	actualArrival    *float64
	drivingStart     *float64
	parkingTime      *float64
	exitDrivingStart *float64
	exitTime         *float64

	position Point
	motion   Motion
	space    *Space
	// lastSpace survives exit so completed records still name the space used.
	lastSpace int
}

func newVehicle(arr Arrival, facility *Facility, motion MotionConfig, color, glyph string) *Vehicle {
	return &Vehicle{
		id:               arr.ID,
		color:            color,
		glyph:            glyph,
		facility:         facility,
		visitor:          newVisitor(visitorIDFor(arr.ID), arr.Accessible, arr.ShopDuration, motion),
		originalArrival:  arr.Time,
		scheduledArrival: arr.Time,
		status:           StatusScheduled,
		lastSpace:        -1,
	}
}

func visitorIDFor(vehicleID string) string {
	return "visitor_of_" + vehicleID
}

func (v *Vehicle) ID() string                { return v.id }
func (v *Vehicle) Status() VehicleStatus     { return v.status }
func (v *Vehicle) Visitor() *Visitor         { return v.visitor }
func (v *Vehicle) Position() Point           { return v.position }
func (v *Vehicle) ScheduledArrival() float64 { return v.scheduledArrival }
func (v *Vehicle) OriginalArrival() float64  { return v.originalArrival }
func (v *Vehicle) Retries() int              { return v.retries }

// AssignedSpace returns the held space or nil.
func (v *Vehicle) AssignedSpace() *Space { return v.space }

// transition is the single place a vehicle's status changes. space is the
// claimed space for vehicleAssigned; delay is the full-lot delay for
// vehicleLotFull. Unexpected (state, event) pairs panic.
func (v *Vehicle) transition(ev vehicleEvent, now float64, space *Space, delay float64) {
	switch {
	case v.status == StatusScheduled && ev == vehicleArrive:
		v.status = StatusArrived
		v.actualArrival = ptr(now)
		v.position = v.facility.EntrancePoint()
		v.debugf("arrived at %.2fs (scheduled %.2fs)", now, v.scheduledArrival)

	case v.status == StatusArrived && ev == vehicleAssigned:
		if space == nil || space.Occupant() != v.id {
			panic(fmt.Sprintf("vehicle %s: assigned a space it does not occupy", v.id))
		}
		v.space = space
		v.lastSpace = space.Index()
		v.status = StatusDriving
		v.drivingStart = ptr(now)
		v.motion = NewMotion(v.position, space.Center(), now, v.visitor.lotSpeed)
		v.debugf("driving to space %d: distance=%.2f, time=%.2fs", space.Index(), v.motion.From.Distance(v.motion.To), v.motion.Duration)

	case v.status == StatusArrived && ev == vehicleLotFull:
		v.retries++
		v.scheduledArrival += delay
		v.visitor.addDrivingTime(delay)
		v.status = StatusScheduled
		v.actualArrival = nil
		v.position = Point{}
		logrus.Warnf("vehicle %s: lot full at %.2fs, retry %d at %.2fs", v.id, now, v.retries, v.scheduledArrival)

	case v.status == StatusDriving && ev == vehicleMotionDone:
		v.visitor.addDrivingTime(v.motion.Duration)
		v.position = v.motion.To
		v.status = StatusParked
		v.parkingTime = ptr(now)
		v.debugf("parked in space %d at %.2fs", v.space.Index(), now)
		v.transition(vehicleBeginShopping, now, nil, 0)

	case v.status == StatusParked && ev == vehicleBeginShopping:
		v.visitor.transition(visitorParked, now, v.position, v.facility.BuildingPoint())
		v.status = StatusShopping

	case v.status == StatusShopping && ev == vehicleVisitorReturned:
		v.status = StatusExiting
		v.exitDrivingStart = ptr(now)
		v.motion = NewMotion(v.position, v.facility.ExitPoint(), now, v.visitor.lotSpeed)
		v.debugf("exiting from space %d: distance=%.2f, time=%.2fs", v.space.Index(), v.motion.From.Distance(v.motion.To), v.motion.Duration)

	case v.status == StatusExiting && ev == vehicleMotionDone:
		v.visitor.addDrivingTime(v.motion.Duration)
		v.position = v.motion.To
		if !v.space.Vacate(now) {
			panic(fmt.Sprintf("vehicle %s: space %d already vacant on exit", v.id, v.space.Index()))
		}
		v.space = nil
		v.status = StatusExited
		v.exitTime = ptr(now)
		v.debugf("exited at %.2fs", now)

	default:
		panic(fmt.Sprintf("vehicle %s: illegal transition %s from status %s", v.id, ev, v.status))
	}
}

// updateMotion advances driving, exiting and the visitor's walk at now,
// repeating until nothing else can change at this instant (zero-length
// moves complete immediately).
func (v *Vehicle) updateMotion(now float64) {
	for {
		switch v.status {
		case StatusDriving, StatusExiting:
			v.position = v.motion.PositionAt(now)
			if !v.motion.Done(now) {
				return
			}
			v.transition(vehicleMotionDone, now, nil, 0)
		case StatusShopping:
			if !v.visitor.IsWalking() {
				return
			}
			before := v.visitor.State()
			if v.visitor.updateWalk(now) {
				v.transition(vehicleVisitorReturned, now, nil, 0)
				continue
			}
			if v.visitor.State() == before {
				return
			}
		default:
			return
		}
	}
}

// updateShopping starts the walk back once the visitor's shop timer expires.
func (v *Vehicle) updateShopping(now float64) {
	if v.status != StatusShopping || !v.visitor.shopDue(now) {
		return
	}
	v.visitor.transition(visitorShopDone, now, v.facility.BuildingPoint(), v.position)
}

func (v *Vehicle) debugf(format string, args ...any) {
	logrus.Debugf("vehicle %s: "+format, append([]any{v.id}, args...)...)
}

func ptr(f float64) *float64 { return &f }
