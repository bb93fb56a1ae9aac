package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// VisitorState is the lifecycle state of a visitor.
type VisitorState string

const (
	VisitorIdle             VisitorState = "idle"
	VisitorWalkingToShop    VisitorState = "walking_to_shop"
	VisitorInShop           VisitorState = "in_shop"
	VisitorWalkingToVehicle VisitorState = "walking_to_vehicle"
	VisitorDone             VisitorState = "done"
)

// WalkKind names the leg a walking visitor is on.
type WalkKind string

const (
	WalkNone      WalkKind = "none"
	WalkToShop    WalkKind = "to_shop"
	WalkToVehicle WalkKind = "to_vehicle"
)

type visitorEvent int

const (
	visitorParked visitorEvent = iota
	visitorReachedShop
	visitorShopDone
	visitorReachedVehicle
)

func (e visitorEvent) String() string {
	switch e {
	case visitorParked:
		return "parked"
	case visitorReachedShop:
		return "reached-shop"
	case visitorShopDone:
		return "shop-done"
	case visitorReachedVehicle:
		return "reached-vehicle"
	default:
		return fmt.Sprintf("visitorEvent(%d)", int(e))
	}
}

// Visitor is the person travelling with a vehicle. Owned 1:1 by its Vehicle.
// Walking legs are timed analytically (distance / walk speed) and both legs
// accumulate into totalWalkingTime, which is never reset.
type Visitor struct {
	id           string
	accessible   bool
	walkSpeed    float64
	lotSpeed     float64
	shopDuration float64

	state    VisitorState
	walk     Motion
	position Point

	shopEntryTime float64
	shopExitTime  float64 // clock value at which the visit is over

	lastLegDuration  float64
	walkLegs         []float64
	totalWalkingTime float64
	totalDrivingTime float64
}

func newVisitor(id string, accessible bool, shopDuration float64, motion MotionConfig) *Visitor {
	speed := motion.WalkSpeed
	if accessible {
		speed = motion.AccessibleWalkSpeed()
	}
	return &Visitor{
		id:           id,
		accessible:   accessible,
		walkSpeed:    speed,
		lotSpeed:     motion.LotSpeed,
		shopDuration: shopDuration,
		state:        VisitorIdle,
		walkLegs:     make([]float64, 0, 2),
	}
}

func (v *Visitor) ID() string                { return v.id }
func (v *Visitor) Accessible() bool          { return v.accessible }
func (v *Visitor) WalkSpeed() float64        { return v.walkSpeed }
func (v *Visitor) LotSpeed() float64         { return v.lotSpeed }
func (v *Visitor) ShopDuration() float64     { return v.shopDuration }
func (v *Visitor) State() VisitorState       { return v.state }
func (v *Visitor) Position() Point           { return v.position }
func (v *Visitor) TotalWalkingTime() float64 { return v.totalWalkingTime }
func (v *Visitor) TotalDrivingTime() float64 { return v.totalDrivingTime }

// WalkLegs returns the durations of completed walk legs in order.
func (v *Visitor) WalkLegs() []float64 {
	legs := make([]float64, len(v.walkLegs))
	copy(legs, v.walkLegs)
	return legs
}

// IsWalking reports whether the visitor is currently on a walk leg.
func (v *Visitor) IsWalking() bool {
	return v.state == VisitorWalkingToShop || v.state == VisitorWalkingToVehicle
}

// WalkKind returns which leg the visitor is on, or WalkNone.
func (v *Visitor) WalkKind() WalkKind {
	switch v.state {
	case VisitorWalkingToShop:
		return WalkToShop
	case VisitorWalkingToVehicle:
		return WalkToVehicle
	default:
		return WalkNone
	}
}

// InShop reports whether the visitor is inside the building.
func (v *Visitor) InShop() bool { return v.state == VisitorInShop }

// transition is the only place the visitor's state changes. from/to are the
// endpoints of the walk leg started by the event (ignored otherwise).
func (v *Visitor) transition(ev visitorEvent, now float64, from, to Point) {
	switch {
	case v.state == VisitorIdle && ev == visitorParked:
		v.startWalk(VisitorWalkingToShop, now, from, to)

	case v.state == VisitorWalkingToShop && ev == visitorReachedShop:
		v.finishWalk()
		v.state = VisitorInShop
		v.shopEntryTime = now
		v.shopExitTime = now + v.shopDuration
		v.debugf("entered shop at %.2fs, will leave at %.2fs", now, v.shopExitTime)

	case v.state == VisitorInShop && ev == visitorShopDone:
		v.debugf("left shop at %.2fs after %.0fs visit", now, now-v.shopEntryTime)
		v.startWalk(VisitorWalkingToVehicle, now, from, to)

	case v.state == VisitorWalkingToVehicle && ev == visitorReachedVehicle:
		v.finishWalk()
		v.state = VisitorDone

	default:
		panic(fmt.Sprintf("visitor %s: illegal transition %s from state %s", v.id, ev, v.state))
	}
}

func (v *Visitor) startWalk(next VisitorState, now float64, from, to Point) {
	v.walk = NewMotion(from, to, now, v.walkSpeed)
	v.position = from
	v.state = next
	v.debugf("walking %s: distance=%.2f, speed=%.2f, time=%.2fs", v.WalkKind(), from.Distance(to), v.walkSpeed, v.walk.Duration)
}

func (v *Visitor) finishWalk() {
	v.position = v.walk.To
	v.lastLegDuration = v.walk.Duration
	v.walkLegs = append(v.walkLegs, v.walk.Duration)
	v.totalWalkingTime += v.walk.Duration
}

// updateWalk interpolates the current leg and fires the arrival event when
// the leg completes. Returns true if the visitor reached its vehicle.
func (v *Visitor) updateWalk(now float64) bool {
	if !v.IsWalking() {
		return false
	}
	v.position = v.walk.PositionAt(now)
	if !v.walk.Done(now) {
		return false
	}
	if v.state == VisitorWalkingToShop {
		v.transition(visitorReachedShop, now, Point{}, Point{})
		return false
	}
	v.transition(visitorReachedVehicle, now, Point{}, Point{})
	return true
}

// shopDue reports whether the shopping timer has expired at now.
func (v *Visitor) shopDue(now float64) bool {
	return v.state == VisitorInShop && now >= v.shopExitTime
}

func (v *Visitor) addDrivingTime(seconds float64) {
	v.totalDrivingTime += seconds
}

func (v *Visitor) debugf(format string, args ...any) {
	logrus.Debugf("visitor %s: "+format, append([]any{v.id}, args...)...)
}
