package domain

import (
	"errors"
	"fmt"

	"github.com/berfenger/kostal2mqtt/pkg/dxs"
)

// Unit tags a measurement with its physical unit. The empty unit marks a
// text value.
type Unit string

const (
	UNIT_NONE          Unit = ""
	UNIT_WATT          Unit = "W"
	UNIT_WATT_HOUR     Unit = "Wh"
	UNIT_KILOWATT_HOUR Unit = "kWh"
	UNIT_VOLT          Unit = "V"
	UNIT_AMPERE        Unit = "A"
	UNIT_HERTZ         Unit = "Hz"
	UNIT_DEGREE_ANGLE  Unit = "°"
	UNIT_PERCENT       Unit = "%"
	UNIT_HOUR          Unit = "h"
	UNIT_MINUTE        Unit = "min"
	UNIT_CELSIUS       Unit = "°C"
)

type OutputSlot struct {
	Name string
	Unit Unit
}

func (s OutputSlot) HasUnit() bool {
	return s.Unit != UNIT_NONE
}

// Observation is the coerced value of one slot: Measurement, Text or Undefined.
type Observation interface {
	observation()
}

type Measurement struct {
	Value float64
	Unit  Unit
}

type Text struct {
	Value string
}

type Undefined struct {
}

func (Measurement) observation() {}
func (Text) observation()        {}
func (Undefined) observation()   {}

func (m Measurement) String() string {
	return fmt.Sprintf("%g %s", m.Value, m.Unit)
}

// Group pairs an id set with the slots its values are published to.
// Slot i receives the value of Ids[i].
type Group struct {
	Name  string
	Ids   dxs.IdSet
	Slots []OutputSlot
}

func (g Group) Validate() error {
	if len(g.Ids) == 0 {
		return fmt.Errorf("group %s: no entries", g.Name)
	}
	if len(g.Ids) != len(g.Slots) {
		return fmt.Errorf("group %s: %d entries but %d slots", g.Name, len(g.Ids), len(g.Slots))
	}
	names := make(map[string]bool, len(g.Slots))
	for _, s := range g.Slots {
		if s.Name == "" {
			return fmt.Errorf("group %s: unnamed slot", g.Name)
		}
		if names[s.Name] {
			return fmt.Errorf("group %s: duplicated slot %s", g.Name, s.Name)
		}
		names[s.Name] = true
	}
	return nil
}

func ValidateGroups(groups []Group) error {
	if len(groups) == 0 {
		return errors.New("no poll groups")
	}
	names := map[string]string{}
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return err
		}
		for _, s := range g.Slots {
			if other, ok := names[s.Name]; ok {
				return fmt.Errorf("slot %s declared in groups %s and %s", s.Name, other, g.Name)
			}
			names[s.Name] = g.Name
		}
	}
	return nil
}

type CycleStatus struct {
	Healthy bool
	Reason  string
}

func Healthy() CycleStatus {
	return CycleStatus{Healthy: true}
}

func Unhealthy(reason string) CycleStatus {
	return CycleStatus{Healthy: false, Reason: reason}
}

func (s CycleStatus) String() string {
	if s.Healthy {
		return STATUS_ONLINE
	}
	if s.Reason == "" {
		return STATUS_OFFLINE
	}
	return fmt.Sprintf("%s: %s", STATUS_OFFLINE, s.Reason)
}
