package domain

import "github.com/berfenger/kostal2mqtt/pkg/dxs"

// Slot tables of the three poll groups, in the order of their id sets.

func primarySlots() []OutputSlot {
	return []OutputSlot{
		{"gridOutputPower", UNIT_WATT},
		{"yield_Day", UNIT_WATT_HOUR},
		{"yield_Total", UNIT_KILOWATT_HOUR},
		{"operatingStatus", UNIT_NONE},
		{"gridVoltageL1", UNIT_VOLT},
		{"gridCurrentL1", UNIT_AMPERE},
		{"gridPowerL1", UNIT_WATT},
		{"gridVoltageL2", UNIT_VOLT},
		{"gridCurrentL2", UNIT_AMPERE},
		{"gridPowerL2", UNIT_WATT},
		{"gridVoltageL3", UNIT_VOLT},
		{"gridCurrentL3", UNIT_AMPERE},
		{"gridPowerL3", UNIT_WATT},
		{"dcPowerPV", UNIT_WATT},
		{"dc1Voltage", UNIT_VOLT},
		{"dc1Current", UNIT_AMPERE},
		{"dc1Power", UNIT_WATT},
		{"dc2Voltage", UNIT_VOLT},
		{"dc2Current", UNIT_AMPERE},
		{"dc2Power", UNIT_WATT},
		{"dc3Voltage", UNIT_VOLT},
		{"dc3Current", UNIT_AMPERE},
		{"dc3Power", UNIT_WATT},
	}
}

func extendedSlots() []OutputSlot {
	return []OutputSlot{
		{"aktHomeConsumptionSolar", UNIT_WATT},
		{"aktHomeConsumptionBat", UNIT_WATT},
		{"aktHomeConsumptionGrid", UNIT_WATT},
		{"phaseSelHomeConsumpL1", UNIT_WATT},
		{"phaseSelHomeConsumpL2", UNIT_WATT},
		{"phaseSelHomeConsumpL3", UNIT_WATT},
		{"gridFreq", UNIT_HERTZ},
		{"gridCosPhi", UNIT_DEGREE_ANGLE},
		{"homeConsumption_Day", UNIT_KILOWATT_HOUR},
		{"ownConsumption_Day", UNIT_KILOWATT_HOUR},
		{"ownConsRate_Day", UNIT_PERCENT},
		{"autonomyDegree_Day", UNIT_PERCENT},
		{"homeConsumption_Total", UNIT_KILOWATT_HOUR},
		{"ownConsumption_Total", UNIT_KILOWATT_HOUR},
		{"totalOperatingTime", UNIT_HOUR},
		{"current", UNIT_AMPERE},
		{"currentDir", UNIT_AMPERE},
		{"chargeCycles", UNIT_NONE},
		{"batteryTemperature", UNIT_CELSIUS},
		{"loginterval", UNIT_MINUTE},
		{"s0InPulseCnt", UNIT_NONE},
		{"ownConsRate_Total", UNIT_PERCENT},
		{"autonomyDegree_Total", UNIT_PERCENT},
	}
}

func batterySlots() []OutputSlot {
	return []OutputSlot{
		{"batteryVoltage", UNIT_VOLT},
		{"batStateOfCharge", UNIT_PERCENT},
	}
}

// PollGroups builds the groups polled on every cycle.
func PollGroups() []Group {
	return []Group{
		{Name: dxs.GROUP_PRIMARY, Ids: dxs.PrimaryEntries(), Slots: primarySlots()},
		{Name: dxs.GROUP_EXTENDED, Ids: dxs.ExtendedEntries(), Slots: extendedSlots()},
		{Name: dxs.GROUP_BATTERY, Ids: dxs.BatteryEntries(), Slots: batterySlots()},
	}
}
