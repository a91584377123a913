package dxs

// IdSet is an ordered list of dxs entry ids requested together in one call.
type IdSet []string

const (
	GROUP_PRIMARY  = "primary"
	GROUP_EXTENDED = "extended"
	GROUP_BATTERY  = "battery"
)

// AC grid, yield and DC string values
var primaryEntries = IdSet{
	"67109120",  // grid output power
	"251658754", // yield day
	"251658753", // yield total
	"16780032",  // operating status
	"67109378",  // grid voltage L1
	"67109377",  // grid current L1
	"67109379",  // grid power L1
	"67109634",  // grid voltage L2
	"67109633",  // grid current L2
	"67109635",  // grid power L2
	"67109890",  // grid voltage L3
	"67109889",  // grid current L3
	"67109891",  // grid power L3
	"33556736",  // dc power pv
	"33555202",  // dc1 voltage
	"33555201",  // dc1 current
	"33555203",  // dc1 power
	"33555458",  // dc2 voltage
	"33555457",  // dc2 current
	"33555459",  // dc2 power
	"33555714",  // dc3 voltage
	"33555713",  // dc3 current
	"33555715",  // dc3 power
}

// home consumption, statistics and battery state
var extendedEntries = IdSet{
	"83886336",  // home consumption from solar
	"83886592",  // home consumption from battery
	"83886848",  // home consumption from grid
	"83887106",  // home consumption L1
	"83887362",  // home consumption L2
	"83887618",  // home consumption L3
	"67110400",  // grid frequency
	"67110656",  // grid cos phi
	"251659010", // home consumption day
	"251659011", // own consumption day
	"251659012", // own consumption rate day
	"251659013", // autonomy degree day
	"251659265", // home consumption total
	"251659266", // own consumption total
	"251658496", // total operating time
	"33556238",  // battery current
	"33556230",  // battery current direction
	"33556228",  // battery charge cycles
	"33556227",  // battery temperature
	"150995968", // log interval
	"184549632", // s0 in pulse count
	"251659267", // own consumption rate total
	"251659268", // autonomy degree total
}

var batteryEntries = IdSet{
	"33556226", // battery voltage
	"33556229", // battery state of charge
}

func PrimaryEntries() IdSet {
	return primaryEntries.Clone()
}

func ExtendedEntries() IdSet {
	return extendedEntries.Clone()
}

func BatteryEntries() IdSet {
	return batteryEntries.Clone()
}

// EntriesByGroup returns the registered id set for a group name.
func EntriesByGroup(group string) (IdSet, bool) {
	switch group {
	case GROUP_PRIMARY:
		return PrimaryEntries(), true
	case GROUP_EXTENDED:
		return ExtendedEntries(), true
	case GROUP_BATTERY:
		return BatteryEntries(), true
	}
	return nil, false
}

func (ids IdSet) Clone() IdSet {
	c := make(IdSet, len(ids))
	copy(c, ids)
	return c
}

func (ids IdSet) Contains(id string) bool {
	for i := range ids {
		if ids[i] == id {
			return true
		}
	}
	return false
}
