package service

import (
	"testing"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/pkg/dxs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSlots = []domain.OutputSlot{
	{Name: "a", Unit: domain.UNIT_WATT},
	{Name: "b", Unit: domain.UNIT_VOLT},
	{Name: "c", Unit: domain.UNIT_NONE},
}

func testGroup() domain.Group {
	return domain.Group{Name: "test", Ids: dxs.IdSet{"1", "2", "3"}, Slots: testSlots}
}

func TestMapEqualLengths(t *testing.T) {
	assert := assert.New(t)

	env := dxs.Envelope{{Id: "1", Value: "10"}, {Id: "2", Value: "230.1"}, {Id: "3", Value: "ok"}}
	values := Map(env, testSlots)

	assert.Equal([]SlotValue{
		{Slot: testSlots[0], Raw: "10"},
		{Slot: testSlots[1], Raw: "230.1"},
		{Slot: testSlots[2], Raw: "ok"},
	}, values)
}

func TestMapShorterSequence(t *testing.T) {
	assert := assert.New(t)

	env := dxs.Envelope{{Id: "1", Value: "10"}}
	values := Map(env, testSlots)
	assert.Len(values, 1)
	assert.Equal("a", values[0].Slot.Name)

	env = dxs.Envelope{{Value: "1"}, {Value: "2"}, {Value: "3"}, {Value: "4"}}
	values = Map(env, testSlots)
	assert.Len(values, 3)

	assert.Empty(Map(nil, testSlots))
	assert.Empty(Map(env, nil))
}

func TestMapGroupById(t *testing.T) {
	assert := assert.New(t)

	// reordered and partial response
	env := dxs.Envelope{{Id: "3", Value: "ok"}, {Id: "1", Value: "10"}}
	values := MapGroup(env, testGroup(), MAPPING_BY_ID)

	assert.Equal([]SlotValue{
		{Slot: testSlots[0], Raw: "10"},
		{Slot: testSlots[2], Raw: "ok"},
	}, values)
}

func TestMapGroupFallsBackToPositional(t *testing.T) {
	assert := assert.New(t)

	env := dxs.Envelope{{Id: "9", Value: "10"}, {Id: "1", Value: "20"}}
	values := MapGroup(env, testGroup(), MAPPING_BY_ID)
	assert.Equal([]SlotValue{
		{Slot: testSlots[0], Raw: "10"},
		{Slot: testSlots[1], Raw: "20"},
	}, values)

	env = dxs.Envelope{{Value: "10"}}
	values = MapGroup(env, testGroup(), MAPPING_BY_ID)
	assert.Equal([]SlotValue{{Slot: testSlots[0], Raw: "10"}}, values)
}

func TestMapGroupShortResponseById(t *testing.T) {
	assert := assert.New(t)

	env := dxs.Envelope{{Id: "2", Value: "230.1"}}

	// positional pairing fills the first slot
	assert.Equal([]SlotValue{{Slot: testSlots[0], Raw: "230.1"}}, Map(env, testSlots))
	assert.Equal([]SlotValue{{Slot: testSlots[0], Raw: "230.1"}}, MapGroup(env, testGroup(), MAPPING_POSITIONAL))

	// by id pairing fills the slot of the returned id
	assert.Equal([]SlotValue{{Slot: testSlots[1], Raw: "230.1"}}, MapGroup(env, testGroup(), MAPPING_BY_ID))
}

func TestMapGroupPositional(t *testing.T) {
	assert := assert.New(t)

	env := dxs.Envelope{{Id: "3", Value: "ok"}, {Id: "1", Value: "10"}}
	values := MapGroup(env, testGroup(), MAPPING_POSITIONAL)
	assert.Equal([]SlotValue{
		{Slot: testSlots[0], Raw: "ok"},
		{Slot: testSlots[1], Raw: "10"},
	}, values)
}

func TestParseAndMapBatteryGroup(t *testing.T) {
	require := require.New(t)

	env, err := dxs.Parse(`{"dxsEntries":[{"dxsId":33556226,"value":48.3},{"dxsId":33556229,"value":87}]}`)
	require.NoError(err)

	groups := domain.PollGroups()
	battery := groups[len(groups)-1]
	values := MapGroup(env, battery, MAPPING_BY_ID)
	require.Len(values, 2)
	require.Equal("48.3", values[0].Raw)
	require.Equal("87", values[1].Raw)
	require.Equal(domain.Measurement{Value: 48.3, Unit: domain.UNIT_VOLT}, Coerce(values[0].Raw, values[0].Slot.Unit))
	require.Equal(domain.Measurement{Value: 87, Unit: domain.UNIT_PERCENT}, Coerce(values[1].Raw, values[1].Slot.Unit))
}

func TestParseMappingMode(t *testing.T) {
	assert := assert.New(t)

	m, err := ParseMappingMode("")
	assert.NoError(err)
	assert.Equal(MAPPING_BY_ID, m)
	m, err = ParseMappingMode("positional")
	assert.NoError(err)
	assert.Equal(MAPPING_POSITIONAL, m)
	_, err = ParseMappingMode("random")
	assert.Error(err)
}
