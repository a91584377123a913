package service

import (
	"fmt"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/pkg/dxs"
)

type MappingMode string

const (
	MAPPING_BY_ID      MappingMode = "by_id"
	MAPPING_POSITIONAL MappingMode = "positional"
)

func ParseMappingMode(s string) (MappingMode, error) {
	switch MappingMode(s) {
	case "", MAPPING_BY_ID:
		return MAPPING_BY_ID, nil
	case MAPPING_POSITIONAL:
		return MAPPING_POSITIONAL, nil
	}
	return "", fmt.Errorf("unknown mapping mode %q", s)
}

type SlotValue struct {
	Slot domain.OutputSlot
	Raw  string
}

// Map pairs entries and slots by position. Pairing stops at the end of the
// shorter sequence.
func Map(env dxs.Envelope, slots []domain.OutputSlot) []SlotValue {
	n := min(len(env), len(slots))
	values := make([]SlotValue, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, SlotValue{Slot: slots[i], Raw: env[i].Value})
	}
	return values
}

// MapGroup pairs the entries of a group response with the group slots.
// In MAPPING_BY_ID mode entries are matched by dxs id, so a reordered or
// partial response still lands on the right slots. Responses carrying ids
// that were not requested fall back to positional mapping.
//
// Unlike Map, a short response in MAPPING_BY_ID mode does not fill the first
// len(env) slots: it fills the slots whose ids are present, wherever they
// are in the group. Use MAPPING_POSITIONAL for the plain Map pairing.
func MapGroup(env dxs.Envelope, group domain.Group, mode MappingMode) []SlotValue {
	if mode == MAPPING_POSITIONAL || !idsMatchRequest(env, group.Ids) {
		return Map(env, group.Slots)
	}

	byId := make(map[string]string, len(env))
	for _, e := range env {
		if _, seen := byId[e.Id]; !seen {
			byId[e.Id] = e.Value
		}
	}
	values := make([]SlotValue, 0, len(group.Slots))
	for i, id := range group.Ids {
		if i >= len(group.Slots) {
			break
		}
		if raw, ok := byId[id]; ok {
			values = append(values, SlotValue{Slot: group.Slots[i], Raw: raw})
		}
	}
	return values
}

func idsMatchRequest(env dxs.Envelope, requested dxs.IdSet) bool {
	for _, e := range env {
		if e.Id == "" || !requested.Contains(e.Id) {
			return false
		}
	}
	return true
}
