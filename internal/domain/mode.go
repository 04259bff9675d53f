package domain

import (
	"errors"
	"strings"
)

var ErrUnknownMode = errors.New("unknown assistant mode")

// Mode selects the framing of the answer prompt.
type Mode string

const (
	ModeInventory Mode = "Inventory"
	ModeShipment  Mode = "Shipment"
	ModeMultiTask Mode = "Multi-Task"
)

// Modes lists the selectable modes in display order.
var Modes = []Mode{ModeInventory, ModeShipment, ModeMultiTask}

// ParseMode accepts the display name in any case, plus the short
// forms "multi" and "multitask".
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inventory":
		return ModeInventory, nil
	case "shipment", "shipments":
		return ModeShipment, nil
	case "multi-task", "multitask", "multi":
		return ModeMultiTask, nil
	}
	return "", ErrUnknownMode
}
