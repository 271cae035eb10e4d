// Package overflow handles the inventory entries that do not fit the fixed
// slots of the form. Two policies exist over the same template and exactly one
// is configured: replicating the blank inventory page as many times as the
// declared sheet count asks for, or synthesizing annex pages that list the
// overflowing entries.
package overflow

import (
	"fmt"
	"strings"

	"github.com/a3tai/posesion-efectiva/internal/formschema"
)

// Strategy selects the overflow policy
type Strategy int

const (
	// Replicate appends blank copies of the inventory page, driven only by the
	// declared sheet count.
	Replicate Strategy = iota
	// Annex appends generated pages listing entries beyond slot capacity.
	Annex
)

// Strategies lists the accepted configuration values
var Strategies = []string{"replicate", "annex"}

// String returns the configuration value of the strategy
func (s Strategy) String() string {
	switch s {
	case Replicate:
		return "replicate"
	case Annex:
		return "annex"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy reads a configuration value, case-insensitively
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "replicate", "replicar":
		return Replicate, nil
	case "annex", "anexo":
		return Annex, nil
	default:
		return Replicate, fmt.Errorf("invalid overflow strategy %q (valid: %s)", value, strings.Join(Strategies, ", "))
	}
}

// ReplicationPlan says which template page is copied and how many times
type ReplicationPlan struct {
	// Page is the zero-based page index in the clean template
	Page   int
	Copies int
}

// PlanReplication derives the copies from the declared sheet count: one sheet
// is already in the template, every further sheet is a copy. The count is
// capped at layout.MaxInventorySheets.
func PlanReplication(sheets int, layout formschema.Layout) ReplicationPlan {
	sheets = min(sheets, layout.MaxInventorySheets)
	return ReplicationPlan{
		Page:   layout.InventoryPage,
		Copies: max(sheets-1, 0),
	}
}

// Empty reports whether no page needs to be appended
func (p ReplicationPlan) Empty() bool {
	return p.Copies == 0
}
