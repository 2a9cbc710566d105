package sequencer

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
)

// Anchor tokens.
const (
	AnchorFirst = "first"
	AnchorLast  = "last"
)

// Placement is the caller's positioning intent; at most one field may be set.
// Before takes "first" or a sibling id, After takes "last" or a sibling id.
type Placement struct {
	Position *int    `json:"position,omitempty"`
	Before   *string `json:"position_before,omitempty"`
	After    *string `json:"position_after,omitempty"`
}

func (p Placement) Empty() bool {
	return p.Position == nil && p.Before == nil && p.After == nil
}

type resolved struct {
	anchorID *uuid.UUID
	after    bool
	first    bool
	explicit *int
}

// parse validates p without touching storage.
func (p Placement) parse() (resolved, error) {
	n := 0
	for _, set := range []bool{p.Position != nil, p.Before != nil, p.After != nil} {
		if set {
			n++
		}
	}
	if n > 1 {
		return resolved{}, pkgerrors.InvalidPosition("only one of position, position_before, position_after may be given")
	}
	var r resolved
	switch {
	case p.Position != nil:
		if *p.Position < 1 {
			return resolved{}, pkgerrors.InvalidPosition(fmt.Sprintf("position %d is below 1", *p.Position))
		}
		r.explicit = p.Position
	case p.Before != nil:
		if *p.Before == AnchorFirst {
			r.first = true
			break
		}
		id, err := uuid.Parse(*p.Before)
		if err != nil {
			return resolved{}, pkgerrors.InvalidPosition(fmt.Sprintf("position_before %q is neither %q nor a template id", *p.Before, AnchorFirst))
		}
		r.anchorID = &id
	case p.After != nil:
		if *p.After == AnchorLast {
			break
		}
		id, err := uuid.Parse(*p.After)
		if err != nil {
			return resolved{}, pkgerrors.InvalidPosition(fmt.Sprintf("position_after %q is neither %q nor a template id", *p.After, AnchorLast))
		}
		r.anchorID = &id
		r.after = true
	}
	return r, nil
}

// Validate reports malformed placement input.
func (p Placement) Validate() error {
	_, err := p.parse()
	return err
}
