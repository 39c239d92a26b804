package seasonutil

import (
	"github.com/samber/lo"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/bserr"
)

// ValidateBoxes checks the structural rules on a batch of box groups that
// struct tags alone cannot express. When homogeneous is set every box of the
// batch must share one type, as required for a create-or-merge submission.
func ValidateBoxes(boxes []*model.Box, homogeneous bool) error {
	if len(boxes) == 0 {
		return bserr.ErrInvalidReq.Msg("boxes must not be empty")
	}

	seen := make(map[string]struct{}, len(boxes))
	for i, box := range boxes {
		if box == nil {
			return bserr.ErrMalformedInput.Msg("box at index %d is null", i)
		}
		switch box.Type {
		case model.BoxTypeRegular:
			if box.BoxVariant == "" {
				return bserr.ErrInvalidReq.Msg("box at index %d: regular boxes require a box_variant", i)
			}
		case model.BoxTypeTournament:
			if box.BoxVariant != "" {
				return bserr.ErrInvalidReq.Msg("box at index %d: tournament boxes do not take a box_variant", i)
			}
		default:
			return bserr.ErrInvalidReq.Msg("box at index %d: unknown box type %q", i, box.Type)
		}

		key := box.GroupKey()
		if _, ok := seen[key]; ok {
			return bserr.ErrInvalidReq.
				Msg("box at index %d duplicates group %s", i, key).
				WithExtras(bserr.Extras{"group": key})
		}
		seen[key] = struct{}{}
	}

	if homogeneous && len(TypesOf(boxes)) > 1 {
		return bserr.ErrInvalidReq.Msg("all boxes of one submission must share a type")
	}

	return nil
}

// TypesOf returns the distinct box types of boxes in first-seen order.
func TypesOf(boxes []*model.Box) []model.BoxType {
	return lo.Uniq(lo.Map(boxes, func(box *model.Box, _ int) model.BoxType {
		return box.Type
	}))
}

// MergeBoxes appends an incoming homogeneous batch to the boxes of an
// existing season. A season holds at most one batch per box type, so a batch
// whose type is already stored, or a season already holding both types, is
// rejected with ErrDuplicateBoxType.
func MergeBoxes(existing, incoming []*model.Box) ([]*model.Box, error) {
	existingTypes := TypesOf(existing)
	if len(existingTypes) >= len(model.BoxTypes) {
		return nil, bserr.ErrDuplicateBoxType.Msg("season already holds every box type")
	}

	incomingTypes := TypesOf(incoming)
	for _, t := range incomingTypes {
		if lo.Contains(existingTypes, t) {
			return nil, bserr.ErrDuplicateBoxType.
				Msg("season already holds %s boxes", t).
				WithExtras(bserr.Extras{"type": t})
		}
	}

	merged := make([]*model.Box, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	return merged, nil
}
