package types

import "exusiai.dev/boxstats/internal/model"

type BoxTypeLabel struct {
	Type  model.BoxType `json:"type"`
	Label string        `json:"label"`
}

type BoxTypeLabels struct {
	Language string          `json:"language"`
	Types    []*BoxTypeLabel `json:"types"`
}

type AccountResponse struct {
	AccountID int    `json:"id"`
	OwnerKey  string `json:"ownerKey,omitempty"`
}
