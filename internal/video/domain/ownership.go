package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/romariotrain/vidtube/internal/models"
)

type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Authorize allows the action only for the owner of v.
func Authorize(v *models.Video, caller uuid.UUID, action Action) error {
	if v.OwnedBy(caller) {
		return nil
	}
	return models.Forbidden(fmt.Sprintf("You are not authorized to %s this video", action))
}
