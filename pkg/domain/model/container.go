package model

import (
	"time"

	"github.com/google/uuid"
)

// ContainerID is a UUID-based identifier for a knowledge container
type ContainerID string

// NewContainerID generates a new UUID v4 ContainerID
func NewContainerID() ContainerID {
	return ContainerID(uuid.New().String())
}

// Container is a user-scoped knowledge space grouping related content. It
// exclusively owns its sources and exactly one vector collection; deleting a
// container cascades to both.
type Container struct {
	ID        ContainerID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
