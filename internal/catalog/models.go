package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Project is a registered project directory.
type Project struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Dir          string     `json:"dir"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastOpenedAt *time.Time `json:"last_opened_at,omitempty"`
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

const ConfigKeyAuthToken = "auth_token"

func NewID() string {
	return uuid.NewString()
}
