package clientconf

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeptools/docforge/placements"
)

// ClientConfiguration is the durable per-client record: which template to
// merge onto and where each field goes. Upserted by name, last write wins.
type ClientConfiguration struct {
	Name             string                      `json:"name"`
	TemplateFilename string                      `json:"template_filename"`
	Placements       []placements.FieldPlacement `json:"placements"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

var (
	ErrNotFound = errors.New("clientconf: client configuration not found")
	ErrInvalid  = errors.New("clientconf: invalid configuration")
)

func (c *ClientConfiguration) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty client name", ErrInvalid)
	}
	if c.TemplateFilename == "" {
		return fmt.Errorf("%w: client %q: empty template filename", ErrInvalid, c.Name)
	}
	for i, p := range c.Placements {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: client %q: placement %d: %v", ErrInvalid, c.Name, i, err)
		}
	}
	return nil
}
