package viewer

import (
	"github.com/taigrr/meshview/pkg/models"
)

// Loaded is a file read and normalized off the event goroutine, ready to be
// handed to Viewer.Apply.
type Loaded struct {
	Path  string
	Scene *models.Scene
	Stats models.LoadStats
}

// LoadFile reads and normalizes path. It touches no Viewer state and may run
// on any goroutine.
func LoadFile(path string, opts models.LoadOptions) (*Loaded, error) {
	scene, stats, err := models.Load(path, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{
		Path:  path,
		Scene: models.Normalize(scene),
		Stats: stats,
	}, nil
}
