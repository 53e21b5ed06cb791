// Package scene prepares what the renderer draws: the mesh, its texture and
// the uniform blocks that place it in front of the camera.
package scene

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("scene")

type Scene struct {
	Mesh    *Mesh
	Texture *Texture
}

// Load decodes the mesh and the texture concurrently.
func Load(meshPath, texturePath string) (*Scene, error) {
	var scene Scene
	var group errgroup.Group

	group.Go(func() error {
		mesh, err := LoadMesh(meshPath)
		scene.Mesh = mesh
		return err
	})

	group.Go(func() error {
		texture, err := LoadTexture(texturePath)
		scene.Texture = texture
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(err, "load scene")
	}

	logger.Infof("scene loaded: %d vertices, %d indices, %dx%d texture",
		scene.Mesh.VertexCount(), len(scene.Mesh.Indices), scene.Texture.Width, scene.Texture.Height)
	return &scene, nil
}
