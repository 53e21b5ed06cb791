package scene

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// ObjectUniform is the per-frame model transform, bound at binding 0.
type ObjectUniform struct {
	Model mgl32.Mat4
}

// ViewProjection is the camera, bound at binding 1.
type ViewProjection struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// Camera animates the model and derives the camera matrices from the
// surface extent.
type Camera struct {
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3

	FovY float32 // degrees
	Near float32
	Far  float32

	// Degrees per second around the Y axis.
	Spin float32
}

func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl32.Vec3{0, 0, 2},
		Center: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   60,
		Near:   0.1,
		Far:    1000,
		Spin:   10,
	}
}

func (c Camera) Object(elapsed time.Duration) ObjectUniform {
	angle := float32(math.Mod(elapsed.Seconds()*float64(c.Spin), 360))
	return ObjectUniform{Model: mgl32.HomogRotate3DY(mgl32.DegToRad(angle))}
}

// ViewProjection returns the camera matrices for a width x height surface. The
// projection is flipped on Y since clip space Y points down in Vulkan.
func (c Camera) ViewProjection(width, height int) ViewProjection {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}

	projection := mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
	projection[5] *= -1

	return ViewProjection{
		View:       mgl32.LookAtV(c.Eye, c.Center, c.Up),
		Projection: projection,
	}
}

// Encode serializes a uniform block with the byte layout the shaders expect.
func Encode(data interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, binary.LittleEndian, data)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	ObjectUniformSize  = binary.Size(ObjectUniform{})
	ViewProjectionSize = binary.Size(ViewProjection{})
)
