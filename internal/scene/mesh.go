package scene

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
)

// Mesh is indexed triangle geometry with one tightly packed buffer per
// vertex stream.
type Mesh struct {
	Positions []float32 // xyz
	UVs       []float32 // uv, v pointing down
	Indices   []uint32
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

type vertexKey struct {
	position int
	uv       int
}

// DecodeMesh reads Wavefront OBJ geometry. Faces with more than three
// vertices are split into a triangle fan. Corners sharing both a position and
// a texture coordinate are merged.
func DecodeMesh(objReader, mtlReader io.Reader) (*Mesh, error) {
	if mtlReader == nil {
		mtlReader = strings.NewReader("")
	}

	decoder, err := obj.DecodeReader(objReader, mtlReader)
	if err != nil {
		return nil, errors.Wrap(err, "decode obj")
	}

	mesh := &Mesh{}
	uniqueVertices := make(map[vertexKey]uint32)

	addVertex := func(face obj.Face, faceIndex int) error {
		key := vertexKey{position: face.Vertices[faceIndex], uv: -1}
		if faceIndex < len(face.Uvs) && face.Uvs[faceIndex] >= 0 && face.Uvs[faceIndex]*2+1 < len(decoder.Uvs) {
			key.uv = face.Uvs[faceIndex]
		}

		index, vertexExists := uniqueVertices[key]
		if !vertexExists {
			if key.position < 0 || key.position*3+2 >= len(decoder.Vertices) {
				return errors.Newf("face references missing vertex %d", key.position)
			}

			mesh.Positions = append(mesh.Positions,
				decoder.Vertices[key.position*3],
				decoder.Vertices[key.position*3+1],
				decoder.Vertices[key.position*3+2],
			)

			if key.uv >= 0 {
				mesh.UVs = append(mesh.UVs, decoder.Uvs[key.uv*2], 1.0-decoder.Uvs[key.uv*2+1])
			} else {
				mesh.UVs = append(mesh.UVs, 0, 0)
			}

			index = uint32(len(uniqueVertices))
			uniqueVertices[key] = index
		}

		mesh.Indices = append(mesh.Indices, index)
		return nil
	}

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range []int{0, i - 1, i} {
					if err := addVertex(face, corner); err != nil {
						return nil, errors.Wrapf(err, "object %q", decodedObj.Name)
					}
				}
			}
		}
	}

	if len(mesh.Indices) == 0 {
		return nil, errors.New("obj contains no triangles")
	}

	return mesh, nil
}

// LoadMesh decodes the OBJ file at path, with the .mtl next to it when there
// is one.
func LoadMesh(path string) (*Mesh, error) {
	meshFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open mesh")
	}
	defer meshFile.Close()

	var mtlReader io.Reader
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if matFile, err := os.Open(mtlPath); err == nil {
		defer matFile.Close()
		mtlReader = matFile
	}

	mesh, err := DecodeMesh(meshFile, mtlReader)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return mesh, nil
}
