package assets

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/draco-go/draco"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const dracoExtension = "KHR_draco_mesh_compression"

// dracoPrimitive is the KHR_draco_mesh_compression payload of a primitive.
type dracoPrimitive struct {
	BufferView *int           `json:"bufferView"`
	Attributes map[string]int `json:"attributes"`
}

// dracoMesh is a decoded Draco stream in the layout the scene geometry uses.
type dracoMesh struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	indices   []uint32
}

// decodeDraco decompresses the primitive's Draco buffer view. The accessors
// the primitive declares carry counts only, so everything is read from the
// decoded mesh.
func (b *modelBuilder) decodeDraco(ext dracoPrimitive) (*dracoMesh, error) {
	if ext.BufferView == nil || *ext.BufferView < 0 || *ext.BufferView >= len(b.doc.BufferViews) {
		return nil, errors.New("draco extension has no valid bufferView")
	}
	data, err := modeler.ReadBufferView(b.doc, b.doc.BufferViews[*ext.BufferView])
	if err != nil {
		return nil, fmt.Errorf("reading draco buffer: %w", err)
	}
	return decodeDracoMesh(data, ext.Attributes)
}

func decodeDracoMesh(data []byte, attrs map[string]int) (*dracoMesh, error) {
	if draco.GetEncodedGeometryType(data) != draco.EGT_TRIANGULAR_MESH {
		return nil, fmt.Errorf("draco stream is not a triangle mesh: %w", ErrUnsupported)
	}
	m := draco.NewMesh()
	if err := draco.NewDecoder().DecodeMesh(m, data); err != nil {
		return nil, fmt.Errorf("decoding draco mesh: %w", err)
	}

	id, ok := attrs[gltf.POSITION]
	if !ok {
		return nil, errors.New("draco primitive has no POSITION attribute")
	}
	pos, err := dracoFloats(m, id, 3)
	if err != nil {
		return nil, fmt.Errorf("draco positions: %w", err)
	}
	out := &dracoMesh{positions: make([]mgl32.Vec3, len(pos)/3)}
	for i := range out.positions {
		out.positions[i] = mgl32.Vec3{pos[3*i], pos[3*i+1], pos[3*i+2]}
	}

	if id, ok := attrs[gltf.NORMAL]; ok {
		if n, err := dracoFloats(m, id, 3); err == nil && len(n) == len(pos) {
			out.normals = make([]mgl32.Vec3, len(out.positions))
			for i := range out.normals {
				out.normals[i] = mgl32.Vec3{n[3*i], n[3*i+1], n[3*i+2]}
			}
		}
	}
	if id, ok := attrs[gltf.TEXCOORD_0]; ok {
		if uv, err := dracoFloats(m, id, 2); err == nil && len(uv) == 2*len(out.positions) {
			out.uvs = make([]mgl32.Vec2, len(out.positions))
			for i := range out.uvs {
				out.uvs[i] = mgl32.Vec2{uv[2*i], uv[2*i+1]}
			}
		}
	}

	// Faces only reports the first NumFaces entries of the buffer it fills.
	if n := m.NumFaces(); n > 0 {
		out.indices = make([]uint32, 3*n)
		m.Faces(out.indices)
	}
	return out, nil
}

// dracoFloats reads a float attribute by its Draco unique id.
func dracoFloats(m *draco.Mesh, id, comps int) ([]float32, error) {
	if id < 0 {
		return nil, fmt.Errorf("attribute id %d", id)
	}
	attr := m.AttrByUniqueID(uint32(id))
	if attr == nil {
		return nil, fmt.Errorf("attribute %d missing from stream", id)
	}
	if int(attr.NumComponents()) != comps {
		return nil, fmt.Errorf("attribute %d has %d components, want %d", id, attr.NumComponents(), comps)
	}
	buf := make([]float32, int(m.NumPoints())*comps)
	if len(buf) == 0 {
		return buf, nil
	}
	data, ok := m.AttrData(attr, buf)
	if !ok {
		return nil, fmt.Errorf("attribute %d could not be converted to float32", id)
	}
	return data.([]float32), nil
}
