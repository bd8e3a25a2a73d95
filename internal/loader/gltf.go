package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"GopherView/internal/logger"
	"GopherView/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNoScene is returned for documents without a scene to display.
	ErrNoScene = errors.New("gltf: document has no scene")
	// ErrNoGeometry is returned when no node of the scene carries triangles.
	ErrNoGeometry = errors.New("gltf: scene has no triangle geometry")
)

// Load fetches and parses the glTF asset at url into a model whose meshes are
// already placed in world space. Binary .glb containers and .gltf files with
// embedded data URIs are supported.
func Load(ctx context.Context, url string, onProgress ProgressFunc) (*renderer.Model, error) {
	data, err := Fetch(ctx, url, onProgress)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	model, err := BuildModel(ctx, doc, url)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", url, err)
	}
	logger.Log.Info("Model loaded",
		zap.String("url", url),
		zap.Int("meshes", len(model.Meshes)),
		zap.Int("triangles", model.TriangleCount()))
	return model, nil
}

// BuildModel walks the default scene of doc and flattens every triangle
// primitive into a renderer mesh.
func BuildModel(ctx context.Context, doc *gltf.Document, source string) (*renderer.Model, error) {
	if len(doc.Scenes) == 0 {
		return nil, ErrNoScene
	}
	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = int(*doc.Scene)
	}
	if sceneIndex >= len(doc.Scenes) {
		return nil, ErrNoScene
	}

	b := &builder{
		doc:       doc,
		source:    source,
		model:     &renderer.Model{Name: path.Base(source), SourcePath: source},
		materials: make(map[int]*renderer.Material),
		images:    make(map[int]image.Image),
	}
	for _, root := range doc.Scenes[sceneIndex].Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.visit(int(root), mgl32.Ident4(), 0); err != nil {
			return nil, err
		}
	}

	if len(b.model.Meshes) == 0 {
		return nil, ErrNoGeometry
	}
	return b.model, nil
}

// Deeper hierarchies are treated as cyclic.
const maxNodeDepth = 64

type builder struct {
	doc       *gltf.Document
	source    string
	model     *renderer.Model
	materials map[int]*renderer.Material
	images    map[int]image.Image
}

func (b *builder) visit(index int, parent mgl32.Mat4, depth int) error {
	if index < 0 || index >= len(b.doc.Nodes) {
		return fmt.Errorf("node %d out of range", index)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}
	node := b.doc.Nodes[index]
	world := parent.Mul4(localTransform(node))

	if node.Mesh != nil {
		if err := b.addMesh(int(*node.Mesh), node.Name, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := b.visit(int(child), world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localTransform prefers an explicit matrix and falls back to T*R*S.
func localTransform(node *gltf.Node) mgl32.Mat4 {
	if m := mgl32.Mat4(node.MatrixOrDefault()); m != mgl32.Ident4() {
		return m
	}
	t := node.Translation
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	rotation := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize().Mat4()
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

func (b *builder) addMesh(meshIndex int, nodeName string, world mgl32.Mat4) error {
	if meshIndex < 0 || meshIndex >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIndex)
	}
	gm := b.doc.Meshes[meshIndex]
	name := gm.Name
	if name == "" {
		name = nodeName
	}

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			logger.Log.Debug("Skipping non-triangle primitive",
				zap.String("mesh", name), zap.Int("primitive", pi))
			continue
		}
		mesh, err := b.buildPrimitive(prim, name, world)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
		}
		if mesh != nil {
			b.model.Meshes = append(b.model.Meshes, mesh)
		}
	}
	return nil
}

func (b *builder) buildPrimitive(prim *gltf.Primitive, name string, world mgl32.Mat4) (*renderer.Mesh, error) {
	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acr, err := b.accessor(int(posIndex))
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(b.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	if len(positions) == 0 {
		return nil, nil
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := b.accessor(int(*prim.Indices))
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		indices, err = modeler.ReadIndices(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = sequentialIndices(len(positions))
	}
	indices = indices[:len(indices)-len(indices)%3]
	if len(indices) == 0 {
		return nil, nil
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := b.accessor(int(idx))
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		normals, err = modeler.ReadNormal(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}
	if len(normals) != len(positions) {
		normals = RecalculateNormals(positions, indices)
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := b.accessor(int(idx))
		if err != nil {
			return nil, fmt.Errorf("texture coordinates: %w", err)
		}
		uvs, err = modeler.ReadTextureCoord(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
	}

	material := renderer.NewDefaultMaterial()
	if prim.Material != nil {
		material = b.material(int(*prim.Material))
	}

	return renderer.NewMesh(name, positions, normals, uvs, indices, world, material), nil
}

// accessor returns accessor i. Indices come straight from the file and are
// not validated by the decoder.
func (b *builder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return b.doc.Accessors[i], nil
}

func sequentialIndices(n int) []uint32 {
	indices := make([]uint32, n)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return indices
}

// material converts and caches glTF material i. Meshes sharing a glTF
// material share the renderer material.
func (b *builder) material(i int) *renderer.Material {
	if m, ok := b.materials[i]; ok {
		return m
	}
	mat := renderer.NewDefaultMaterial()
	b.materials[i] = mat
	if i < 0 || i >= len(b.doc.Materials) {
		return mat
	}

	gm := b.doc.Materials[i]
	mat.Name = gm.Name
	mat.DoubleSided = gm.DoubleSided
	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	if pbr.BaseColorFactor != nil {
		mat.BaseColor = *pbr.BaseColorFactor
	}
	mat.Metallic = 1
	if pbr.MetallicFactor != nil {
		mat.Metallic = *pbr.MetallicFactor
	}
	mat.Roughness = 1
	if pbr.RoughnessFactor != nil {
		mat.Roughness = *pbr.RoughnessFactor
	}

	if pbr.BaseColorTexture != nil {
		imgIndex, img := b.textureImage(int(pbr.BaseColorTexture.Index))
		if img != nil {
			mat.Texture = img
			mat.TextureKey = fmt.Sprintf("%s#%d", b.source, imgIndex)
		}
	}
	return mat
}

// textureImage resolves texture i to its decoded source image. Unreadable
// images are logged and leave the material untextured.
func (b *builder) textureImage(i int) (int, image.Image) {
	if i < 0 || i >= len(b.doc.Textures) || b.doc.Textures[i].Source == nil {
		return -1, nil
	}
	imgIndex := int(*b.doc.Textures[i].Source)
	if img, ok := b.images[imgIndex]; ok {
		return imgIndex, img
	}

	img, err := b.decodeImage(imgIndex)
	if err != nil {
		logger.Log.Warn("Skipping texture",
			zap.String("source", b.source),
			zap.Int("image", imgIndex),
			zap.Error(err))
	}
	b.images[imgIndex] = img
	return imgIndex, img
}

func (b *builder) decodeImage(i int) (image.Image, error) {
	if i < 0 || i >= len(b.doc.Images) {
		return nil, fmt.Errorf("image %d out of range", i)
	}
	gi := b.doc.Images[i]

	var data []byte
	switch {
	case gi.BufferView != nil:
		view, err := b.bufferView(int(*gi.BufferView))
		if err != nil {
			return nil, err
		}
		data = view
	case strings.HasPrefix(gi.URI, "data:"):
		comma := strings.IndexByte(gi.URI, ',')
		if comma < 0 || !strings.Contains(gi.URI[:comma], ";base64") {
			return nil, fmt.Errorf("unsupported data URI")
		}
		decoded, err := base64.StdEncoding.DecodeString(gi.URI[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
		data = decoded
	default:
		return nil, fmt.Errorf("external image %q not supported", gi.URI)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (b *builder) bufferView(i int) ([]byte, error) {
	if i < 0 || i >= len(b.doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", i)
	}
	bv := b.doc.BufferViews[i]
	if int(bv.Buffer) >= len(b.doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	buf := b.doc.Buffers[bv.Buffer].Data
	start := int(bv.ByteOffset)
	end := start + int(bv.ByteLength)
	if end > len(buf) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer length %d", i, len(buf))
	}
	return buf[start:end], nil
}
