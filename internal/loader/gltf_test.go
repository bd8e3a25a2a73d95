package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var triangle = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

func newNode(mesh *uint32, translation [3]float32) *gltf.Node {
	return &gltf.Node{
		Mesh:        mesh,
		Matrix:      [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		Translation: translation,
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
	}
}

// triangleDoc is a one-triangle document whose only node is translated by offset.
func triangleDoc(offset [3]float32) *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, triangle)
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: uint32(pos)},
			Indices:    gltf.Index(uint32(idx)),
		}},
	}}
	doc.Nodes = []*gltf.Node{newNode(gltf.Index(0), offset)}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))
	return doc
}

func saveGLB(t *testing.T, doc *gltf.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBinaryFile(t *testing.T) {
	path := saveGLB(t, triangleDoc([3]float32{10, 0, 0}))

	model, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(model.Meshes) != 1 {
		t.Fatalf("Expected 1 mesh, got %d", len(model.Meshes))
	}
	if model.TriangleCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", model.TriangleCount())
	}
	if model.Name != "model.glb" {
		t.Errorf("Expected name model.glb, got %q", model.Name)
	}

	box := model.BoundingBox()
	want := mgl32.Vec3{10, 0, 0}
	if !box.Min.ApproxEqual(want) {
		t.Errorf("Expected box min %v, got %v", want, box.Min)
	}
	want = mgl32.Vec3{11, 1, 0}
	if !box.Max.ApproxEqual(want) {
		t.Errorf("Expected box max %v, got %v", want, box.Max)
	}
}

func TestLoadFileURL(t *testing.T) {
	path := saveGLB(t, triangleDoc([3]float32{}))

	if _, err := Load(context.Background(), "file://"+path, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRecalculatesMissingNormals(t *testing.T) {
	path := saveGLB(t, triangleDoc([3]float32{}))

	model, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}

	data := model.Meshes[0].InterleavedData
	normal := mgl32.Vec3{data[5], data[6], data[7]}
	if !normal.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Expected +Z normal for a CCW XY triangle, got %v", normal)
	}
}

func TestBuildModelComposesNodeTransforms(t *testing.T) {
	doc := triangleDoc([3]float32{1, 0, 0})
	parent := newNode(nil, [3]float32{0, 5, 0})
	parent.Children = []uint32{0}
	doc.Nodes = append(doc.Nodes, parent)
	doc.Scenes[0].Nodes = []uint32{1}

	model, err := BuildModel(context.Background(), doc, "nested.glb")
	if err != nil {
		t.Fatal(err)
	}

	got := model.Meshes[0].WorldVertex(0)
	if !got.ApproxEqual(mgl32.Vec3{1, 5, 0}) {
		t.Errorf("Expected first vertex at (1,5,0), got %v", got)
	}
}

func TestBuildModelAppliesRotationAndScale(t *testing.T) {
	doc := triangleDoc([3]float32{})
	half := float32(math.Sqrt2 / 2)
	doc.Nodes[0].Rotation = [4]float32{0, 0, half, half} // 90 degrees about Z
	doc.Nodes[0].Scale = [3]float32{2, 2, 2}

	model, err := BuildModel(context.Background(), doc, "rotated.glb")
	if err != nil {
		t.Fatal(err)
	}

	got := model.Meshes[0].WorldVertex(1)
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, 2, 0}, 1e-5) {
		t.Errorf("Expected (1,0,0) to map to (0,2,0), got %v", got)
	}
}

func TestBuildModelSynthesizesIndices(t *testing.T) {
	doc := triangleDoc([3]float32{})
	doc.Meshes[0].Primitives[0].Indices = nil

	model, err := BuildModel(context.Background(), doc, "flat.glb")
	if err != nil {
		t.Fatal(err)
	}

	faces := model.Meshes[0].Faces
	if len(faces) != 3 || faces[0] != 0 || faces[1] != 1 || faces[2] != 2 {
		t.Errorf("Expected indices [0 1 2], got %v", faces)
	}
}

func TestBuildModelMaterial(t *testing.T) {
	var pngData bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	if err := png.Encode(&pngData, img); err != nil {
		t.Fatal(err)
	}

	doc := triangleDoc([3]float32{})
	doc.Images = []*gltf.Image{{
		URI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData.Bytes()),
	}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		Name:        "painted",
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float32{0.5, 0.5, 0.5, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
			MetallicFactor:   gltf.Float(0.2),
			RoughnessFactor:  gltf.Float(0.7),
		},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	model, err := BuildModel(context.Background(), doc, "painted.glb")
	if err != nil {
		t.Fatal(err)
	}

	mat := model.Meshes[0].Material
	if mat.Name != "painted" || !mat.DoubleSided {
		t.Errorf("Unexpected material identity %+v", mat)
	}
	if mat.BaseColor != [4]float32{0.5, 0.5, 0.5, 1} {
		t.Errorf("Unexpected base color %v", mat.BaseColor)
	}
	if mat.Metallic != 0.2 || mat.Roughness != 0.7 {
		t.Errorf("Expected metallic 0.2 roughness 0.7, got %v %v", mat.Metallic, mat.Roughness)
	}
	if mat.Texture == nil {
		t.Fatal("Expected decoded base color texture")
	}
	if mat.TextureKey != "painted.glb#0" {
		t.Errorf("Unexpected texture key %q", mat.TextureKey)
	}
}

func TestBuildModelWithoutMaterialUsesDefault(t *testing.T) {
	model, err := BuildModel(context.Background(), triangleDoc([3]float32{}), "plain.glb")
	if err != nil {
		t.Fatal(err)
	}
	if mat := model.Meshes[0].Material; mat == nil || mat.Name != "default" {
		t.Errorf("Expected default material, got %+v", mat)
	}
}

func TestBuildModelNoScene(t *testing.T) {
	doc := triangleDoc([3]float32{})
	doc.Scenes = nil

	if _, err := BuildModel(context.Background(), doc, "empty.glb"); !errors.Is(err, ErrNoScene) {
		t.Errorf("Expected ErrNoScene, got %v", err)
	}
}

func TestBuildModelNoGeometry(t *testing.T) {
	doc := triangleDoc([3]float32{})
	doc.Nodes[0].Mesh = nil

	if _, err := BuildModel(context.Background(), doc, "empty.glb"); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Expected ErrNoGeometry, got %v", err)
	}
}

func TestLoadRejectsAccessorOutOfRange(t *testing.T) {
	doc := triangleDoc([3]float32{})
	doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 99
	path := saveGLB(t, doc)

	_, err := Load(context.Background(), path, nil)
	if err == nil || !strings.Contains(err.Error(), "accessor 99 out of range") {
		t.Errorf("Expected accessor range error, got %v", err)
	}
}

func TestBuildModelRejectsBadAttributeAccessors(t *testing.T) {
	for _, attr := range []string{gltf.NORMAL, gltf.TEXCOORD_0} {
		doc := triangleDoc([3]float32{})
		doc.Meshes[0].Primitives[0].Attributes[attr] = 42

		if _, err := BuildModel(context.Background(), doc, "bad.glb"); err == nil {
			t.Errorf("%s: expected error for accessor 42", attr)
		}
	}

	doc := triangleDoc([3]float32{})
	doc.Meshes[0].Primitives[0].Indices = gltf.Index(7)
	if _, err := BuildModel(context.Background(), doc, "bad.glb"); err == nil {
		t.Error("Expected error for index accessor 7")
	}
}

func TestBuildModelIgnoresDanglingMaterialAndTexture(t *testing.T) {
	doc := triangleDoc([3]float32{})
	doc.Meshes[0].Primitives[0].Material = gltf.Index(3)

	model, err := BuildModel(context.Background(), doc, "dangling.glb")
	if err != nil {
		t.Fatal(err)
	}
	if mat := model.Meshes[0].Material; mat.Name != "default" {
		t.Errorf("Expected default material for a missing material, got %q", mat.Name)
	}

	doc = triangleDoc([3]float32{})
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(5)}}
	doc.Materials = []*gltf.Material{{
		Name: "orphan",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	model, err = BuildModel(context.Background(), doc, "dangling.glb")
	if err != nil {
		t.Fatal(err)
	}
	if mat := model.Meshes[0].Material; mat.Texture != nil {
		t.Error("A texture with a missing image should leave the material untextured")
	}
}

func TestBuildModelSkipsPrimitivesWithoutTriangles(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name: "segment",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: uint32(pos)},
		}},
	}}
	doc.Nodes = []*gltf.Node{newNode(gltf.Index(0), [3]float32{})}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	if _, err := BuildModel(context.Background(), doc, "segment.glb"); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Expected ErrNoGeometry, got %v", err)
	}
}

func TestLoadOverHTTPReportsProgress(t *testing.T) {
	data, err := os.ReadFile(saveGLB(t, triangleDoc([3]float32{})))
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "model.glb", timeZero, bytes.NewReader(data))
	}))
	defer server.Close()

	var reports []int
	model, err := Load(context.Background(), server.URL+"/model.glb", func(pct int) {
		reports = append(reports, pct)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(model.Meshes) != 1 {
		t.Errorf("Expected 1 mesh, got %d", len(model.Meshes))
	}

	if len(reports) == 0 || reports[len(reports)-1] != 100 {
		t.Fatalf("Expected progress to end at 100, got %v", reports)
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] <= reports[i-1] {
			t.Errorf("Progress must strictly increase, got %v", reports)
		}
	}
}

func TestLoadHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := Load(context.Background(), server.URL+"/missing.glb", nil)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.glb"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.glb")
	if err := os.WriteFile(path, []byte("definitely not gltf"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(context.Background(), path, nil); err == nil {
		t.Error("Expected decode error")
	}
}

func TestLoadCancelled(t *testing.T) {
	path := saveGLB(t, triangleDoc([3]float32{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, path, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
