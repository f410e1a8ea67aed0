package cloud

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/seqsense/pcgol/mat"
)

func TestNew(t *testing.T) {
	if _, err := New(10, 2); !errors.Is(err, ErrChannels) {
		t.Errorf("Expected ErrChannels, got: %v", err)
	}
	c, err := New(10, 6)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 10 || c.Channels() != 6 {
		t.Errorf("Expected 10x6, got: %dx%d", c.Len(), c.Channels())
	}
	if _, err := FromSlice(make([]float32, 7), 3); !errors.Is(err, ErrChannels) {
		t.Errorf("Expected ErrChannels, got: %v", err)
	}
}

func TestSelect(t *testing.T) {
	c, err := FromSlice([]float32{
		0, 0, 0, 10,
		1, 1, 1, 11,
		2, 2, 2, 12,
	}, 4)
	if err != nil {
		t.Fatal(err)
	}

	testCases := map[string]struct {
		fn       func() *Cloud
		expected []float32
	}{
		"Select": {
			fn:       func() *Cloud { return c.Select([]int{2, 0}) },
			expected: []float32{2, 2, 2, 12, 0, 0, 0, 10},
		},
		"Head": {
			fn:       func() *Cloud { return c.Head(2) },
			expected: []float32{0, 0, 0, 10, 1, 1, 1, 11},
		},
		"HeadClamped": {
			fn:       func() *Cloud { return c.Head(5) },
			expected: c.Data,
		},
		"Permute": {
			fn: func() *Cloud {
				p, err := c.Permute([]int{1, 2, 0})
				if err != nil {
					t.Fatal(err)
				}
				return p
			},
			expected: []float32{1, 1, 1, 11, 2, 2, 2, 12, 0, 0, 0, 10},
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			out := tt.fn()
			if diff := cmp.Diff(tt.expected, out.Data); diff != "" {
				t.Errorf("Unexpected data (-want +got):\n%s", diff)
			}
			if out.Channels() != 4 {
				t.Errorf("Expected 4 channels, got: %d", out.Channels())
			}
		})
	}

	if _, err := c.Permute([]int{0}); err == nil {
		t.Error("Permute with wrong length must fail")
	}
}

func TestConcat(t *testing.T) {
	a := FromVec3s([]mat.Vec3{{1, 2, 3}})
	b := FromVec3s([]mat.Vec3{{4, 5, 6}, {7, 8, 9}})
	out, err := a.Concat(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, out.Data); diff != "" {
		t.Errorf("Unexpected data (-want +got):\n%s", diff)
	}
	c, _ := New(1, 6)
	if _, err := a.Concat(c); !errors.Is(err, ErrChannels) {
		t.Errorf("Expected ErrChannels, got: %v", err)
	}
}

func TestCentroid(t *testing.T) {
	c := FromVec3s([]mat.Vec3{{0, 0, 0}, {2, 4, 6}})
	v, err := c.Centroid()
	if err != nil {
		t.Fatal(err)
	}
	if !v.Equal(mat.Vec3{1, 2, 3}) {
		t.Errorf("Expected centroid (1, 2, 3), got: %v", v)
	}
	c.Translate(v.Mul(-1))
	if v, _ := c.Centroid(); !v.Equal(mat.Vec3{}) {
		t.Errorf("Expected zero centroid after translation, got: %v", v)
	}

	empty, _ := New(0, 3)
	if _, err := empty.Centroid(); !errors.Is(err, ErrNoPoint) {
		t.Errorf("Expected ErrNoPoint, got: %v", err)
	}
}

func TestVec3Iterator(t *testing.T) {
	c, _ := New(3, 4)
	it := c.Vec3Iterator()
	it.SetVec3(mat.Vec3{1, 2, 3})
	it.Incr()
	it.SetVec3(mat.Vec3{4, 5, 6})
	it.Incr()
	it.SetVec3(mat.Vec3{7, 8, 9})

	expectedVecs := []mat.Vec3{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	var n int
	for it := c.Vec3Iterator(); it.IsValid(); it.Incr() {
		if v := it.Vec3(); !v.Equal(expectedVecs[n]) {
			t.Errorf("Expected Vec3: %v, got: %v", expectedVecs[n], v)
		}
		n++
	}
	if n != 3 {
		t.Errorf("Expected 3 points, iterated %d", n)
	}
}

func TestBounds(t *testing.T) {
	c := FromVec3s([]mat.Vec3{
		{10.1, -20.2, 3.3},
		{1.1, 2.2, 4.3},
		{15.1, 21.2, 0.3},
	})
	r, err := c.Bounds()
	if err != nil {
		t.Fatal(err)
	}
	expected := Rect{Min: mat.Vec3{1.1, -20.2, 0.3}, Max: mat.Vec3{15.1, 21.2, 4.3}}
	if !expected.Min.Equal(r.Min) || !expected.Max.Equal(r.Max) {
		t.Errorf("Expected %v, got: %v", expected, r)
	}
	if e := r.Extent(); e < 41.39 || 41.41 < e {
		t.Errorf("Expected extent 41.4, got: %f", e)
	}
	if !r.IsInside(mat.Vec3{2, 0, 1}) || r.IsInside(mat.Vec3{0, 0, 1}) {
		t.Error("IsInside returned wrong result")
	}
}

func TestMask(t *testing.T) {
	m := Scatter(5, []int{1, 3})
	if diff := cmp.Diff(Mask{0, 1, 0, 1, 0}, m); diff != "" {
		t.Errorf("Unexpected mask (-want +got):\n%s", diff)
	}
	if n := m.Count(); n != 2 {
		t.Errorf("Expected 2, got: %d", n)
	}
	p, err := m.Concat(Zeros(1)).Permute([]int{5, 3, 1, 0, 2, 4})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Mask{0, 1, 1, 0, 0, 0}, p); diff != "" {
		t.Errorf("Unexpected mask (-want +got):\n%s", diff)
	}
	if n := Ones(4).Count(); n != 4 {
		t.Errorf("Expected 4, got: %d", n)
	}
}

func TestToPointCloud(t *testing.T) {
	c := FromVec3s([]mat.Vec3{{1, 2, 3}, {4, 5, 6}})
	pp, err := c.ToPointCloud()
	if err != nil {
		t.Fatal(err)
	}
	if pp.Points != 2 {
		t.Fatalf("Expected 2 points, got: %d", pp.Points)
	}
	back, err := FromPointCloud(pp, true)
	if err != nil {
		t.Fatal(err)
	}
	if back.Channels() != 3 {
		t.Errorf("Normals must be ignored when the cloud has no normal fields, got %d channels", back.Channels())
	}
	if diff := cmp.Diff(c.Data, back.Data); diff != "" {
		t.Errorf("Unexpected data (-want +got):\n%s", diff)
	}
}

func TestView(t *testing.T) {
	c := FromVec3s([]mat.Vec3{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}})
	v := c.View([]int{2, 0})
	if v.Len() != 2 {
		t.Fatalf("Expected 2 points, got %d", v.Len())
	}
	if v.Vec3At(0) != (mat.Vec3{2, 2, 2}) || v.Vec3At(1) != (mat.Vec3{0, 0, 0}) {
		t.Errorf("Unexpected view: %v, %v", v.Vec3At(0), v.Vec3At(1))
	}
	c.SetVec3(0, mat.Vec3{5, 5, 5})
	if v.Vec3At(1) != (mat.Vec3{5, 5, 5}) {
		t.Error("View must share points with the cloud")
	}
}
