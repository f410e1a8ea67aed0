package perturb

import (
	"math/rand/v2"
	"testing"

	"pgregory.net/rapid"

	"github.com/seqsense/pclearn/cloud"
)

func TestAddOutliers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(rt, "n")
		ch := rapid.IntRange(3, 6).Draw(rt, "channels")
		rng := rand.New(rand.NewPCG(rapid.Uint64().Draw(rt, "seed"), 0))

		c := randomCloud(rng, n, ch)
		// Tag each original point with its index in a value outside of [-1, 1]
		// so that it can be traced after the permutation.
		for i := 0; i < n; i++ {
			c.Point(i)[0] = float32(10 + i)
		}
		out, mask, err := AddOutliers(rng, c, cloud.Ones(n))
		if err != nil {
			rt.Fatal(err)
		}
		if out.Len() != n+OutlierCount || len(mask) != n+OutlierCount {
			rt.Fatalf("Expected %d points, got %d points and %d mask entries", n+OutlierCount, out.Len(), len(mask))
		}
		if zeros := len(mask) - mask.Count(); zeros != OutlierCount {
			rt.Fatalf("Expected %d zeros in mask, got %d", OutlierCount, zeros)
		}
		seen := make(map[int]bool)
		for i := 0; i < out.Len(); i++ {
			p := out.Point(i)
			isOrig := p[0] >= 10
			if isOrig != (mask[i] == 1) {
				rt.Fatalf("Point %d and its mask entry are not aligned", i)
			}
			if isOrig {
				j := int(p[0]) - 10
				if !equalPoint(p, c.Point(j)) || seen[j] {
					rt.Fatalf("Point %d is a broken copy of original point %d", i, j)
				}
				seen[j] = true
				continue
			}
			for _, v := range p {
				if v < -1 || 1 < v {
					rt.Fatalf("Outlier %d out of [-1, 1]: %v", i, p)
				}
			}
		}
	})
}

func TestAddOutliersMaskLength(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	if _, _, err := AddOutliers(rng, randomCloud(rng, 4, 3), cloud.Ones(3)); err == nil {
		t.Error("Mismatched mask length must fail")
	}
}

func TestChoice(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	idx, err := Choice(rng, 50, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 20 {
		t.Fatalf("Expected 20 indice, got %d", len(idx))
	}
	seen := make(map[int]bool)
	for _, i := range idx {
		if i < 0 || i >= 50 || seen[i] {
			t.Fatalf("Invalid or duplicated index %d in %v", i, idx)
		}
		seen[i] = true
	}
	if _, err := Choice(rng, 5, 6); err == nil {
		t.Error("Choice must fail when k > n")
	}
	if idx, err := Choice(rng, 0, 0); err != nil || len(idx) != 0 {
		t.Errorf("Expected empty choice, got %v, %v", idx, err)
	}

	// Same seed gives same indice; all of [0, n) is reachable.
	a, _ := Choice(rand.New(rand.NewPCG(5, 5)), 10, 10)
	b, _ := Choice(rand.New(rand.NewPCG(5, 5)), 10, 10)
	if !equalInts(a, b) {
		t.Errorf("Choice is not reproducible: %v, %v", a, b)
	}
	all := make(map[int]bool)
	for _, i := range a {
		all[i] = true
	}
	if len(all) != 10 {
		t.Errorf("Full choice must be a permutation, got %v", a)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
