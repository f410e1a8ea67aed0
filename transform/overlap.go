package transform

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/storage/kdtree"

	"github.com/seqsense/pclearn/cloud"
)

// Overlap marks template points which have a source point within radius
// after moving the source by groundTruth.
func Overlap(template, source *cloud.Cloud, groundTruth mat.Mat4, radius float32) cloud.Mask {
	mask := cloud.Zeros(template.Len())
	if source.Len() == 0 {
		return mask
	}
	ra := Transformed(source, groundTruth)
	moved := make(pc.Vec3Slice, ra.Len())
	for i := range moved {
		moved[i] = ra.Vec3At(i)
	}
	min, max, err := pc.MinMaxVec3(moved)
	if err != nil {
		return mask
	}
	margin := mat.Vec3{radius, radius, radius}
	box := cloud.Rect{Min: min.Sub(margin), Max: max.Add(margin)}

	// Only points in the expanded box of the moved source can match.
	var candidates []int
	for i := 0; i < template.Len(); i++ {
		if box.IsInside(template.Vec3At(i)) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return mask
	}

	kdt := kdtree.New(moved)
	view := template.View(candidates)
	for j := 0; j < view.Len(); j++ {
		if id, _ := kdt.Nearest(view.Vec3At(j), radius); id >= 0 {
			mask[candidates[j]] = 1
		}
	}
	return mask
}
