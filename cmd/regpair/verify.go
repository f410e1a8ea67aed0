package main

import (
	"fmt"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc/registration/icp"
	"github.com/seqsense/pcgol/pc/storage/kdtree"
	"go.uber.org/zap"

	"github.com/seqsense/pclearn/dataset"
	"github.com/seqsense/pclearn/transform"
)

const (
	matchRange        = 0.2
	overlapRadius     = 0.02
	gradientWeight    = 0.25
	gradientPosThresh = 0.001
	gradientRotThresh = 0.002
	maxIteration      = 100
)

// verify registers the source onto the template by ICP and logs the
// residual against the ground truth.
func verify(logger *zap.Logger, i int, s *dataset.Sample) error {
	kdt := kdtree.New(s.Template.Vec3Slice())
	ppicp := &icp.PointToPointICPGradient{
		Evaluator: &icp.PointToPointEvaluator{
			Corresponder: &icp.NearestPointCorresponder{MaxDist: matchRange},
			MinPairs:     32,
			WeightFn: func(distSq float32) float32 {
				a := (1 - distSq/(matchRange*matchRange))
				return a * a
			},
		},
		MaxIteration: maxIteration,
		GradientWeight: mat.Vec6{
			gradientWeight, gradientWeight, gradientWeight,
			gradientWeight, gradientWeight, gradientWeight,
		},
		GradientThreshold: mat.Vec6{
			gradientPosThresh, gradientPosThresh, gradientPosThresh,
			gradientRotThresh, gradientRotThresh, gradientRotThresh,
		},
	}
	fit, stat, err := ppicp.Fit(kdt, s.Source.Vec3Slice())
	if err != nil {
		return fmt.Errorf("registration failed: %v, stat: %v", err, stat)
	}

	residual := fit.InvAffine().Mul(s.GroundTruth)
	overlap := transform.Overlap(s.Template, s.Source, s.GroundTruth, overlapRadius)
	logger.Info("pair verified",
		zap.Int("index", i),
		zap.Float64("angle_error", transform.Angle(residual)),
		zap.Float32("translation_error", transform.Translation(residual).Norm()),
		zap.Int("mask", s.Mask.Count()),
		zap.Int("overlap", overlap.Count()),
		zap.String("stat", fmt.Sprintf("%v", stat)),
	)
	return nil
}
