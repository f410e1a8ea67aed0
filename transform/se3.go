// Package transform samples random rigid motions and applies them to clouds.
package transform

import (
	"math"

	"github.com/seqsense/pcgol/mat"
	"gonum.org/v1/gonum/floats"
	gmat "gonum.org/v1/gonum/mat"
)

// Twist is a se(3) element: rotation vector followed by translational velocity.
type Twist [6]float64

// Neg returns the inverse motion.
func (x Twist) Neg() Twist {
	var out Twist
	for i := range x {
		out[i] = -x[i]
	}
	return out
}

func (x Twist) Norm() float64 {
	return floats.Norm(x[:], 2)
}

func skew(w []float64) *gmat.Dense {
	return gmat.NewDense(3, 3, []float64{
		0, -w[2], w[1],
		w[2], 0, -w[0],
		-w[1], w[0], 0,
	})
}

// seriesThreshold is the squared angle below which Taylor series are used.
const seriesThreshold = 1e-8

// Exp computes exponential map of the twist as a homogeneous matrix.
func Exp(x Twist) mat.Mat4 {
	w, v := x[:3], x[3:]
	th2 := w[0]*w[0] + w[1]*w[1] + w[2]*w[2]
	th := math.Sqrt(th2)

	var a, b, c float64
	if th2 < seriesThreshold {
		a = 1 - th2/6
		b = 0.5 - th2/24
		c = 1.0/6 - th2/120
	} else {
		s, co := math.Sincos(th)
		a = s / th
		b = (1 - co) / th2
		c = (th - s) / (th2 * th)
	}

	W := skew(w)
	var W2 gmat.Dense
	W2.Mul(W, W)

	rot := identity3()
	var tmp gmat.Dense
	tmp.Scale(a, W)
	rot.Add(rot, &tmp)
	tmp.Scale(b, &W2)
	rot.Add(rot, &tmp)

	jac := identity3()
	tmp.Scale(b, W)
	jac.Add(jac, &tmp)
	tmp.Scale(c, &W2)
	jac.Add(jac, &tmp)

	var t gmat.VecDense
	t.MulVec(jac, gmat.NewVecDense(3, append([]float64{}, v...)))

	return toMat4(rot, &t)
}

func identity3() *gmat.Dense {
	return gmat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

func toMat4(rot gmat.Matrix, t gmat.Vector) mat.Mat4 {
	var m mat.Mat4
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[4*c+r] = float32(rot.At(r, c))
		}
		m[12+r] = float32(t.AtVec(r))
	}
	m[15] = 1
	return m
}

// Identity returns the identity transform.
func Identity() mat.Mat4 {
	return mat.Translate(0, 0, 0)
}

// RotationOnly drops translation part of m.
func RotationOnly(m mat.Mat4) mat.Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}

// Angle returns rotation angle of the rotation part of m.
func Angle(m mat.Mat4) float64 {
	tr := float64(m[0]) + float64(m[5]) + float64(m[10])
	cos := (tr - 1) / 2
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// Translation returns translation part of m.
func Translation(m mat.Mat4) mat.Vec3 {
	return mat.Vec3{m[12], m[13], m[14]}
}
