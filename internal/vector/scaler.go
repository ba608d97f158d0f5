package vector

import (
	"bytes"
	"encoding/gob"
	"math"

	"github.com/rotisserie/eris"
)

// ErrEmptyFit is returned when Fit is called with no samples.
var ErrEmptyFit = eris.New("vector: cannot fit scaler on empty sample")

// ErrAlreadyFitted is returned when Fit is called a second time. Parameters
// are immutable once fit: every vector added later must live in the same
// coordinate system as the first batch.
var ErrAlreadyFitted = eris.New("vector: scaler parameters are already fitted")

// Scaler standardizes vectors to zero mean and unit variance per dimension,
// using parameters fitted exactly once from a reference sample.
type Scaler struct {
	mean   Vector
	scale  Vector
	fitted bool
}

// NewScaler returns an unfitted scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Fitted reports whether parameters have been fitted.
func (s *Scaler) Fitted() bool {
	return s.fitted
}

// Fit computes per-dimension mean and population standard deviation from
// the sample. Dimensions with zero variance get scale 1, so Transform
// leaves them exactly centered instead of dividing by zero.
func (s *Scaler) Fit(samples []Vector) error {
	if s.fitted {
		return ErrAlreadyFitted
	}
	if len(samples) == 0 {
		return ErrEmptyFit
	}

	n := float64(len(samples))
	for d := range Dimensions {
		var sum float64
		for _, v := range samples {
			sum += v[d]
		}
		mean := sum / n

		var sq float64
		for _, v := range samples {
			diff := v[d] - mean
			sq += diff * diff
		}
		std := math.Sqrt(sq / n)
		if std == 0 {
			std = 1
		}

		s.mean[d] = mean
		s.scale[d] = std
	}
	s.fitted = true
	return nil
}

// Transform applies the fitted parameters to v. Before a successful Fit it
// returns v unchanged.
func (s *Scaler) Transform(v Vector) Vector {
	if !s.fitted {
		return v
	}
	var out Vector
	for d := range Dimensions {
		out[d] = (v[d] - s.mean[d]) / s.scale[d]
	}
	return out
}

// TransformAll applies Transform to a batch, preserving order.
func (s *Scaler) TransformAll(vecs []Vector) []Vector {
	out := make([]Vector, len(vecs))
	for i, v := range vecs {
		out[i] = s.Transform(v)
	}
	return out
}

type scalerState struct {
	Mean   Vector
	Scale  Vector
	Fitted bool
}

// GobEncode serializes the fitted parameters.
func (s *Scaler) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(scalerState{Mean: s.mean, Scale: s.scale, Fitted: s.fitted}); err != nil {
		return nil, eris.Wrap(err, "vector: encode scaler")
	}
	return buf.Bytes(), nil
}

// GobDecode restores fitted parameters.
func (s *Scaler) GobDecode(data []byte) error {
	var st scalerState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return eris.Wrap(err, "vector: decode scaler")
	}
	s.mean = st.Mean
	s.scale = st.Scale
	s.fitted = st.Fitted
	return nil
}
