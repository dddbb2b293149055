package learning

import "math"

// Adam is the Adam optimizer with bias corrected moments. It updates the
// parameter slices it was created with in place.
type Adam struct {
	params [][]float64
	m, v   [][]float64

	lr, beta1, beta2, eps, decay float64

	steps int
}

// NewAdam creates an optimizer over params, typically FeedforwardNetwork.Params().
func NewAdam(params [][]float64, lr, beta1, beta2, eps, weightDecay float64) *Adam {
	a := &Adam{
		params: params,
		m:      make([][]float64, len(params)),
		v:      make([][]float64, len(params)),
		lr:     lr,
		beta1:  beta1,
		beta2:  beta2,
		eps:    eps,
		decay:  weightDecay,
	}
	for i, p := range params {
		a.m[i] = make([]float64, len(p))
		a.v[i] = make([]float64, len(p))
	}
	return a
}

// NewAdamFrom creates an optimizer configured by h
func NewAdamFrom(params [][]float64, h HyperParameters) *Adam {
	return NewAdam(params, h.LearningRate, h.Beta1, h.Beta2, h.Eps, h.WeightDecay)
}

// Step applies one update. grads must be aligned with the parameters.
func (a *Adam) Step(grads [][]float64) {
	a.steps++
	c1 := 1 - math.Pow(a.beta1, float64(a.steps))
	c2 := 1 - math.Pow(a.beta2, float64(a.steps))
	for i, p := range a.params {
		g, m, v := grads[i], a.m[i], a.v[i]
		for j := range p {
			gj := g[j]
			if a.decay != 0 {
				gj += a.decay * p[j]
			}
			m[j] = a.beta1*m[j] + (1-a.beta1)*gj
			v[j] = a.beta2*v[j] + (1-a.beta2)*gj*gj
			p[j] -= a.lr * (m[j] / c1) / (math.Sqrt(v[j]/c2) + a.eps)
		}
	}
}

// SetLR changes the step size, used by the schedules between epochs
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// LR returns the current step size
func (a *Adam) LR() float64 {
	return a.lr
}

// Steps returns the number of updates applied so far
func (a *Adam) Steps() int {
	return a.steps
}
