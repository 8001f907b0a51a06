package optim

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	opt := optim.NewSGD(params, optim.SGDConfig{LR: 0.01})
//	for epoch := range epochs {
//	    grads := gradientEstimate(batch)
//	    opt.Step(grads)
//	}
type SGD struct {
	params     []Param
	lr         float64
	momentum   float64
	velocities map[string][]float64
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.001)
	Momentum float64 // Momentum factor (default: 0.0, range [0, 1))
}

// NewSGD creates an SGD optimizer over the given parameter views.
func NewSGD(params []Param, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.001
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[string][]float64),
	}
}

// Step performs a single descent update on every parameter that has a
// gradient entry.
func (s *SGD) Step(grads map[string][]float64) error {
	for _, p := range s.params {
		grad, ok := grads[p.Name]
		if !ok {
			continue
		}
		if err := checkGrad(p, grad); err != nil {
			return err
		}

		if s.momentum == 0 {
			for i := range p.Data {
				p.Data[i] -= s.lr * grad[i]
			}
			continue
		}

		velocity, ok := s.velocities[p.Name]
		if !ok {
			velocity = make([]float64, len(p.Data))
			s.velocities[p.Name] = velocity
		}
		for i := range p.Data {
			velocity[i] = s.momentum*velocity[i] + grad[i]
			p.Data[i] -= s.lr * velocity[i]
		}
	}
	return nil
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) { s.lr = lr }
