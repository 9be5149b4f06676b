package lsq

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hrp-kinetics/kinfit/kinetics/trace"
)

const (
	minDamping    = 1e-12
	maxDamping    = 1e16
	minDiagonal   = 1e-12
	dampingFactor = 10.0
	minGainRatio  = 0.25
)

// Model evaluates y = f(x; p). When grad is non-nil it must also fill
// grad[k] = ∂f/∂p[k].
type Model func(x float64, p []float64, grad []float64) float64

// Problem is a bounded curve-fitting problem: minimize ½·Σ(f(X[i]; p) - Y[i])²
// subject to Lower ≤ p ≤ Upper.
type Problem struct {
	Model   Model
	X       []float64
	Y       []float64
	Initial []float64
	Lower   []float64
	Upper   []float64
}

// Settings bounds the iteration and sets termination tolerances.
type Settings struct {
	MaxIterations  int
	FTol           float64
	XTol           float64
	GTol           float64
	InitialDamping float64
	Trace          *trace.SolverTrace // optional
}

// DefaultSettings returns the tolerances used by the fitter.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:  200,
		FTol:           1e-8,
		XTol:           1e-8,
		GTol:           1e-8,
		InitialDamping: 1e-3,
	}
}

// Result holds the solver output.
type Result struct {
	Params     []float64
	Residuals  []float64 // f(X[i]; Params) - Y[i]
	Cost       float64   // ½·Σ residual²
	Covariance *mat.SymDense
	Iterations int
	Status     Status
}

// Solve runs the bounded Levenberg-Marquardt iteration. The returned error is
// reserved for malformed problems; failure to converge is reported in Result.Status.
func Solve(prob Problem, settings Settings) (*Result, error) {
	if err := prob.validate(); err != nil {
		return nil, err
	}
	if settings.MaxIterations <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %d", settings.MaxIterations)
	}
	if settings.InitialDamping <= 0 {
		settings.InitialDamping = DefaultSettings().InitialDamping
	}

	n, m := len(prob.X), len(prob.Initial)
	p := append([]float64(nil), prob.Initial...)
	res := &Result{Params: p}

	r, jac, ok := prob.evaluate(p)
	if !ok {
		res.Status = NumericalError
		return res, nil
	}
	cost := 0.5 * floats.Dot(r, r)
	lambda := settings.InitialDamping
	settings.Trace.RecordIteration(trace.IterationRecord{Iteration: 0, Params: p, Cost: cost, Damping: lambda, Accepted: true})

	for res.Status == NotTerminated {
		if cost == 0 {
			res.Status = ExactFit
			break
		}
		if res.Iterations >= settings.MaxIterations {
			res.Status = IterationLimit
			break
		}

		J := mat.NewDense(n, m, jac)
		var gradVec mat.VecDense
		gradVec.MulVec(J.T(), mat.NewVecDense(n, r))
		grad := gradVec.RawVector().Data
		if prob.projectedGradientNorm(grad, p) <= settings.GTol {
			res.Status = GradientConvergence
			break
		}

		var normal mat.Dense
		normal.Mul(J.T(), J)

		res.Iterations++
		step, err := dampedStep(&normal, grad, lambda, prob.activeBounds(grad, p))
		if err != nil {
			logrus.Debugf("lsq: singular damped system at iteration %d (λ=%g): %v", res.Iterations, lambda, err)
			settings.Trace.RecordIteration(trace.IterationRecord{Iteration: res.Iterations, Params: p, Cost: cost, Damping: lambda})
			if lambda = lambda * dampingFactor; lambda > maxDamping {
				res.Status = DampingLimit
			}
			continue
		}

		candidate := make([]float64, m)
		for k := range candidate {
			candidate[k] = clamp(p[k]+step[k], prob.Lower[k], prob.Upper[k])
		}
		stepNorm := floats.Distance(candidate, p, 2)
		if stepNorm <= settings.XTol*(settings.XTol+floats.Norm(p, 2)) {
			settings.Trace.RecordIteration(trace.IterationRecord{Iteration: res.Iterations, Params: p, Cost: cost, Damping: lambda, StepNorm: stepNorm})
			res.Status = StepConvergence
			break
		}

		rNew, jacNew, ok := prob.evaluate(candidate)
		newCost := math.Inf(1)
		if ok {
			newCost = 0.5 * floats.Dot(rNew, rNew)
		}

		if newCost < cost {
			actual := cost - newCost
			predicted := predictedReduction(&normal, grad, candidate, p)
			settings.Trace.RecordIteration(trace.IterationRecord{
				Iteration: res.Iterations, Params: candidate, Cost: newCost,
				Damping: lambda, StepNorm: stepNorm, Accepted: true,
			})
			p, r, jac = candidate, rNew, jacNew
			prevCost := cost
			cost = newCost
			lambda = math.Max(lambda/dampingFactor, minDamping)
			if predicted > 0 && actual/predicted > minGainRatio && actual <= settings.FTol*prevCost {
				res.Status = FunctionConvergence
			}
			continue
		}

		settings.Trace.RecordIteration(trace.IterationRecord{
			Iteration: res.Iterations, Params: p, Cost: cost,
			Damping: lambda, StepNorm: stepNorm, Accepted: false,
		})
		if lambda = lambda * dampingFactor; lambda > maxDamping {
			res.Status = DampingLimit
		}
	}

	res.Params = p
	res.Residuals = r
	res.Cost = cost
	if res.Status.Converged() {
		res.Covariance = covariance(mat.NewDense(n, m, jac), cost, n, m)
	}
	logrus.Debugf("lsq: %s after %d iterations, cost=%g, params=%v", res.Status, res.Iterations, cost, p)
	return res, nil
}

func (prob *Problem) validate() error {
	if prob.Model == nil {
		return fmt.Errorf("model function is nil")
	}
	if len(prob.X) != len(prob.Y) {
		return fmt.Errorf("mismatched data lengths: x=%d y=%d", len(prob.X), len(prob.Y))
	}
	if len(prob.X) == 0 {
		return fmt.Errorf("no data points")
	}
	m := len(prob.Initial)
	if m == 0 {
		return fmt.Errorf("no parameters")
	}
	if len(prob.Lower) != m || len(prob.Upper) != m {
		return fmt.Errorf("bounds must have %d entries, got lower=%d upper=%d", m, len(prob.Lower), len(prob.Upper))
	}
	for k := 0; k < m; k++ {
		if prob.Lower[k] > prob.Upper[k] {
			return fmt.Errorf("parameter %d: lower bound %g exceeds upper bound %g", k, prob.Lower[k], prob.Upper[k])
		}
		if prob.Initial[k] < prob.Lower[k] || prob.Initial[k] > prob.Upper[k] {
			return fmt.Errorf("parameter %d: initial value %g outside bounds [%g, %g]", k, prob.Initial[k], prob.Lower[k], prob.Upper[k])
		}
	}
	return nil
}

// evaluate returns residuals and the row-major n×m Jacobian at p.
// ok is false when any value is non-finite.
func (prob *Problem) evaluate(p []float64) (r, jac []float64, ok bool) {
	n, m := len(prob.X), len(p)
	r = make([]float64, n)
	jac = make([]float64, n*m)
	for i, x := range prob.X {
		row := jac[i*m : (i+1)*m]
		r[i] = prob.Model(x, p, row) - prob.Y[i]
		if math.IsNaN(r[i]) || math.IsInf(r[i], 0) {
			return nil, nil, false
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, false
			}
		}
	}
	return r, jac, true
}

// activeBounds marks parameters sitting on a bound whose gradient points
// further out of the box. Those parameters are held fixed for the step.
func (prob *Problem) activeBounds(grad, p []float64) []bool {
	active := make([]bool, len(p))
	for k, g := range grad {
		active[k] = (p[k] <= prob.Lower[k] && g > 0) || (p[k] >= prob.Upper[k] && g < 0)
	}
	return active
}

// projectedGradientNorm is the infinity norm of the gradient over the free parameters.
func (prob *Problem) projectedGradientNorm(grad, p []float64) float64 {
	norm := 0.0
	active := prob.activeBounds(grad, p)
	for k, g := range grad {
		if !active[k] {
			norm = math.Max(norm, math.Abs(g))
		}
	}
	return norm
}

// dampedStep solves (A + λ·diag(A))δ = -g over the free parameters; δ is
// zero for active ones.
func dampedStep(normal *mat.Dense, grad []float64, lambda float64, active []bool) ([]float64, error) {
	m := len(grad)
	damped := mat.DenseCopyOf(normal)
	rhs := mat.NewVecDense(m, nil)
	for k := 0; k < m; k++ {
		if active[k] {
			for j := 0; j < m; j++ {
				damped.Set(k, j, 0)
				damped.Set(j, k, 0)
			}
			damped.Set(k, k, 1)
			continue
		}
		d := normal.At(k, k)
		damped.Set(k, k, d+lambda*math.Max(d, minDiagonal))
		rhs.SetVec(k, -grad[k])
	}
	var step mat.VecDense
	if err := step.SolveVec(damped, rhs); err != nil {
		return nil, err
	}
	out := step.RawVector().Data
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite step")
		}
	}
	return out, nil
}

// predictedReduction is the decrease of the Gauss-Newton model for the step
// actually taken (after clamping): -(gᵀs + ½·sᵀAs).
func predictedReduction(normal *mat.Dense, grad, candidate, p []float64) float64 {
	s := make([]float64, len(p))
	floats.SubTo(s, candidate, p)
	sv := mat.NewVecDense(len(s), s)
	var as mat.VecDense
	as.MulVec(normal, sv)
	return -(floats.Dot(grad, s) + 0.5*mat.Dot(sv, &as))
}

// covariance estimates the parameter covariance as s²·(JᵀJ)⁻¹ with
// s² = 2·cost/(n-m). Returns nil when it cannot be estimated.
func covariance(J *mat.Dense, cost float64, n, m int) *mat.SymDense {
	if n <= m {
		return nil
	}
	normal := mat.NewSymDense(m, nil)
	normal.SymOuterK(1, J.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(normal); !ok {
		return nil
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil
	}
	inv.ScaleSym(2*cost/float64(n-m), &inv)
	return &inv
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
