// Package lsq implements box-bounded nonlinear least squares for small curve fits.
//
// The solver is a projected Levenberg-Marquardt iteration: each step solves the
// damped normal equations (JᵀJ + λ·diag(JᵀJ))δ = -Jᵀr with gonum/mat, the trial
// point is clamped into [Lower, Upper], and λ shrinks on accepted steps and grows
// on rejected ones. Termination follows the usual ftol / xtol / gtol criteria so a
// local minimum of ½‖r‖² is reported as converged; exhausting the iteration or
// damping ceiling is reported as a non-converged Status, never silently accepted.
package lsq
