// Package kinetics estimates Michaelis-Menten parameters from enzyme time courses.
//
// # Reading Guide
//
// Each trial flows through three stages, one file each:
//   - cutoff.go: Cutoff Selector, keeps the leading run of rates above the cutoff
//   - fitter.go: Parameter Fitter, removes baseline offsets and fits Vmax and Km
//   - zero.go: Zero-Rate Locator, scans for the concentration where the fitted
//     curve reaches zero rate
//
// trial.go chains the stages for one trial (FitTrial) and for a collection of
// trials with per-trial failure isolation (FitTrials).
//
// # Sub-packages
//   - kinetics/lsq/: box-bounded nonlinear least squares used by the fitter
//   - kinetics/trace/: optional solver iteration trace
//   - kinetics/table/: CSV tables in, result tables out
package kinetics
