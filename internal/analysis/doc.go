// Package analysis post-processes recorded flight telemetry.
//
// The package includes tools for judging how well the altitude loop behaves:
//
//   - [ErrorSpectrum]: power spectrum of the altitude tracking error
//   - [AnalyzeStep]: rise time, overshoot and settling of a climb or descent
//   - [ConvergenceRate]: exponential decay rate of the tracking error
//   - [GeneratePhasePortrait]: altitude against vertical velocity
//   - [TargetCrossings]: times the altitude passes through the target
//   - [Sweep]: one gain varied over a range, one run per value
//
// # Oscillation
//
// A dominant peak in the error spectrum away from 0 Hz points at a loop
// that rings:
//
//	freqs, power := analysis.ErrorSpectrum(result.Telemetry)
//	f := analysis.DominantFrequency(freqs, power)
package analysis
