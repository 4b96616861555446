// Package analysis characterizes a sampled trajectory coordinate.
//
//   - [PowerSpectrum]: one-sided power spectrum of a uniformly sampled series
//   - [DominantFrequency]: the strongest oscillation frequency of a coordinate
//   - [Peaks] and [LogDecrement]: amplitude decay between successive maxima
//
// For the undamped spring-mass the dominant frequency recovers the natural
// frequency:
//
//	f, _ := analysis.DominantFrequency(traj, 0)
//	// f ≈ sqrt(k/m) / (2π)
package analysis
