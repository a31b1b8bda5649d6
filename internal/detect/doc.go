// Package detect implements the heuristic clip candidate engine: a sliding
// window over transcript segments, an additive capped engagement score, and
// greedy overlap removal on the scored windows.
package detect
