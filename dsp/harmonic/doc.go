// Package harmonic implements an additive harmonic wave model: a fixed,
// ordered set of weighted and phase-shifted sine partials where partial i
// oscillates at (i+1) times the fundamental.
//
// A model is usually built from its textual form, a list of weight:phase
// pairs such as "1:0,0.5:PI,0.25:0.5PI". Phases are radians; a PI suffix
// multiplies the number in front of it by π.
package harmonic
