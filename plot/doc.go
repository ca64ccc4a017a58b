// Package plot draws one period of a waveform, either as a terminal friendly
// character plot or as a PNG image.
package plot
