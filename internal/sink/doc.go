// Package sink hands a finished PCM stream to its consumers: the default
// audio device or a WAV file.
package sink
