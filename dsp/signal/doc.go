// Package signal provides offline helpers for whole-signal operations such
// as peak detection and peak normalization.
package signal
