// Package render projects a sequence of table values through a line
// oriented text template.
//
// A template is a list of lines. A line starting with the marker character
// (default '*') is a data line: it is emitted once per value with the marker
// removed. Every other line is emitted exactly once. Placeholders are written
// in braces:
//
//	{value}      the current value (data lines only)
//	{index}      the zero-based index of the current value (data lines only)
//	{sep:TEXT}   TEXT for every value except the last (data lines only)
//	{last:TEXT}  TEXT for the last value only (data lines only)
//	{date}       the generation timestamp from Params.Date
//	{name}       any named parameter from Params.Values
//
// Placeholders that do not resolve are copied through verbatim, so templates
// can contain literal braces such as C array initializers.
package render
