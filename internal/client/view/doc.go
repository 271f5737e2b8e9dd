// Package view renders stream records and connection states as terminal
// lines. Colours are applied only when the output is a terminal.
package view
