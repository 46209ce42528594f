// Package fusion holds the dual-signal detection state machine.
//
// The machine fuses two independent channels, a lexical keyword match and a
// sufficiently confident emotion classification, and locks only when both
// land within the same Detecting episode. It is written as a pure transition
// function over immutable Machine values; timers and announcements come back
// as Effect values for the pipeline to interpret, so the whole lock cycle is
// testable without audio or clocks.
package fusion
