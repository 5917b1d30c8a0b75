// Package unit provides single-precision physical quantity types for the
// values exchanged with the uSMU.
//
// The device works in single precision throughout, and different protocol
// fields use different scales: voltage set-points travel in volts while the
// current limit travels in milliamps. Tagging every value with its quantity
// keeps scale conversions explicit, so a milliamp figure is never silently
// written into an amp field.
package unit

// Voltage is an electric potential, stored in volts.
type Voltage float32

// Volts returns a Voltage of v volts.
func Volts(v float32) Voltage { return Voltage(v) }

// Millivolts returns a Voltage of v millivolts.
func Millivolts(v float32) Voltage { return Voltage(v / 1000) }

// Volts returns the value in volts.
func (v Voltage) Volts() float32 { return float32(v) }

// Millivolts returns the value in millivolts.
func (v Voltage) Millivolts() float32 { return float32(v) * 1000 }

// Current is an electric current, stored in amperes.
type Current float32

// Amperes returns a Current of i amperes.
func Amperes(i float32) Current { return Current(i) }

// Milliamperes returns a Current of i milliamperes.
func Milliamperes(i float32) Current { return Current(i / 1000) }

// Amperes returns the value in amperes.
func (i Current) Amperes() float32 { return float32(i) }

// Milliamperes returns the value in milliamperes.
func (i Current) Milliamperes() float32 { return float32(i) * 1000 }
