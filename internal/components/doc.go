// Package components holds the data containers a simulated drone is built
// from: sensors, motors, battery cells and the battery/GPS capability
// interfaces.
//
// Containers only store specs and state. Time-driven behaviour lives in the
// physics package, which mutates containers through their setters. Consumers
// that only observe a component should take the read-only interfaces
// ([MotorReader], [Battery], [GPS]); the setter-bearing interfaces
// ([MotorState], [SimBattery], [GPSFixSetter]) are reserved for the
// simulation.
package components
