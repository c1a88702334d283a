// Package control turns altitude feedback into motor speed references.
//
// Every controller implements [SpeedController]: given the measured
// altitude and the tick length it returns an RPM setpoint for the motors.
//
//   - [Altitude]: slew-limited reference shaping with a gated PI inner loop
//   - [PID]: classic PID on altitude error around a hover offset
//   - [Fixed]: open loop, always the same RPM
//
// [RPMRefP] and [ESC] implement the proportional speed-tracking law an
// electronic speed controller applies between the setpoint and the rotor.
//
// # Usage
//
//	ctrl := control.NewAltitude(1.0, 1.0, 500, 50, 6000)
//	ctrl.SetTargetAltitude(10)
//	rpm := ctrl.Update(altitude, dt)
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control
