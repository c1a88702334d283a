// Package physics advances the power and propulsion state of a multirotor.
//
// The functions here are stateless. They read and write state owned by the
// component containers in package components:
//
//   - cell physics: [CellVoltage], [UpdateCell], [SetCellStateOfCharge]
//   - [BatteryPack]: series cells behind the [components.SimBattery] interface
//   - motor physics: [UpdateSpeed], [CalculateCurrent], [CalculateLosses],
//     [UpdateTemperature], composed in [UpdateMotor]
//   - rotor aerodynamics: [Thrust] and [Torque], quadratic in angular speed
//   - [Vertical]: the altitude axis as a [dynamo.System]
//   - [SimGPS] and [GPSNoise]: altitude feedback for the controller
//
// A non-positive time step leaves every piece of state unchanged.
package physics
