package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/drone"
	"github.com/san-kum/virtdrone/internal/dynamo"
	"github.com/san-kum/virtdrone/internal/physics"
)

const (
	DefaultDt             = 0.01
	DefaultSteps          = 3000
	DefaultTargetAltitude = 10.0
	DefaultAltP           = 0.5
	DefaultMaxSlew        = 1.0
	DefaultInnerP         = 30000.0
	DefaultInnerI         = 3000.0
	DefaultSettleBand     = 0.5
)

type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Drone       DroneConfig       `yaml:"drone"`
	Controller  ControllerConfig  `yaml:"controller"`
	ESC         ESCConfig         `yaml:"esc"`
	Environment EnvironmentConfig `yaml:"environment"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type SimulationConfig struct {
	Dt               float64 `yaml:"dt"`
	Steps            int     `yaml:"steps"`
	Seed             int64   `yaml:"seed"`
	Integrator       string  `yaml:"integrator"`
	Controller       string  `yaml:"controller"`
	SpeedLaw         string  `yaml:"speed_law"`
	InitialAltitudeM float64 `yaml:"initial_altitude_m"`
	ValidateState    bool    `yaml:"validate_state"`
	SettleBandM      float64 `yaml:"settle_band_m"`
}

type DroneConfig struct {
	Name         string           `yaml:"name"`
	BodyWeightKg float64          `yaml:"body_weight_kg"`
	Motor        MotorConfig      `yaml:"motor"`
	Battery      BatteryConfig    `yaml:"battery"`
	TempSensor   TempSensorConfig `yaml:"temp_sensor"`
	GPS          GPSConfig        `yaml:"gps"`
}

type MotorConfig struct {
	MaxSpeedRPM       float64 `yaml:"max_speed_rpm"`
	NominalVoltageV   float64 `yaml:"nominal_voltage_v"`
	MaxCurrentA       float64 `yaml:"max_current_a"`
	Efficiency        float64 `yaml:"efficiency"`
	ThermalResistance float64 `yaml:"thermal_resistance"`
	RampRateRPMps     float64 `yaml:"ramp_rate_rpm_s"`
	WeightKg          float64 `yaml:"weight_kg"`
	BladeDiameterM    float64 `yaml:"blade_diameter_m"`
	BladeShapeCoeff   float64 `yaml:"blade_shape_coeff"`
	ThrustCoeff       float64 `yaml:"thrust_coeff"`
	TorqueCoeff       float64 `yaml:"torque_coeff"`
}

type BatteryConfig struct {
	Cells             int     `yaml:"cells"`
	CellCapacityMah   float64 `yaml:"cell_capacity_mah"`
	CellNominalV      float64 `yaml:"cell_nominal_v"`
	MaxDischargeC     float64 `yaml:"max_discharge_c"`
	WeightKg          float64 `yaml:"weight_kg"`
	InitialSoCPercent float64 `yaml:"initial_soc_percent"`
}

type TempSensorConfig struct {
	MinC      float64 `yaml:"min_c"`
	MaxC      float64 `yaml:"max_c"`
	MinCounts uint64  `yaml:"min_counts"`
	MaxCounts uint64  `yaml:"max_counts"`
	WeightKg  float64 `yaml:"weight_kg"`
}

type GPSConfig struct {
	HorizontalAccuracyM float64 `yaml:"horizontal_accuracy_m"`
	VerticalAccuracyM   float64 `yaml:"vertical_accuracy_m"`
	VelocityAccuracyMps float64 `yaml:"velocity_accuracy_mps"`
	UpdateRateHz        int     `yaml:"update_rate_hz"`
	MaxSatellites       int     `yaml:"max_satellites"`
	WeightKg            float64 `yaml:"weight_kg"`
	Noise               bool    `yaml:"noise"`
}

// ControllerConfig holds the gains for every controller kind. HoverRPM of 0
// means it is derived from the airframe weight and rotor coefficients.
type ControllerConfig struct {
	TargetAltitude float64 `yaml:"target_altitude"`
	AltP           float64 `yaml:"alt_p"`
	MaxSlew        float64 `yaml:"max_slew"`
	InnerP         float64 `yaml:"inner_p"`
	InnerI         float64 `yaml:"inner_i"`
	Kd             float64 `yaml:"kd"`
	HoverRPM       float64 `yaml:"hover_rpm"`
	FixedRPM       float64 `yaml:"fixed_rpm"`
}

type ESCConfig struct {
	MaxDeltaRPMps float64 `yaml:"max_delta_rpm_s"`
	Kp            float64 `yaml:"kp"`
}

type EnvironmentConfig struct {
	Gravity   float64 `yaml:"gravity"`
	DragCoeff float64 `yaml:"drag_coeff"`
	AmbientC  float64 `yaml:"ambient_c"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	motor := components.DefaultMotorSpecs()
	cell := components.DefaultCellSpecs()
	gps := components.DefaultGPSSpecs()
	temp := components.DefaultTemperatureRanges()
	specs := drone.DefaultSpecs()

	return &Config{
		Simulation: SimulationConfig{
			Dt:            DefaultDt,
			Steps:         DefaultSteps,
			Integrator:    "symplectic",
			Controller:    "altitude",
			SpeedLaw:      "direct",
			ValidateState: true,
			SettleBandM:   DefaultSettleBand,
		},
		Drone: DroneConfig{
			Name:         specs.Name,
			BodyWeightKg: specs.BodyWeightKg,
			Motor: MotorConfig{
				MaxSpeedRPM:       motor.MaxSpeedRPM,
				NominalVoltageV:   motor.NominalVoltageV,
				MaxCurrentA:       motor.MaxCurrentA,
				Efficiency:        motor.Efficiency,
				ThermalResistance: motor.ThermalResistance,
				RampRateRPMps:     motor.MaxRampRateRPMps,
				WeightKg:          motor.WeightKg,
				BladeDiameterM:    specs.BladeDiameterM,
				BladeShapeCoeff:   specs.BladeShapeCoeff,
				ThrustCoeff:       physics.DefaultThrustCoeff,
				TorqueCoeff:       physics.DefaultTorqueCoeff,
			},
			Battery: BatteryConfig{
				Cells:             specs.Battery.Cells,
				CellCapacityMah:   cell.CapacityMah,
				CellNominalV:      cell.NominalVoltageV,
				MaxDischargeC:     specs.Battery.MaxDischargeC,
				WeightKg:          specs.Battery.WeightKg,
				InitialSoCPercent: 100,
			},
			TempSensor: TempSensorConfig{
				MinC:      temp.MinC,
				MaxC:      temp.MaxC,
				MinCounts: specs.TempIO.Counts.Min,
				MaxCounts: specs.TempIO.Counts.Max,
				WeightKg:  specs.TempSensorWeightKg,
			},
			GPS: GPSConfig{
				HorizontalAccuracyM: gps.HorizontalAccuracyM,
				VerticalAccuracyM:   gps.VerticalAccuracyM,
				VelocityAccuracyMps: gps.VelocityAccuracyMps,
				UpdateRateHz:        gps.UpdateRateHz,
				MaxSatellites:       gps.MaxSatellites,
				WeightKg:            gps.WeightKg,
			},
		},
		Controller: ControllerConfig{
			TargetAltitude: DefaultTargetAltitude,
			AltP:           DefaultAltP,
			MaxSlew:        DefaultMaxSlew,
			InnerP:         DefaultInnerP,
			InnerI:         DefaultInnerI,
			Kd:             0,
		},
		ESC: ESCConfig{
			MaxDeltaRPMps: 1000,
			Kp:            5,
		},
		Environment: EnvironmentConfig{
			Gravity:   physics.DefaultGravity,
			DragCoeff: physics.DefaultDragCoeff,
			AmbientC:  components.DefaultAmbientTempC,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every out-of-range field, each wrapping
// dynamo.ErrParameterBounds.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format+": %w", append(args, dynamo.ErrParameterBounds)...))
		}
	}

	check(c.Simulation.Dt > 0, "simulation.dt must be positive, got %v", c.Simulation.Dt)
	check(c.Simulation.Steps >= 0, "simulation.steps must not be negative, got %d", c.Simulation.Steps)
	check(c.Simulation.InitialAltitudeM >= 0, "simulation.initial_altitude_m must not be negative")
	check(c.Drone.BodyWeightKg >= 0, "drone.body_weight_kg must not be negative")
	check(c.Drone.Motor.MaxSpeedRPM > 0, "drone.motor.max_speed_rpm must be positive")
	check(c.Drone.Motor.Efficiency > 0 && c.Drone.Motor.Efficiency <= 1,
		"drone.motor.efficiency must be in (0, 1], got %v", c.Drone.Motor.Efficiency)
	check(c.Drone.Motor.RampRateRPMps > 0, "drone.motor.ramp_rate_rpm_s must be positive")
	check(c.Drone.Battery.Cells > 0, "drone.battery.cells must be positive, got %d", c.Drone.Battery.Cells)
	check(c.Drone.Battery.InitialSoCPercent >= 0 && c.Drone.Battery.InitialSoCPercent <= 100,
		"drone.battery.initial_soc_percent must be in [0, 100]")
	check(c.Drone.TempSensor.MaxC > c.Drone.TempSensor.MinC, "drone.temp_sensor range is empty")
	check(c.Drone.TempSensor.MaxCounts > c.Drone.TempSensor.MinCounts, "drone.temp_sensor counts range is empty")
	check(c.Controller.MaxSlew >= 0, "controller.max_slew must not be negative")
	check(c.Environment.DragCoeff >= 0, "environment.drag_coeff must not be negative")

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

// DroneSpecs converts the drone section into airframe specs.
func (c *Config) DroneSpecs() drone.Specs {
	d := c.Drone
	specs := drone.DefaultSpecs()

	specs.Name = d.Name
	specs.BodyWeightKg = d.BodyWeightKg
	specs.Motor = components.MotorSpecs{
		MaxSpeedRPM:       d.Motor.MaxSpeedRPM,
		NominalVoltageV:   d.Motor.NominalVoltageV,
		MaxCurrentA:       d.Motor.MaxCurrentA,
		Efficiency:        d.Motor.Efficiency,
		ThermalResistance: d.Motor.ThermalResistance,
		BladeDiameterM:    d.Motor.BladeDiameterM,
		BladeShapeCoeff:   d.Motor.BladeShapeCoeff,
		MaxRampRateRPMps:  d.Motor.RampRateRPMps,
		WeightKg:          d.Motor.WeightKg,
	}
	specs.BladeDiameterM = d.Motor.BladeDiameterM
	specs.BladeShapeCoeff = d.Motor.BladeShapeCoeff

	specs.Battery = components.NewBatterySpecs(d.Battery.Cells,
		components.CellSpecs{CapacityMah: d.Battery.CellCapacityMah, NominalVoltageV: d.Battery.CellNominalV},
		d.Battery.WeightKg)
	specs.Battery.MaxDischargeC = d.Battery.MaxDischargeC

	specs.TempIO = components.NewAnalogIOSpec(components.IOInput, components.FourTo20mA,
		d.TempSensor.MinCounts, d.TempSensor.MaxCounts)
	specs.TempRanges = components.TemperatureRanges{MinC: d.TempSensor.MinC, MaxC: d.TempSensor.MaxC}
	specs.TempSensorWeightKg = d.TempSensor.WeightKg

	specs.GPS = components.GPSSpecs{
		HorizontalAccuracyM: d.GPS.HorizontalAccuracyM,
		VerticalAccuracyM:   d.GPS.VerticalAccuracyM,
		VelocityAccuracyMps: d.GPS.VelocityAccuracyMps,
		UpdateRateHz:        d.GPS.UpdateRateHz,
		MaxSatellites:       d.GPS.MaxSatellites,
		WeightKg:            d.GPS.WeightKg,
	}
	return specs
}

func (c *Config) ThrustParams() physics.ThrustParams {
	return physics.ThrustParams{
		KT:              c.Drone.Motor.ThrustCoeff,
		KQ:              c.Drone.Motor.TorqueCoeff,
		BladeDiameterM:  c.Drone.Motor.BladeDiameterM,
		BladeShapeCoeff: c.Drone.Motor.BladeShapeCoeff,
	}
}

// Duration is the simulated time covered by Steps ticks of Dt.
func (c *Config) Duration() float64 {
	return float64(c.Simulation.Steps) * c.Simulation.Dt
}
