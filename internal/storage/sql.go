package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	insertRunSQL = `
INSERT INTO runs (created_at,
                  preset,
                  seed,
                  dt,
                  steps,
                  integrator,
                  controller,
                  speed_law,
                  target_m,
                  metrics)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunsSQL = `
SELECT 
    id, 
    created_at, 
    preset, 
    seed, 
    dt, 
    steps, 
    integrator, 
    controller, 
    speed_law, 
    target_m, 
    metrics 
FROM runs 
ORDER BY id`

	insertTelemetrySQL = `
INSERT INTO telemetry (run_id,
                       step,
                       time,
                       dt,
                       altitude_m,
                       velocity_mps,
                       target_m,
                       rpm_ref,
                       thrust_n,
                       current_a,
                       battery_v,
                       soc_percent)
VALUES `

	insertMotorTelemetrySQL = `
INSERT INTO motor_telemetry (run_id,
                             step,
                             motor,
                             name,
                             speed_rpm,
                             current_a,
                             temperature_c)
VALUES `

	selectTelemetrySQL = `
SELECT 
    step, 
    time, 
    dt, 
    altitude_m, 
    velocity_mps, 
    target_m, 
    rpm_ref, 
    thrust_n, 
    current_a, 
    battery_v, 
    soc_percent 
FROM telemetry 
WHERE 
    run_id = ? 
ORDER BY step`

	selectMotorTelemetrySQL = `
SELECT 
    step, 
    name, 
    speed_rpm, 
    current_a, 
    temperature_c 
FROM motor_telemetry 
WHERE 
    run_id = ? 
ORDER BY step, motor`
)
