package game

import "time"

// Game timing
const (
	TickRate     = 20 // ticks per second
	TickInterval = time.Second / TickRate
)

// Enforcer defaults (world units, units per second)
const (
	DefaultPatrolSpeed    = 3.5
	DefaultChaseSpeed     = 6.0
	DefaultDetectionRange = 15.0
	DefaultChaseRange     = 30.0 // also the patrol area margin
	DefaultCatchDistance  = 2.0
)

// Movement
const (
	DefaultArrivalTolerance = 1.0
	DefaultTurnRate         = 5.0 // fraction of the remaining turn per second
	DefaultRepathDistance   = 0.5
)

// Witness defaults
const (
	DefaultWitnessRange = 10.0
	DefaultAlertDelay   = 500 * time.Millisecond
)

// Chaos meter defaults
const (
	DefaultMeterMax    = 1000.0
	DefaultDecayRate   = 25.0 // per second
	DefaultPrankReward = 15.0
)

// Prank spot defaults
const (
	DefaultPrankRadius      = 2.5
	DefaultGraffitiFadeTime = 5 * time.Second
	DefaultAlarmDuration    = 5 * time.Second
	DefaultKickRespawnTime  = 10 * time.Second
	AlarmCooldownFactor     = 10 // silent cooldown after the alarm stops, as a multiple of its duration
)
