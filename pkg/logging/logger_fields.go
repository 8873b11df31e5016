package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers for common component names
func Component(name string) Field {
	return String("component", name)
}

// Subnet tags a log line with the subnet under assessment
func Subnet(cidr string) Field {
	return String("subnet", cidr)
}

// Device tags a log line with a device address
func Device(address string) Field {
	return String("device", address)
}

// Score tags a log line with a health score
func Score(value float64) Field {
	return Float64("score", value)
}

// Rate tags a log line with a rate level name
func Rate(level string) Field {
	return String("rate_level", level)
}

// Tier tags a log line with the assessment tier (1 or 2)
func Tier(n int) Field {
	return Int("tier", n)
}

// RunID tags a log line with the assessment run identifier
func RunID(id string) Field {
	return String("run_id", id)
}

// Latency records an operation duration
func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
