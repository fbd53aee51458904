package subduction

import (
	"fmt"
	"math/big"
	"math/bits"
)

// HostTime is a point in time expressed as platform-native monotonic ticks
// (e.g. mach_absolute_time on macOS, QueryPerformanceCounter on Windows).
type HostTime uint64

// Ticks returns the raw tick value.
func (t HostTime) Ticks() uint64 { return uint64(t) }

// ToNanos converts this host time to nanoseconds using the given timebase.
// Uses a 128-bit intermediate to avoid overflow.
func (t HostTime) ToNanos(tb Timebase) uint64 {
	return tb.TicksToNanos(uint64(t))
}

// HostTimeFromNanos creates a HostTime from a nanosecond value and timebase.
// This is the inverse of ToNanos.
func HostTimeFromNanos(nanos uint64, tb Timebase) HostTime {
	return HostTime(tb.NanosToTicks(nanos))
}

// SaturatingDurationSince returns the duration between t and an earlier
// time, or zero if earlier is after t.
func (t HostTime) SaturatingDurationSince(earlier HostTime) Duration {
	if t < earlier {
		return Duration(0)
	}
	return Duration(t - earlier)
}

// CheckedAdd adds a duration, returning false on overflow.
func (t HostTime) CheckedAdd(d Duration) (HostTime, bool) {
	sum := uint64(t) + uint64(d)
	if sum < uint64(t) {
		return 0, false
	}
	return HostTime(sum), true
}

// SaturatingAdd adds a duration, clamping at the HostTime maximum on
// overflow rather than wrapping or falling back to some other value.
func (t HostTime) SaturatingAdd(d Duration) HostTime {
	sum := uint64(t) + uint64(d)
	if sum < uint64(t) {
		return HostTime(^uint64(0))
	}
	return HostTime(sum)
}

// CheckedSub subtracts a duration, returning false on underflow.
func (t HostTime) CheckedSub(d Duration) (HostTime, bool) {
	if uint64(d) > uint64(t) {
		return 0, false
	}
	return HostTime(uint64(t) - uint64(d)), true
}

// Add returns t + d.
func (t HostTime) Add(d Duration) HostTime { return HostTime(uint64(t) + uint64(d)) }

// Sub returns t - d.
func (t HostTime) Sub(d Duration) HostTime { return HostTime(uint64(t) - uint64(d)) }

// Since returns the duration t - earlier. Wraps if earlier is after t;
// callers that can't guarantee ordering should use SaturatingDurationSince.
func (t HostTime) Since(earlier HostTime) Duration { return Duration(uint64(t) - uint64(earlier)) }

func (t HostTime) String() string { return fmt.Sprintf("HostTime(%d)", uint64(t)) }

// Timebase is the rational conversion factor from ticks to nanoseconds:
// nanoseconds = ticks * Numer / Denom. This matches the mach_timebase_info
// pattern on macOS. The correct instance for a given platform is supplied
// by the platform backend, which is out of scope for this package.
type Timebase struct {
	Numer uint32
	Denom uint32
}

// TimebaseNanos is a timebase where ticks are already nanoseconds (1:1).
var TimebaseNanos = Timebase{Numer: 1, Denom: 1}

// NewTimebase creates a timebase with the given numerator and denominator.
//
// NewTimebase panics if denom is zero: a zero denominator is a programmer
// error, not a recoverable condition.
func NewTimebase(numer, denom uint32) Timebase {
	if denom == 0 {
		panic("subduction: timebase denominator must not be zero")
	}
	return Timebase{Numer: numer, Denom: denom}
}

// TicksToNanos converts a tick count to nanoseconds. Uses a 128-bit
// intermediate product so a wide tick count times a 32-bit numerator never
// overflows before the division, then truncates the quotient back to
// 64-bit (matching the source's wrapping u128-to-u64 cast: this never
// panics, even for combinations that would overflow a naive u64
// multiplication).
func (tb Timebase) TicksToNanos(ticks uint64) uint64 {
	return mulDivTrunc64(ticks, uint64(tb.Numer), uint64(tb.Denom))
}

// NanosToTicks converts nanoseconds to a tick count.
func (tb Timebase) NanosToTicks(nanos uint64) uint64 {
	return mulDivTrunc64(nanos, uint64(tb.Denom), uint64(tb.Numer))
}

// mulDivTrunc64 computes (a*b)/c using a 128-bit intermediate product and
// truncates the quotient to 64 bits.
func mulDivTrunc64(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	var product big.Int
	product.SetUint64(hi)
	product.Lsh(&product, 64)
	var loPart big.Int
	loPart.SetUint64(lo)
	product.Add(&product, &loPart)
	var divisor big.Int
	divisor.SetUint64(c)
	product.Div(&product, &divisor)
	var mask big.Int
	mask.SetUint64(^uint64(0))
	product.And(&product, &mask)
	return product.Uint64()
}

func (tb Timebase) String() string { return fmt.Sprintf("Timebase(%d/%d)", tb.Numer, tb.Denom) }

// Duration is a duration in platform-native ticks, the same units as
// HostTime.
type Duration uint64

// DurationZero is a zero-length duration.
const DurationZero Duration = 0

// Ticks returns the raw tick value.
func (d Duration) Ticks() uint64 { return uint64(d) }

// ToNanos converts this duration to nanoseconds using the given timebase.
func (d Duration) ToNanos(tb Timebase) uint64 { return tb.TicksToNanos(uint64(d)) }

// DurationFromNanos creates a duration from a nanosecond value and timebase.
func DurationFromNanos(nanos uint64, tb Timebase) Duration {
	return Duration(tb.NanosToTicks(nanos))
}

// SaturatingAdd adds two durations, clamping at the uint64 maximum.
func (d Duration) SaturatingAdd(rhs Duration) Duration {
	sum := uint64(d) + uint64(rhs)
	if sum < uint64(d) {
		return Duration(^uint64(0))
	}
	return Duration(sum)
}

// SaturatingSub subtracts rhs from d, clamping at zero.
func (d Duration) SaturatingSub(rhs Duration) Duration {
	if rhs > d {
		return DurationZero
	}
	return d - rhs
}

func (d Duration) String() string { return fmt.Sprintf("Duration(%d)", uint64(d)) }
