package area

import (
	"fmt"
	"math"
)

// Unit selects how an area is displayed
type Unit int

const (
	UnitBelowGuntha Unit = iota
	UnitGuntha
	UnitAcres
)

func (u Unit) String() string {
	switch u {
	case UnitBelowGuntha:
		return "below_guntha"
	case UnitGuntha:
		return "guntha"
	case UnitAcres:
		return "acres"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// MarshalText encodes the unit by name
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Classification is an area broken down into whole acres and leftover guntha.
// For UnitGuntha, Acres is zero and Guntha holds the whole count.
type Classification struct {
	Unit   Unit  `json:"unit"`
	Acres  int64 `json:"acres"`
	Guntha int64 `json:"guntha"`
}

// Classify breaks sqm down into display units. A negative area can only come
// from a broken caller and panics.
func Classify(sqm float64) Classification {
	if sqm < 0 {
		panic(fmt.Sprintf("area: negative area %v", sqm))
	}

	acres := sqm / SquareMetersPerAcre
	if acres < 1 {
		guntha := int64(math.Floor(sqm / SquareMetersPerGuntha))
		if guntha > 0 {
			return Classification{Unit: UnitGuntha, Guntha: guntha}
		}
		return Classification{Unit: UnitBelowGuntha}
	}

	whole := int64(math.Floor(acres))
	leftover := sqm - float64(whole)*SquareMetersPerAcre
	return Classification{
		Unit:   UnitAcres,
		Acres:  whole,
		Guntha: int64(math.Floor(leftover / SquareMetersPerGuntha)),
	}
}

// Label renders the classification without the square meter figure
func (c Classification) Label() string {
	switch c.Unit {
	case UnitGuntha:
		return fmt.Sprintf("%d Guntha", c.Guntha)
	case UnitAcres:
		text := fmt.Sprintf("%d acres", c.Acres)
		if c.Acres == 1 {
			text = "1 acre"
		}
		if c.Guntha > 0 {
			text += fmt.Sprintf(" %d Guntha", c.Guntha)
		}
		return text
	default:
		return "Less than 1 Guntha"
	}
}
