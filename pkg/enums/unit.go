package enums

import "strings"

// Unit is the selling unit attached to a sale line.
type Unit string

const (
	UnitPiece Unit = "pcs"
	UnitKg    Unit = "kg"
	UnitLiter Unit = "l"
	UnitPack  Unit = "pack"
	UnitBox   Unit = "box"
)

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}

// QuantityScale returns the number of decimal places quantities on this unit
// keep. Liter-based units keep one decimal; everything else sells whole units.
func (u Unit) QuantityScale() int32 {
	if strings.Contains(strings.ToLower(string(u)), "l") {
		return 1
	}
	return 0
}
