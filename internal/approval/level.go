package approval

// Level is an approval tier. L0 through L4 clear instantly; L5+ escalates;
// N/A means no threshold row applied.
type Level string

const (
	LevelL0     Level = "L0"
	LevelL1     Level = "L1"
	LevelL2     Level = "L2"
	LevelL3     Level = "L3"
	LevelL4     Level = "L4"
	LevelL5Plus Level = "L5+"
	LevelNA     Level = "N/A"
)

var instantLevels = [LevelCount]Level{LevelL0, LevelL1, LevelL2, LevelL3, LevelL4}

// IsInstant reports whether the tier is approved without escalation.
func (l Level) IsInstant() bool {
	return l.Rank() >= 0 && l.Rank() < LevelCount
}

// Rank orders tiers by escalation. N/A and unknown values rank -1.
func (l Level) Rank() int {
	for i, lv := range instantLevels {
		if lv == l {
			return i
		}
	}
	if l == LevelL5Plus {
		return LevelCount
	}
	return -1
}

// Valid reports whether l is a known tier.
func (l Level) Valid() bool {
	return l == LevelNA || l.Rank() >= 0
}
