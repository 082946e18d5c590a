package field

import "fmt"

// BlockType is the walkability classification of one cell.
type BlockType uint8

const (
	Walkable BlockType = iota
	NonWalkable
	WalkableWater
	NonWalkableNonSnipableWater
	NonWalkableSnipableWater
	SnipableCliff
	NonSnipableCliff
	Unknown
)

// DefaultFill is written into cells exposed by Resize.
const DefaultFill = NonWalkable

var blockTypeNames = [...]string{
	Walkable:                    "Walkable",
	NonWalkable:                 "NonWalkable",
	WalkableWater:               "WalkableWater",
	NonWalkableNonSnipableWater: "NonWalkableNonSnipableWater",
	NonWalkableSnipableWater:    "NonWalkableSnipableWater",
	SnipableCliff:               "SnipableCliff",
	NonSnipableCliff:            "NonSnipableCliff",
	Unknown:                     "Unknown",
}

func (b BlockType) String() string {
	if int(b) < len(blockTypeNames) {
		return blockTypeNames[b]
	}
	return fmt.Sprintf("BlockType(%d)", uint8(b))
}

func (b BlockType) IsWalkable() bool {
	return b == Walkable || b == WalkableWater
}

func (b BlockType) IsWater() bool {
	switch b {
	case WalkableWater, NonWalkableNonSnipableWater, NonWalkableSnipableWater:
		return true
	}
	return false
}

// BlockTypeFromCode maps a dense on-disk code to its BlockType.
// Codes outside the table decode to Unknown.
func BlockTypeFromCode(code uint8) BlockType {
	if code < uint8(Unknown) {
		return BlockType(code)
	}
	return Unknown
}

// Code is the inverse of BlockTypeFromCode.
func (b BlockType) Code() uint8 {
	if b > Unknown {
		return uint8(Unknown)
	}
	return uint8(b)
}

// BlockTypes lists every variant in code order.
func BlockTypes() []BlockType {
	return []BlockType{
		Walkable, NonWalkable, WalkableWater, NonWalkableNonSnipableWater,
		NonWalkableSnipableWater, SnipableCliff, NonSnipableCliff, Unknown,
	}
}
