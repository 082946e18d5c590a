package field

import "testing"

var codeTests = []struct {
	code uint8
	out  BlockType
}{
	{0, Walkable},
	{1, NonWalkable},
	{2, WalkableWater},
	{3, NonWalkableNonSnipableWater},
	{4, NonWalkableSnipableWater},
	{5, SnipableCliff},
	{6, NonSnipableCliff},
	{7, Unknown},
	{8, Unknown},
	{0xff, Unknown},
}

func TestBlockTypeFromCode(t *testing.T) {
	for _, test := range codeTests {
		if b := BlockTypeFromCode(test.code); b != test.out {
			t.Errorf("BlockTypeFromCode(%d)=%v; expected %v", test.code, b, test.out)
		}
	}
}

func TestBlockTypeCodeRoundTrip(t *testing.T) {
	types := BlockTypes()
	if len(types) != 8 {
		t.Fatalf("expected 8 block types, got %d", len(types))
	}
	for i, b := range types {
		if b.Code() != uint8(i) {
			t.Errorf("%v.Code()=%d; expected %d", b, b.Code(), i)
		}
		if BlockTypeFromCode(b.Code()) != b {
			t.Errorf("%v does not survive its own code", b)
		}
	}
	if BlockType(42).Code() != 7 {
		t.Errorf("out of range block type must encode as unknown")
	}
}

func TestBlockTypeString(t *testing.T) {
	if s := NonWalkableSnipableWater.String(); s != "NonWalkableSnipableWater" {
		t.Errorf("got %q", s)
	}
	if s := BlockType(9).String(); s != "BlockType(9)" {
		t.Errorf("got %q", s)
	}
}

func TestBlockTypeHelpers(t *testing.T) {
	for _, b := range BlockTypes() {
		walk := b == Walkable || b == WalkableWater
		if b.IsWalkable() != walk {
			t.Errorf("%v.IsWalkable()=%v", b, b.IsWalkable())
		}
	}
	if !NonWalkableNonSnipableWater.IsWater() || SnipableCliff.IsWater() {
		t.Errorf("IsWater misclassifies")
	}
}
