package math

import "testing"

type byteCount int64

func TestDivRoundUp(t *testing.T) {
	for _, testCase := range []struct {
		a, b, wanted byteCount
	}{
		{a: 0, b: 4092, wanted: 0},
		{a: 1, b: 4092, wanted: 1},
		{a: 4092, b: 4092, wanted: 1},
		{a: 4093, b: 4092, wanted: 2},
		{a: 12288, b: 4092, wanted: 4},
	} {
		if found := DivRoundUp(testCase.a, testCase.b); found != testCase.wanted {
			t.Fatalf(
				"DivRoundUp(%d, %d): wanted `%d`; found `%d`",
				testCase.a,
				testCase.b,
				testCase.wanted,
				found,
			)
		}
	}
}

func TestMinMax(t *testing.T) {
	if found := Min(uint32(3), 7); found != 3 {
		t.Fatalf("Min(3, 7): wanted `3`; found `%d`", found)
	}
	if found := Max(byteCount(-1), 2); found != 2 {
		t.Fatalf("Max(-1, 2): wanted `2`; found `%d`", found)
	}
}
