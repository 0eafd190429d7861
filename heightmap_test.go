package heightmap

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, h Heightmap, level int) ([]byte, Heightmap) {
	t.Helper()
	var buf bytes.Buffer
	n, err := Encode(h, level, &buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n != buf.Len() {
		t.Fatalf("Encode returned %d, but wrote %d bytes", n, buf.Len())
	}

	got, consumed, err := Decode(buf.Bytes(), h.Width, h.Height)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if consumed != buf.Len() {
		t.Fatalf("Decode consumed %d bytes, want %d", consumed, buf.Len())
	}
	if !reflect.DeepEqual(got.Data, h.Data) {
		t.Fatalf("round trip mismatch:\n got  %v\n want %v", got.Data, h.Data)
	}
	return buf.Bytes(), got
}

func repeat(v uint16, n int) []uint16 {
	data := make([]uint16, n)
	for i := range data {
		data[i] = v
	}
	return data
}

// Scenario 1: flat 5x5 field.
func TestScenarioFlatField(t *testing.T) {
	h := Heightmap{Width: 5, Height: 5, Data: repeat(200, 25)}
	roundTrip(t, h, 3)
}

// Scenario 2: arbitrary 5x5 field.
func TestScenarioArbitrary5x5(t *testing.T) {
	h := Heightmap{
		Width: 5, Height: 5,
		Data: []uint16{
			69, 420, 47, 24, 37,
			14, 108, 1645, 29, 74,
			36, 197, 978, 1000, 999,
			1, 0, 60, 20, 13,
			8, 4, 265, 76, 23,
		},
	}
	roundTrip(t, h, 3)
}

// Scenario 3: flat 4x4 field.
func TestScenarioFlat4x4(t *testing.T) {
	h := Heightmap{Width: 4, Height: 4, Data: repeat(200, 16)}
	roundTrip(t, h, 3)
}

// Scenario 4: arbitrary 4x4 field.
func TestScenarioArbitrary4x4(t *testing.T) {
	h := Heightmap{
		Width: 4, Height: 4,
		Data: []uint16{
			69, 420, 47, 24,
			37, 14, 108, 1645,
			29, 74, 36, 197,
			978, 1000, 999, 1,
		},
	}
	roundTrip(t, h, 3)
}

// Scenario 5: checkerboard extremes must fail with VarianceError and
// produce no output.
func TestScenarioCheckerboardVarianceTooHigh(t *testing.T) {
	h := Heightmap{
		Width: 3, Height: 3,
		Data: []uint16{
			0, 65535, 0,
			65535, 0, 65535,
			0, 65535, 0,
		},
	}
	var buf bytes.Buffer
	n, err := Encode(h, 3, &buf)
	if err == nil {
		t.Fatal("expected an error")
	}
	var verr *VarianceError
	if !errors.As(err, &verr) {
		t.Fatalf("got error %v (%T), want *VarianceError", err, err)
	}
	if !errors.Is(err, ErrVarianceTooHigh) {
		t.Error("expected errors.Is(err, ErrVarianceTooHigh) to hold")
	}
	if n != 0 || buf.Len() != 0 {
		t.Errorf("expected no output on failure, got n=%d buf.Len()=%d", n, buf.Len())
	}
}

// Scenario 6: repeating pattern over a large grid, low cardinality.
func TestScenarioRepeatingPattern100x100(t *testing.T) {
	const width, height = 100, 100
	data := make([]uint16, width*height)
	for i := range data {
		data[i] = uint16(i % 10)
	}
	h := Heightmap{Width: width, Height: height, Data: data}
	roundTrip(t, h, 3)
}

func TestMinimumSize3x3(t *testing.T) {
	h := Heightmap{Width: 3, Height: 3, Data: []uint16{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	roundTrip(t, h, 3)
}

func TestTallThin3xH(t *testing.T) {
	h := Heightmap{Width: 3, Height: 20, Data: make([]uint16, 60)}
	for i := range h.Data {
		h.Data[i] = uint16(i * 3 % 4000)
	}
	roundTrip(t, h, 3)
}

func TestWideShortWx3(t *testing.T) {
	h := Heightmap{Width: 20, Height: 3, Data: make([]uint16, 60)}
	for i := range h.Data {
		h.Data[i] = uint16(i * 7 % 4000)
	}
	roundTrip(t, h, 3)
}

func TestAllPixelsIdentical(t *testing.T) {
	h := Heightmap{Width: 10, Height: 10, Data: repeat(42, 100)}
	roundTrip(t, h, 3)
}

func TestMonotoneRamp(t *testing.T) {
	const width, height = 6, 6
	data := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[y*width+x] = uint16(100 + 3*x + 5*y)
		}
	}
	h := Heightmap{Width: width, Height: height, Data: data}
	roundTrip(t, h, 3)
}

func TestBytesConsumedExactnessWithConcatenation(t *testing.T) {
	a := Heightmap{Width: 4, Height: 4, Data: repeat(10, 16)}
	b := Heightmap{
		Width: 5, Height: 5,
		Data: []uint16{
			69, 420, 47, 24, 37,
			14, 108, 1645, 29, 74,
			36, 197, 978, 1000, 999,
			1, 0, 60, 20, 13,
			8, 4, 265, 76, 23,
		},
	}

	var buf bytes.Buffer
	nA, err := Encode(a, 3, &buf)
	if err != nil {
		t.Fatalf("Encode(a): %v", err)
	}
	nB, err := Encode(b, 3, &buf)
	if err != nil {
		t.Fatalf("Encode(b): %v", err)
	}

	combined := buf.Bytes()

	gotA, consumedA, err := Decode(combined, a.Width, a.Height)
	if err != nil {
		t.Fatalf("Decode(a): %v", err)
	}
	if consumedA != nA {
		t.Fatalf("consumedA = %d, want %d", consumedA, nA)
	}
	if !reflect.DeepEqual(gotA.Data, a.Data) {
		t.Fatalf("decoded a mismatch")
	}

	gotB, consumedB, err := Decode(combined[consumedA:], b.Width, b.Height)
	if err != nil {
		t.Fatalf("Decode(b): %v", err)
	}
	if consumedB != nB {
		t.Fatalf("consumedB = %d, want %d", consumedB, nB)
	}
	if !reflect.DeepEqual(gotB.Data, b.Data) {
		t.Fatalf("decoded b mismatch")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	h := Heightmap{
		Width: 5, Height: 5,
		Data: []uint16{
			69, 420, 47, 24, 37,
			14, 108, 1645, 29, 74,
			36, 197, 978, 1000, 999,
			1, 0, 60, 20, 13,
			8, 4, 265, 76, 23,
		},
	}
	var a, b bytes.Buffer
	if _, err := Encode(h, 3, &a); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Encode(h, 3, &b); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("Encode is not deterministic across runs")
	}
}

func TestEncodePanicsOnUndersizedHeightmap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for width < 3")
		}
	}()
	_, _ = Encode(Heightmap{Width: 2, Height: 3, Data: make([]uint16, 6)}, 3, &bytes.Buffer{})
}

func TestEncodePanicsOnLevelOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an out-of-range level")
		}
	}()
	_, _ = Encode(Heightmap{Width: 3, Height: 3, Data: make([]uint16, 9)}, 23, &bytes.Buffer{})
}

func TestDecodeRejectsCorruptedData(t *testing.T) {
	if _, _, err := Decode([]byte{1, 2, 3}, 4, 4); err == nil {
		t.Fatal("expected an error for corrupted data")
	}
}

func FuzzEncodeDecode(f *testing.F) {
	f.Add(uint16(200), int16(3), int16(3), int32(3))
	f.Add(uint16(0), int16(5), int16(5), int32(9))

	f.Fuzz(func(t *testing.T, seed uint16, w, h int16, level int32) {
		width, height := int(w), int(h)
		if width < 3 || width > 40 || height < 3 || height > 40 {
			t.Skip()
		}
		if level < -7 || level > 22 {
			t.Skip()
		}

		data := make([]uint16, width*height)
		for i := range data {
			data[i] = seed + uint16(i)
		}
		hm := Heightmap{Width: width, Height: height, Data: data}

		var buf bytes.Buffer
		n, err := Encode(hm, int(level), &buf)
		if err != nil {
			// VarianceTooHigh is a legitimate outcome for adversarial input.
			var verr *VarianceError
			if errors.As(err, &verr) {
				return
			}
			t.Fatalf("Encode: %v", err)
		}

		got, consumed, err := Decode(buf.Bytes(), width, height)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if consumed != n {
			t.Fatalf("consumed %d, want %d", consumed, n)
		}
		if !reflect.DeepEqual(got.Data, hm.Data) {
			t.Fatalf("round trip mismatch")
		}
	})
}
