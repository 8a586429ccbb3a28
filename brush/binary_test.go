package brush

import "testing"

func TestBinarize(t *testing.T) {
	tests := []struct{ in, want byte }{
		{0, 0}, {1, 0}, {127, 0}, {128, 255}, {200, 255}, {255, 255},
	}
	for _, tt := range tests {
		if got := Binarize(tt.in); got != tt.want {
			t.Errorf("Binarize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidateAndEnforce(t *testing.T) {
	buf := []byte{0, 255, 12, 200, 127, 128, 255}
	if ValidateBinaryMask(buf) {
		t.Fatal("ValidateBinaryMask accepted non-binary data")
	}
	if idx := FirstNonBinary(buf); idx != 2 {
		t.Errorf("FirstNonBinary = %d, want 2", idx)
	}

	if n := EnforceBinaryMask(buf); n != 4 {
		t.Errorf("EnforceBinaryMask repaired %d, want 4", n)
	}
	want := []byte{0, 255, 0, 255, 0, 255, 255}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %d, want %d", i, buf[i], want[i])
		}
	}
	if !ValidateBinaryMask(buf) {
		t.Error("mask still invalid after enforcement")
	}
	if n := EnforceBinaryMask(buf); n != 0 {
		t.Errorf("second enforcement repaired %d, want 0", n)
	}
}

func TestCountPainted(t *testing.T) {
	if got := CountPainted([]byte{0, 255, 255, 0, 255}); got != 3 {
		t.Errorf("CountPainted = %d, want 3", got)
	}
}

func TestModeText(t *testing.T) {
	for _, m := range []Mode{Paint, Erase} {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", m, err)
		}
		var back Mode
		if err := back.UnmarshalText(text); err != nil || back != m {
			t.Errorf("round trip %v -> %q -> %v (%v)", m, text, back, err)
		}
	}
	if _, err := ParseMode("smudge"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
	if _, err := Mode(9).MarshalText(); err == nil {
		t.Error("MarshalText accepted an invalid mode")
	}
	if Paint.Value() != 255 || Erase.Value() != 0 {
		t.Error("Mode.Value mismatch")
	}
}
