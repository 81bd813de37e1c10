package frame

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		f       *RGBA
		wantErr bool
	}{
		{"nil", nil, true},
		{"zero size", &RGBA{}, true},
		{"short buffer", &RGBA{Width: 2, Height: 2, Pix: make([]byte, 4)}, true},
		{"valid", New(2, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOffsetAndSet(t *testing.T) {
	f := New(4, 3)
	f.SetRGBA(2, 1, 1, 2, 3, 4)
	i := f.Offset(2, 1)
	if i != (1*4+2)*BytesPerPixel {
		t.Fatalf("Offset(2,1) = %d", i)
	}
	if f.Pix[i] != 1 || f.Pix[i+1] != 2 || f.Pix[i+2] != 3 || f.Pix[i+3] != 4 {
		t.Errorf("SetRGBA wrote %v", f.Pix[i:i+4])
	}
}

func TestPoolReuseZeroes(t *testing.T) {
	f := Get(4, 4)
	for i := range f.Pix {
		f.Pix[i] = 0xAB
	}
	Put(f)

	g := Get(4, 4)
	for i, b := range g.Pix {
		if b != 0 {
			t.Fatalf("pooled buffer not zeroed at %d: %#x", i, b)
		}
	}
	if err := g.Validate(); err != nil {
		t.Errorf("pooled frame invalid: %v", err)
	}
}

func TestPutNil(t *testing.T) {
	// Must not panic.
	Put(nil)
	Put(&RGBA{})
}
