package x11

import (
	"reflect"
	"testing"
)

func TestSplitChord(t *testing.T) {
	tests := []struct {
		chord   string
		want    []string
		wantErr bool
	}{
		{chord: "Mod4-Mod1-d", want: []string{"Super_L", "Alt_L", "d"}},
		{chord: "control-shift-F12", want: []string{"Control_L", "Shift_L", "F12"}},
		{chord: "space", want: []string{"space"}},
		{chord: "", wantErr: true},
		{chord: "Mod4--d", wantErr: true},
		{chord: "Hyper-d", wantErr: true},
	}

	for _, tt := range tests {
		got, err := SplitChord(tt.chord)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SplitChord(%q) expected error, got %v", tt.chord, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SplitChord(%q) unexpected error: %v", tt.chord, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("SplitChord(%q) = %v, want %v", tt.chord, got, tt.want)
		}
	}
}
