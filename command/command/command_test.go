package command

import "testing"

func TestParseWatchKind(t *testing.T) {
	tests := []struct {
		in        string
		wantLoad  bool
		wantStore bool
		wantErr   bool
	}{
		{"load", true, false, false},
		{"LOAD", true, false, false},
		{"store", false, true, false},
		{"rw", true, true, false},
		{"loadstore", true, true, false},
		{"load_store", true, true, false},
		{"bogus", false, false, true},
		{"", false, false, true},
	}
	for _, tt := range tests {
		load, store, err := ParseWatchKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWatchKind(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if load != tt.wantLoad || store != tt.wantStore {
			t.Errorf("ParseWatchKind(%q) = (%v, %v), want (%v, %v)", tt.in, load, store, tt.wantLoad, tt.wantStore)
		}
	}
}
