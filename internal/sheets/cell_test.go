package sheets

import "testing"

func TestParseA1(t *testing.T) {
	tests := []struct {
		cell     string
		col, row int
		wantErr  bool
	}{
		{cell: "A1", col: 1, row: 1},
		{cell: "G42", col: 7, row: 42},
		{cell: "AA3", col: 27, row: 3},
		{cell: " b2 ", col: 2, row: 2},
		{cell: "7", wantErr: true},
		{cell: "B", wantErr: true},
		{cell: "B2C", wantErr: true},
		{cell: "", wantErr: true},
	}
	for _, tt := range tests {
		col, row, err := ParseA1(tt.cell)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseA1(%q): expected error", tt.cell)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseA1(%q): %v", tt.cell, err)
			continue
		}
		if col != tt.col || row != tt.row {
			t.Errorf("ParseA1(%q) = (%d, %d), want (%d, %d)", tt.cell, col, row, tt.col, tt.row)
		}
	}
}
