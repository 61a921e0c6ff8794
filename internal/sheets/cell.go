package sheets

import (
	"fmt"
	"strings"
)

// ParseA1 converts A1 notation such as "B3" into 1-based column and row.
func ParseA1(cell string) (col, row int, err error) {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		col = col*26 + int(cell[i]-'A') + 1
		i++
	}
	for j := i; j < len(cell); j++ {
		if cell[j] < '0' || cell[j] > '9' {
			return 0, 0, fmt.Errorf("bad cell reference %q", cell)
		}
		row = row*10 + int(cell[j]-'0')
	}
	if col == 0 || row == 0 {
		return 0, 0, fmt.Errorf("bad cell reference %q", cell)
	}
	return col, row, nil
}
