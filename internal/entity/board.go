package entity

const (
	SymbolX = "X"
	SymbolO = "O"

	EmptyCell = ""

	BoardSize = 9
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - 3x3 grid stored row by row, each cell is EmptyCell, SymbolX or SymbolO.
type Board [BoardSize]string

// Evaluate - returns the symbol holding any of the eight lines, or EmptyCell when nobody does.
// Cells holding anything other than X or O never count towards a line.
func Evaluate(board Board) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if IsSymbol(a) && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// IsFull - reports whether no empty cell is left.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func IsSymbol(mark string) bool {
	return mark == SymbolX || mark == SymbolO
}

func ToggleSymbol(mark string) string {
	if mark == SymbolX {
		return SymbolO
	}
	return SymbolX
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}
