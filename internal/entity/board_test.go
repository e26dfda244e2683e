package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEvaluate(t *testing.T) {
	t.Run("Returns X when X holds the top row", func(t *testing.T) {
		// Given: a board where X holds the top row
		board := Board{
			SymbolX, SymbolX, SymbolX,
			SymbolO, SymbolO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: evaluating the board
		winner := Evaluate(board)

		// Then: X is the winner
		assert.Equal(t, SymbolX, winner)
	})

	t.Run("Returns O when O holds a column", func(t *testing.T) {
		board := Board{
			SymbolX, SymbolO, SymbolX,
			EmptyCell, SymbolO, SymbolX,
			EmptyCell, SymbolO, EmptyCell,
		}

		assert.Equal(t, SymbolO, Evaluate(board))
	})

	t.Run("Returns the diagonal owner", func(t *testing.T) {
		board := Board{
			SymbolO, SymbolX, SymbolX,
			EmptyCell, SymbolX, SymbolO,
			SymbolX, EmptyCell, SymbolO,
		}

		assert.Equal(t, SymbolX, Evaluate(board))
	})

	t.Run("Returns empty on a drawn board", func(t *testing.T) {
		// Given: a full board without three in a row
		board := Board{
			SymbolX, SymbolO, SymbolX,
			SymbolO, SymbolX, SymbolO,
			SymbolO, SymbolX, SymbolO,
		}

		// When: evaluating the board
		winner := Evaluate(board)

		// Then: nobody wins and the board is full
		assert.Equal(t, EmptyCell, winner)
		assert.True(t, board.IsFull())
	})

	t.Run("Returns empty on an empty board", func(t *testing.T) {
		assert.Equal(t, EmptyCell, Evaluate(Board{}))
		assert.False(t, Board{}.IsFull())
	})

	t.Run("Ignores unknown marks", func(t *testing.T) {
		board := Board{"?", "?", "?"}

		assert.Equal(t, EmptyCell, Evaluate(board))
	})
}

func TestEvaluate_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var board Board
		for i := range board {
			board[i] = rapid.SampledFrom([]string{EmptyCell, SymbolX, SymbolO}).Draw(t, "cell")
		}

		owners := map[string]bool{}
		for _, combo := range WinCombos {
			a := board[combo[0]]
			if a != EmptyCell && a == board[combo[1]] && a == board[combo[2]] {
				owners[a] = true
			}
		}

		winner := Evaluate(board)

		if len(owners) == 0 {
			if winner != EmptyCell {
				t.Fatalf("board %v has no complete line but evaluated to %q", board, winner)
			}
			return
		}

		if !owners[winner] {
			t.Fatalf("board %v evaluated to %q, line owners are %v", board, winner, owners)
		}
	})
}

func TestToggleSymbol(t *testing.T) {
	assert.Equal(t, SymbolO, ToggleSymbol(SymbolX))
	assert.Equal(t, SymbolX, ToggleSymbol(SymbolO))
}

func TestIsValidCell(t *testing.T) {
	assert.True(t, IsValidCell(0))
	assert.True(t, IsValidCell(8))
	assert.False(t, IsValidCell(9))
	assert.False(t, IsValidCell(-1))
}
