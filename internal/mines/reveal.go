package mines

// floodReveal opens start and, when it has no neighboring mines, every cell
// reachable through other empty cells. Numbered cells on the border are
// opened but not expanded. Flagged cells are skipped. It returns the number
// of cells it opened; start must be a hidden, unflagged safe cell.
func (b *Board) floodReveal(start *Cell) int {
	start.IsRevealed = true
	opened := 1
	if start.NeighborMines != 0 {
		return opened
	}

	// IsRevealed doubles as the visited set.
	queue := []*Cell{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for n := range b.Neighbors(cur.Row, cur.Col) {
			if n.IsRevealed || n.IsFlagged || n.IsMine {
				continue
			}
			n.IsRevealed = true
			opened++
			if n.NeighborMines == 0 {
				queue = append(queue, n)
			}
		}
	}
	return opened
}

func (b *Board) revealMines() {
	for c := range b.All() {
		if c.IsMine {
			c.IsRevealed = true
		}
	}
}
