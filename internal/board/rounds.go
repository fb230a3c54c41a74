package board

// NextOpenRound returns the first unfilled round, or 0 when the board is full.
// It is the default "current round" for draft advice.
func NextOpenRound(snap Snapshot) int {
	for _, slot := range snap {
		if slot.PlayerName == "" {
			return slot.Round
		}
	}
	return 0
}
