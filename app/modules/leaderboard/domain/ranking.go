package leaderboarddomain

import (
	"sort"
	"time"
)

// Entry is one player's best score in a game as seen by the ranking rules.
type Entry struct {
	PlayerID  string
	Score     int64
	UpdatedAt time.Time
	Flagged   bool
}

// Standing is an entry placed on the leaderboard. Rank is 1-indexed.
type Standing struct {
	Rank      int
	PlayerID  string
	Score     int64
	UpdatedAt time.Time
	Flagged   bool
}

// Ahead reports whether a ranks strictly ahead of b: a higher score, or the
// same score reached earlier.
func Ahead(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.UpdatedAt.Before(b.UpdatedAt)
}

// Less orders entries for presentation. Entries identical in score and time
// are ordered by player id so the listing is deterministic.
func Less(a, b Entry) bool {
	if Ahead(a, b) {
		return true
	}
	if Ahead(b, a) {
		return false
	}
	return a.PlayerID < b.PlayerID
}

// RankFromCount turns the number of entries strictly ahead into a rank.
func RankFromCount(ahead int) int {
	return ahead + 1
}

// Rank sorts a snapshot and assigns competition ranks: entries tied on both
// score and time share a rank, and the next rank skips accordingly.
// The input is not modified.
func Rank(entries []Entry) []Standing {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j])
	})

	standings := make([]Standing, len(sorted))
	for i, e := range sorted {
		rank := i + 1
		if i > 0 && !Ahead(sorted[i-1], e) {
			rank = standings[i-1].Rank
		}
		standings[i] = Standing{
			Rank:      rank,
			PlayerID:  e.PlayerID,
			Score:     e.Score,
			UpdatedAt: e.UpdatedAt,
			Flagged:   e.Flagged,
		}
	}
	return standings
}

// Top returns the first n standings of a snapshot.
func Top(entries []Entry, n int) []Standing {
	standings := Rank(entries)
	if n >= 0 && len(standings) > n {
		standings = standings[:n]
	}
	return standings
}

// Find locates a player in a snapshot by ranking it.
func Find(entries []Entry, playerID string) (Standing, bool) {
	for _, s := range Rank(entries) {
		if s.PlayerID == playerID {
			return s, true
		}
	}
	return Standing{}, false
}
