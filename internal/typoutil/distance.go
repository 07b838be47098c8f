// Package typoutil finds indexed terms within a small edit distance of a misspelled query term.
package typoutil

// Distance computes the Damerau-Levenshtein distance between a and b, counting
// insertions, deletions, substitutions, and adjacent transpositions. It works on runes.
// Once the distance is known to exceed maxDistance the computation stops and
// maxDistance+1 is returned.
func Distance(a, b string, maxDistance int) int {
	runesA := []rune(a)
	runesB := []rune(b)

	lenA := len(runesA)
	lenB := len(runesB)

	if abs(lenA-lenB) > maxDistance {
		return maxDistance + 1
	}
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Three rows: transpositions look two rows back
	prevPrevRow := make([]int, lenB+1)
	prevRow := make([]int, lenB+1)
	currRow := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prevRow[j] = j
	}

	for i := 1; i <= lenA; i++ {
		currRow[0] = i
		minInRow := i

		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}

			currRow[j] = min(prevRow[j]+1, currRow[j-1]+1, prevRow[j-1]+cost)

			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				if transposition := prevPrevRow[j-2] + cost; transposition < currRow[j] {
					currRow[j] = transposition
				}
			}

			if currRow[j] < minInRow {
				minInRow = currRow[j]
			}
		}

		// Row minimums never decrease, so the final distance is already out of range
		if minInRow > maxDistance {
			return maxDistance + 1
		}

		prevPrevRow, prevRow, currRow = prevRow, currRow, prevPrevRow
	}

	return prevRow[lenB]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
