package textmatch

// Ratio returns a similarity measure between a and b in [0, 1] using gestalt
// pattern matching: 2*M/T, where M is the total length of the longest
// matching blocks found between the two strings (longest first, recursing
// left and right of each match) and T is the combined length of both.
//
// Ratio(x, x) == 1.0 for any x. The measure is deterministic but not
// guaranteed to be exactly symmetric. It is cheap enough for the tens of
// thousands of pairwise comparisons the deduplicator performs after its
// length pre-filter.
func Ratio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}

	b2j := make(map[rune][]int, len(br))
	for j, r := range br {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	queue := []span{{0, len(ar), 0, len(br)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(ar, b2j, s)
		if size == 0 {
			continue
		}
		matched += size
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+size < s.ahi && j+size < s.bhi {
			queue = append(queue, span{i + size, s.ahi, j + size, s.bhi})
		}
	}

	return 2 * float64(matched) / float64(total)
}

// span delimits the half-open window [alo, ahi) x [blo, bhi) still to be
// matched between the two rune sequences.
type span struct {
	alo, ahi, blo, bhi int
}

// longestMatch finds the longest block of runes of a within s that also
// appears in b, preferring the leftmost match in a on ties. b2j maps each
// rune of b to its ascending positions.
func longestMatch(a []rune, b2j map[rune][]int, s span) (besti, bestj, bestsize int) {
	besti, bestj = s.alo, s.blo

	// j2len[j] is the length of the longest match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := s.alo; i < s.ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
