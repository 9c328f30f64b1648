package store

import "encoding/binary"

// Per-column weights, in questions_fts column order.
var columnWeights = []float64{
	2.0, // question_text
	1.0, // answer_text
	1.5, // keywords
}

// rankMatchinfo scores a row from matchinfo(questions_fts) in the default
// "pcx" format: phrase count, column count, then for every phrase/column
// pair the hits in this row, hits in all rows and rows with hits. Each
// phrase/column contributes weight * hitsThisRow / hitsAllRows, so rare
// terms and question-text hits rank higher.
func rankMatchinfo(matchinfo []byte) float64 {
	if len(matchinfo) < 8 || len(matchinfo)%4 != 0 {
		return 0
	}
	words := make([]uint32, len(matchinfo)/4)
	for i := range words {
		words[i] = binary.NativeEndian.Uint32(matchinfo[i*4:])
	}

	phrases, cols := int(words[0]), int(words[1])
	if len(words) < 2+3*phrases*cols {
		return 0
	}

	var score float64
	for p := 0; p < phrases; p++ {
		for c := 0; c < cols; c++ {
			base := 2 + 3*(p*cols+c)
			hitsThisRow := words[base]
			hitsAllRows := words[base+1]
			if hitsThisRow == 0 || hitsAllRows == 0 {
				continue
			}
			weight := 1.0
			if c < len(columnWeights) {
				weight = columnWeights[c]
			}
			score += weight * float64(hitsThisRow) / float64(hitsAllRows)
		}
	}
	return score
}
