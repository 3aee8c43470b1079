package analysis

import "math"

const (
	blockSize = 8

	// neutralScore is returned when a sub-score cannot be evaluated.
	neutralScore = 50.0

	naturalBlockVariance = 80.0
	flatBoundaryDiff     = 10.0
)

// CompressionScore estimates how natural an image's 8x8 block structure is.
// Blocks start every 8 pixels and stop before the last block row and column.
// Textured blocks (variance > 80) raise the natural half of the score; flat
// block boundaries (mean absolute difference < 10 across the two rows at a
// block's top edge) lower the compression half. Both halves are normalised by
// the number of whole blocks in the image.
func CompressionScore(gray []uint8, w, h int) float64 {
	totalBlocks := (h / blockSize) * (w / blockSize)
	if totalBlocks == 0 {
		return neutralScore
	}

	var blockScore, boundaryScore int
	for i := 0; i < h-blockSize; i += blockSize {
		for j := 0; j < w-blockSize; j += blockSize {
			if blockVariance(gray, w, i, j) > naturalBlockVariance {
				blockScore++
			}
			if i > 0 && j > 0 && boundaryDiff(gray, w, i, j) < flatBoundaryDiff {
				boundaryScore++
			}
		}
	}

	natural := float64(blockScore) / float64(totalBlocks) * 100
	compression := math.Max(0, 100-float64(boundaryScore)/float64(totalBlocks)*200)
	return (natural + compression) / 2
}

func blockVariance(gray []uint8, w, top, left int) float64 {
	var sum, sumSq float64
	for y := top; y < top+blockSize; y++ {
		for x := left; x < left+blockSize; x++ {
			v := float64(gray[y*w+x])
			sum += v
			sumSq += v * v
		}
	}
	const n = blockSize * blockSize
	mean := sum / n
	return sumSq/n - mean*mean
}

// boundaryDiff compares rows (top-1, top) with rows (top, top+1) over the
// block's columns and returns the mean absolute difference.
func boundaryDiff(gray []uint8, w, top, left int) float64 {
	var sum int
	for dy := 0; dy < 2; dy++ {
		above := (top - 1 + dy) * w
		below := (top + dy) * w
		for x := left; x < left+blockSize; x++ {
			d := int(gray[above+x]) - int(gray[below+x])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return float64(sum) / (2 * blockSize)
}
