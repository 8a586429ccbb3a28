package brush

import (
	"errors"

	"github.com/gogpu/maskpaint/internal/logging"
)

// ErrInvariantViolation marks a mask byte that is neither 0 nor 255.
// It is logged when repaired and never returned to users.
var ErrInvariantViolation = errors.New("brush: non-binary mask value")

// threshold is the last value that binarizes to 0.
const threshold = 127

// Binarize maps v to 0 or 255 using a threshold of 127.
func Binarize(v byte) byte {
	if v > threshold {
		return 255
	}
	return 0
}

// ValidateBinaryMask reports whether every byte of buf is 0 or 255.
func ValidateBinaryMask(buf []byte) bool {
	return FirstNonBinary(buf) < 0
}

// FirstNonBinary returns the index of the first byte that is neither 0 nor
// 255, or -1.
func FirstNonBinary(buf []byte) int {
	for i, v := range buf {
		if v != 0 && v != 255 {
			return i
		}
	}
	return -1
}

// EnforceBinaryMask binarizes every byte of buf in place and returns the
// number of bytes repaired. A repair means an upstream invariant violation;
// it is logged as a warning.
func EnforceBinaryMask(buf []byte) int {
	repaired := 0
	first := -1
	for i, v := range buf {
		if v == 0 || v == 255 {
			continue
		}
		if first < 0 {
			first = i
		}
		buf[i] = Binarize(v)
		repaired++
	}
	if repaired > 0 {
		logging.Logger().Warn("brush: repaired non-binary mask",
			"err", ErrInvariantViolation, "repaired", repaired, "first", first)
	}
	return repaired
}

// CountPainted returns the number of bytes equal to 255.
func CountPainted(buf []byte) int {
	n := 0
	for _, v := range buf {
		if v == 255 {
			n++
		}
	}
	return n
}
