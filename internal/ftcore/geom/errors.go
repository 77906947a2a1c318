package geom

import "github.com/foxglyph/ftcore/internal/ftcore/ferrors"

var (
	errMismatchedTags        = ferrors.New("geom", ferrors.CodeInvalidOutline)
	errNonIncreasingContour  = ferrors.New("geom", ferrors.CodeInvalidOutline)
	errLastContourMismatch   = ferrors.New("geom", ferrors.CodeInvalidOutline)
	errConsecutiveCubicOff   = ferrors.New("geom", ferrors.CodeInvalidOutline)
	errInvalidTag            = ferrors.New("geom", ferrors.CodeInvalidOutline)
)
