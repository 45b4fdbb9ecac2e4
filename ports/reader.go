package ports

import (
	"gosof/domain/sof"
)

// TableReader loads tabular input files into the core's table shape. The
// loader owns column-header alias normalization; the core only ever sees the
// standard column names.
type TableReader interface {
	ReadSamples(path string) (*sof.Table, error)
	ReadLimits(path string) (*sof.Table, error)
}
