package query

// Options 寻路配置
type Options struct {
	// MaxIterations bounds the number of expanded voxels, 0 for no limit.
	MaxIterations int
	// AllowDiagonal enables the 20 edge and corner neighbours. Without it
	// only the 6 face neighbours are searched.
	AllowDiagonal bool
	// HeuristicWeight scales the Euclidean estimate. Values above 1 trade
	// path optimality for fewer expansions.
	HeuristicWeight float32
}

// DefaultOptions 返回默认的寻路配置
func DefaultOptions() *Options {
	return &Options{
		MaxIterations:   1_000_000,
		AllowDiagonal:   true,
		HeuristicWeight: 1,
	}
}

func (q *GridQuery) GetOptions() *Options {
	return q.options
}

// SetOptions replaces the search options. nil restores the defaults.
func (q *GridQuery) SetOptions(options *Options) {
	if options == nil {
		options = DefaultOptions()
	}
	if options.HeuristicWeight <= 0 {
		options.HeuristicWeight = 1
	}
	q.options = options
}
