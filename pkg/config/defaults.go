package config

const (
	defaultAlgorithm     = "level"
	defaultItems         = 1000000
	defaultForkDepth     = 5
	defaultMaxGoroutines = 32
)
