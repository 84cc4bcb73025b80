package config

func DefaultConfig() *Config {
	return &Config{
		Language: "echarts",
		LogLevel: "info",
		Render: Render{
			Width:      "100%",
			Height:     "400px",
			DebounceMS: 16,
		},
		Batch: Limits{
			MaxConcurrent: 4,
		},
	}
}
