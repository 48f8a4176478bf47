package types

// Config is the full proxyz.ini mapping. Every value has a working
// default; the file itself is optional and CLI flags override it.
type Config struct {
	LogConf     LogConf     `ini:"log"`
	ScraperConf ScraperConf `ini:"scraper"`
	CheckerConf CheckerConf `ini:"checker"`
}

// LogConf selects the global log verbosity.
type LogConf struct {
	Level string `ini:"level"`
}

// ScraperConf controls the harvest run.
type ScraperConf struct {
	Output               string `ini:"output"`
	SourceTimeoutSeconds int    `ini:"sourceTimeout"`
	MaxIdleConns         int    `ini:"maxIdleConns"`
}

// CheckerConf controls the validation run.
type CheckerConf struct {
	List           string `ini:"list"`
	Target         string `ini:"target"`
	TimeoutSeconds int    `ini:"timeout"`
	Concurrency    int    `ini:"concurrency"`
	ProgressEvery  int    `ini:"progressEvery"`
	UserAgentsFile string `ini:"userAgentsFile"`
}

// Defaults returns a Config populated with the stock values used when no
// ini file or flag says otherwise.
func Defaults() *Config {
	return &Config{
		LogConf: LogConf{Level: "info"},
		ScraperConf: ScraperConf{
			Output:               "output.txt",
			SourceTimeoutSeconds: 15,
			MaxIdleConns:         20,
		},
		CheckerConf: CheckerConf{
			List:           "output.txt",
			Target:         "https://httpbin.org/ip",
			TimeoutSeconds: 20,
			Concurrency:    100,
			ProgressEvery:  50,
			UserAgentsFile: "user_agents.txt",
		},
	}
}
