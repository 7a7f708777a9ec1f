// Package config defines the run configuration of the skills analysis tool
// and its loading hooks.
//
// Conventions:
// - New() returns a Config holding every default; loaders only override.
// - A loaded Config is validated once and treated as immutable afterwards.
// - Every failure is reported as *Error naming the offending field.
package config

// Process names accepted in the processes list.
const (
	ProcessMadLibs       = "mad_libs"
	ProcessCurrentSkills = "current_skills"
	ProcessFutureSkills  = "future_skills"
)

// Output formats.
const (
	FormatCSV = "csv"
	FormatTXT = "txt"
)

// Matching policies applied after the exact case-insensitive match fails.
const (
	PolicyExact     = "exact"
	PolicySubstring = "substring"
	PolicyFuzzy     = "fuzzy"
)

// Default header patterns. They follow the wording of the survey export the
// tool was written for; the first capture group is the category and, for
// level questions, the second one is the subcategory.
const (
	DefaultCurrentLevelPattern = `^How would you describe your current experience or comfort level with.(.*)\?\.(.*)$`
	DefaultTeamNeedPattern     = `^Based on what you know today, what level of.(.*).skills do you think your team will need over the next 12 months\?\.(.*)$`
	DefaultCurrentTextPattern  = `^What other.(.*).skills do you have today\?$`
	DefaultFutureUsePattern    = `^Which.(.*).skills would you like to use in your day-to-day work, or feel are underused\?$`
	DefaultFutureLearnPattern  = `^Are there.(.*).skills you are interested in learning or continuing to develop\?$`
)

// AllProcesses lists every known process in execution order.
func AllProcesses() []string {
	return []string{ProcessMadLibs, ProcessCurrentSkills, ProcessFutureSkills}
}

// Config contains the configuration of one analysis run.
type Config struct {
	Input Input `koanf:"input"`

	// Processes selects the reports to produce. Empty means all of them.
	Processes []string `koanf:"processes"`

	Output   Output   `koanf:"output"`
	Matching Matching `koanf:"matching"`
	MadLibs  MadLibs  `koanf:"mad_libs"`
	Columns  Columns  `koanf:"columns"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// MetricsFile, when set, receives the run metrics in the Prometheus
	// text exposition format.
	MetricsFile string `koanf:"metrics_file"`
}

// Input names the files a run reads.
type Input struct {
	CSVFile     string `koanf:"csv_file"`
	MappingFile string `koanf:"mapping_file"`
	TeamName    string `koanf:"team_name"`

	// DedupeRespondents skips later rows that repeat a respondent name.
	DedupeRespondents bool `koanf:"dedupe_respondents"`
}

// Output controls where and how reports are written.
type Output struct {
	Dir       string `koanf:"dir"`
	Format    string `koanf:"format"`
	Overwrite bool   `koanf:"overwrite"`

	// Detail adds the per-respondent long format next to each aggregate.
	Detail bool `koanf:"detail"`
}

// Matching configures the fallback used for free-text skill answers.
type Matching struct {
	Policy   string `koanf:"policy"`
	MinScore int    `koanf:"min_score"`
}

// MadLibs configures bio generation.
type MadLibs struct {
	// Template is a text/template source. Empty selects the built-in sentence.
	Template    string `koanf:"template"`
	TopSkills   int    `koanf:"top_skills"`
	Placeholder string `koanf:"placeholder"`
}

// Columns describes how survey headers are recognized.
type Columns struct {
	Name           string `koanf:"name"`
	Classification string `koanf:"classification"`
	Team           string `koanf:"team"`

	// Separators holds every rune that splits a list answer.
	Separators string `koanf:"separators"`

	CurrentLevel string `koanf:"current_level"`
	TeamNeed     string `koanf:"team_need"`
	CurrentText  string `koanf:"current_text"`
	FutureUse    string `koanf:"future_use"`
	FutureLearn  string `koanf:"future_learn"`
}

// New creates a Config holding every default value.
func New() *Config {
	return &Config{
		Output: Output{
			Dir:    ".",
			Format: FormatCSV,
		},
		Matching: Matching{
			Policy: PolicySubstring,
		},
		MadLibs: MadLibs{
			TopSkills:   3,
			Placeholder: "a mystery skill",
		},
		Columns: Columns{
			Name:           "Name",
			Classification: "Classification Level",
			Team:           "What team are you on?",
			Separators:     ";",
			CurrentLevel:   DefaultCurrentLevelPattern,
			TeamNeed:       DefaultTeamNeedPattern,
			CurrentText:    DefaultCurrentTextPattern,
			FutureUse:      DefaultFutureUsePattern,
			FutureLearn:    DefaultFutureLearnPattern,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Wants reports whether process p is part of the run.
func (c *Config) Wants(p string) bool {
	if len(c.Processes) == 0 {
		return true
	}
	for _, q := range c.Processes {
		if q == p {
			return true
		}
	}
	return false
}

// SelectedProcesses returns the processes of the run in execution order.
func (c *Config) SelectedProcesses() []string {
	out := make([]string, 0, len(AllProcesses()))
	for _, p := range AllProcesses() {
		if c.Wants(p) {
			out = append(out, p)
		}
	}
	return out
}
