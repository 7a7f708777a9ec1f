package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/devops-chapter/skills-analysis/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		csvPath := writeFile(dir, "survey.csv", "Name\n")
		mappingPath := writeFile(dir, "mapping.json", `{"DevOps": {"Cloud": ["AWS"]}}`)
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading a minimal JSON file", func() {
			path := writeFile(dir, "config.json", `{
  "input": {"csv_file": "`+csvPath+`", "mapping_file": "`+mappingPath+`", "team_name": "DevOps"}
}`)
			cfg, err := config.LoadFile(ctx, path)

			convey.Convey("Then defaults fill the rest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Input.TeamName, convey.ShouldEqual, "DevOps")
				convey.So(cfg.Processes, convey.ShouldBeEmpty)
				convey.So(cfg.SelectedProcesses(), convey.ShouldHaveLength, 3)
				convey.So(cfg.Output.Format, convey.ShouldEqual, config.FormatCSV)
				convey.So(cfg.Columns.CurrentLevel, convey.ShouldEqual, config.DefaultCurrentLevelPattern)
			})
		})

		convey.Convey("When SKILLS_CONFIG points to a YAML file and env vars override it", func() {
			path := writeFile(dir, "run.yaml", `
input:
  csv_file: `+csvPath+`
  mapping_file: `+mappingPath+`
  team_name: Platform
processes: [current_skills, current_skills, mad_libs]
output:
  format: TXT
`)
			_ = os.Setenv("SKILLS_CONFIG", path)
			_ = os.Setenv("SKILLS_INPUT__TEAM_NAME", "DevOps")
			_ = os.Setenv("SKILLS_MATCHING__POLICY", "fuzzy")
			_ = os.Setenv("SKILLS_LOG_LEVEL", "debug")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file and env layers are merged", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Input.TeamName, convey.ShouldEqual, "DevOps")
				convey.So(cfg.Matching.Policy, convey.ShouldEqual, config.PolicyFuzzy)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Output.Format, convey.ShouldEqual, config.FormatTXT)
				convey.So(cfg.Processes, convey.ShouldResemble,
					[]string{config.ProcessCurrentSkills, config.ProcessMadLibs})
			})
		})

		convey.Convey("When a required field is missing", func() {
			path := writeFile(dir, "config.json", `{"input": {"csv_file": "`+csvPath+`", "mapping_file": "`+mappingPath+`"}}`)
			_, err := config.LoadFile(ctx, path)

			convey.Convey("Then a configuration error names the field", func() {
				var cfgErr *config.Error
				convey.So(errors.As(err, &cfgErr), convey.ShouldBeTrue)
				convey.So(cfgErr.Field, convey.ShouldEqual, "input.team_name")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a process name is unknown", func() {
			path := writeFile(dir, "config.json", `{
  "input": {"csv_file": "`+csvPath+`", "mapping_file": "`+mappingPath+`", "team_name": "DevOps"},
  "processes": ["mad_libs", "salary_report"]
}`)
			_, err := config.LoadFile(ctx, path)

			convey.Convey("Then the processes field is rejected", func() {
				var cfgErr *config.Error
				convey.So(errors.As(err, &cfgErr), convey.ShouldBeTrue)
				convey.So(cfgErr.Field, convey.ShouldEqual, "processes")
				convey.So(err.Error(), convey.ShouldContainSubstring, "salary_report")
			})
		})

		convey.Convey("When an input file does not exist", func() {
			path := writeFile(dir, "config.json", `{
  "input": {"csv_file": "`+filepath.Join(dir, "nope.csv")+`", "mapping_file": "`+mappingPath+`", "team_name": "DevOps"}
}`)
			_, err := config.LoadFile(ctx, path)

			convey.Convey("Then the csv_file field is rejected", func() {
				var cfgErr *config.Error
				convey.So(errors.As(err, &cfgErr), convey.ShouldBeTrue)
				convey.So(cfgErr.Field, convey.ShouldEqual, "input.csv_file")
				convey.So(errors.Is(err, os.ErrNotExist), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_, err := config.LoadFile(ctx, filepath.Join(dir, "missing.json"))

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is not valid JSON", func() {
			path := writeFile(dir, "config.json", `{"input": `)
			_, err := config.LoadFile(ctx, path)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a column pattern lacks capture groups", func() {
			path := writeFile(dir, "config.json", `{
  "input": {"csv_file": "`+csvPath+`", "mapping_file": "`+mappingPath+`", "team_name": "DevOps"},
  "columns": {"current_level": "^Level (.*)$"}
}`)
			_, err := config.LoadFile(ctx, path)

			convey.Convey("Then the pattern field is rejected", func() {
				var cfgErr *config.Error
				convey.So(errors.As(err, &cfgErr), convey.ShouldBeTrue)
				convey.So(cfgErr.Field, convey.ShouldEqual, "columns.current_level")
			})
		})

		convey.Convey("When enumerated fields hold unknown values", func() {
			cases := map[string]string{
				"output.format":   `"output": {"format": "xlsx"}`,
				"matching.policy": `"matching": {"policy": "soundex"}`,
				"log_level":       `"log_level": "verbose"`,
				"log_format":      `"log_format": "logfmt"`,
			}
			for field, fragment := range cases {
				path := writeFile(dir, "config.json", `{
  "input": {"csv_file": "`+csvPath+`", "mapping_file": "`+mappingPath+`", "team_name": "DevOps"},
  `+fragment+`
}`)
				_, err := config.LoadFile(ctx, path)

				var cfgErr *config.Error
				convey.So(errors.As(err, &cfgErr), convey.ShouldBeTrue)
				convey.So(cfgErr.Field, convey.ShouldEqual, field)
			}
		})
	})
}

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"SKILLS_CONFIG",
		"SKILLS_INPUT__TEAM_NAME",
		"SKILLS_MATCHING__POLICY",
		"SKILLS_LOG_LEVEL",
	} {
		_ = os.Unsetenv(key)
	}
}
