package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/cinerank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should reproduce the reference leaderboards", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.TopMoviesPerCountry, convey.ShouldEqual, 250)
			convey.So(cfg.CountryLimit, convey.ShouldEqual, 50)
			convey.So(cfg.DirectorLimit, convey.ShouldEqual, 15)
			convey.So(cfg.DirectorMinFilms, convey.ShouldEqual, 20)
			convey.So(cfg.DirectorTopRank, convey.ShouldEqual, 20)
			convey.So(cfg.DirectorDefaultVariance, convey.ShouldEqual, 6.0)
			convey.So(cfg.UnknownRank, convey.ShouldEqual, 30)
			convey.So(cfg.GDPRankOffset, convey.ShouldEqual, 10.0)
			convey.So(cfg.SplitDirectors, convey.ShouldBeFalse)
			convey.So(cfg.MetricsFile, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CINERANK_TOP_MOVIES_PER_COUNTRY", "10")
			_ = os.Setenv("CINERANK_DIRECTOR_DEFAULT_VARIANCE", "2.5")
			_ = os.Setenv("CINERANK_SPLIT_DIRECTORS", "true")
			_ = os.Setenv("CINERANK_LOG_LEVEL", "debug")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TopMoviesPerCountry, convey.ShouldEqual, 10)
				convey.So(cfg.DirectorDefaultVariance, convey.ShouldEqual, 2.5)
				convey.So(cfg.SplitDirectors, convey.ShouldBeTrue)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.CountryLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
country_limit: 5
director_limit: 3
metrics_file: /tmp/cinerank.prom
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("CINERANK_CONFIG", tmpFile)
			_ = os.Setenv("CINERANK_DIRECTOR_LIMIT", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CountryLimit, convey.ShouldEqual, 5)                   // From file
				convey.So(cfg.DirectorLimit, convey.ShouldEqual, 7)                  // Overridden by env
				convey.So(cfg.MetricsFile, convey.ShouldEqual, "/tmp/cinerank.prom") // From file
				convey.So(cfg.TopMoviesPerCountry, convey.ShouldEqual, 250)          // From defaults
			})
		})

		convey.Convey("When an explicit path is given", func() {
			fromEnv := createTempConfigFile(t, "country_limit: 5\n")
			explicit := createTempConfigFile(t, "country_limit: 9\n")
			_ = os.Setenv("CINERANK_CONFIG", fromEnv)
			defer clearConfigEnvVars()

			cfg, err := config.LoadFile(ctx, explicit)

			convey.Convey("Then it takes precedence over CINERANK_CONFIG", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CountryLimit, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("CINERANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CINERANK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CINERANK_COUNTRY_LIMIT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a limit is not positive", func() {
			_ = os.Setenv("CINERANK_DIRECTOR_TOP_RANK", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "director_top_rank")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the log level is unknown", func() {
			_ = os.Setenv("CINERANK_LOG_LEVEL", "verbose")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a config with a negative offset", t, func() {
		cfg := config.New()
		cfg.GDPRankOffset = -1

		convey.Convey("Then validation fails", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a config with a negative default variance", t, func() {
		cfg := config.New()
		cfg.DirectorDefaultVariance = -0.5

		convey.Convey("Then validation fails", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "CINERANK_") {
			_ = os.Unsetenv(name)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
