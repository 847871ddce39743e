package config_test

import (
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/kkcos-go/config"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	// t.Setenv cleanups only run when the whole test finishes, so optional
	// variables set by an earlier Convey block would leak into later ones.
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_MAX_CONNS",
		"JWT_ACCESS_TOKEN_DURATION", "JWT_REFRESH_TOKEN_DURATION",
		"PORT", "CHAT_HISTORY_LIMIT",
	} {
		os.Unsetenv(key)
	}
	t.Setenv("DB_USER", "kkcos")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "kkcos")
	t.Setenv("JWT_SECRET", "test-signing-key")
}

func TestLoadConfig(t *testing.T) {
	Convey("Given a fully populated environment", t, func() {
		setBaseEnv(t)
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("DB_MAX_CONNS", "20")
		t.Setenv("JWT_ACCESS_TOKEN_DURATION", "30m")
		t.Setenv("PORT", "9090")
		t.Setenv("CHAT_HISTORY_LIMIT", "25")

		Convey("Then LoadConfig returns every section populated", func() {
			cfg, err := config.LoadConfig()
			So(err, ShouldBeNil)
			So(cfg.DB.Host, ShouldEqual, "db.internal")
			So(cfg.DB.Port, ShouldEqual, 5433)
			So(cfg.DB.MaxConns, ShouldEqual, 20)
			So(cfg.Auth.JWTSecret, ShouldEqual, "test-signing-key")
			So(cfg.Auth.AccessTokenDuration, ShouldEqual, 30*time.Minute)
			So(cfg.Server.Port, ShouldEqual, "9090")
			So(cfg.Chat.HistoryLimit, ShouldEqual, 25)
		})
	})

	Convey("Given only the required variables", t, func() {
		setBaseEnv(t)

		Convey("Then the optional values take their defaults", func() {
			cfg, err := config.LoadConfig()
			So(err, ShouldBeNil)
			So(cfg.DB.Host, ShouldEqual, "localhost")
			So(cfg.DB.Port, ShouldEqual, 5432)
			So(cfg.DB.MaxConns, ShouldEqual, 10)
			So(cfg.Auth.AccessTokenDuration, ShouldEqual, 15*time.Minute)
			So(cfg.Auth.RefreshTokenDuration, ShouldEqual, 168*time.Hour)
			So(cfg.Server.Port, ShouldEqual, "8080")
			So(cfg.Chat.HistoryLimit, ShouldEqual, 50)
		})
	})

	Convey("Given an unparseable integer variable", t, func() {
		setBaseEnv(t)
		t.Setenv("DB_PORT", "not-a-port")

		Convey("Then LoadConfig aggregates the failure into an error", func() {
			cfg, err := config.LoadConfig()
			So(cfg, ShouldBeNil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "DB_PORT")
		})
	})

	Convey("Given an out-of-range pool size", t, func() {
		setBaseEnv(t)
		t.Setenv("DB_MAX_CONNS", "500")

		Convey("Then the value is reported as a configuration error", func() {
			cfg, err := config.LoadConfig()
			So(cfg, ShouldBeNil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "DB_MAX_CONNS")
		})
	})

	Convey("Given an invalid duration", t, func() {
		setBaseEnv(t)
		t.Setenv("JWT_ACCESS_TOKEN_DURATION", "fifteen minutes")

		Convey("Then LoadConfig fails with the offending variable named", func() {
			cfg, err := config.LoadConfig()
			So(cfg, ShouldBeNil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "JWT_ACCESS_TOKEN_DURATION")
		})
	})
}
