package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/kkcos-go/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "unit-test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 168 * time.Hour,
	}
}

func TestTokenLifecycle(t *testing.T) {
	Convey("Given an auth service", t, func() {
		svc := NewAuthService(nil, testAuthConfig())

		Convey("When an access token is generated", func() {
			tokenString, expiresAt, err := svc.generateSpecificToken(42, tokenTypeAccess, 15*time.Minute)
			So(err, ShouldBeNil)
			So(tokenString, ShouldNotBeEmpty)
			So(expiresAt.After(time.Now()), ShouldBeTrue)

			Convey("Then it validates as an access token", func() {
				claims, err := svc.validateToken(tokenString, tokenTypeAccess)
				So(err, ShouldBeNil)
				So(claims.UserID, ShouldEqual, 42)
				So(claims.TokenType, ShouldEqual, tokenTypeAccess)
			})

			Convey("And it is rejected when a refresh token is expected", func() {
				_, err := svc.validateToken(tokenString, tokenTypeRefresh)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a token is already expired", func() {
			tokenString, _, err := svc.generateSpecificToken(42, tokenTypeAccess, -time.Minute)
			So(err, ShouldBeNil)

			Convey("Then validation fails", func() {
				_, err := svc.validateToken(tokenString, tokenTypeAccess)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a token is signed with a different secret", func() {
			other := NewAuthService(nil, config.AuthConfig{JWTSecret: "some-other-secret"})
			tokenString, _, err := other.generateSpecificToken(42, tokenTypeAccess, 15*time.Minute)
			So(err, ShouldBeNil)

			Convey("Then validation fails", func() {
				_, err := svc.validateToken(tokenString, tokenTypeAccess)
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestJWTMiddleware(t *testing.T) {
	Convey("Given the JWT middleware and a protected handler", t, func() {
		cfg := testAuthConfig()
		svc := NewAuthService(nil, cfg)

		var seenUserID int
		var seenOK bool
		protected := JWTMiddleware(&cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUserID, seenOK = GetUserIDFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		Convey("When a valid access token is presented", func() {
			tokenString, _, err := svc.generateSpecificToken(7, tokenTypeAccess, 15*time.Minute)
			So(err, ShouldBeNil)

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Convey("Then the request reaches the handler with the user id in context", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
				So(seenOK, ShouldBeTrue)
				So(seenUserID, ShouldEqual, 7)
			})
		})

		Convey("When the Authorization header is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Convey("Then the request is rejected with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When the header is not in Bearer format", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Basic abc123")
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Convey("Then the request is rejected with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When the token is garbage", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer not.a.token")
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Convey("Then the request is rejected with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})
	})
}

func TestGenerateTempPassword(t *testing.T) {
	Convey("Given the temporary password generator", t, func() {
		Convey("When a password is generated", func() {
			pw, err := generateTempPassword(tempPasswordLength)
			So(err, ShouldBeNil)

			Convey("Then it has the requested length and stays in the alphabet", func() {
				So(len(pw), ShouldEqual, tempPasswordLength)
				for _, c := range pw {
					So(tempPasswordAlphabet, ShouldContainSubstring, string(c))
				}
			})
		})

		Convey("When many passwords are generated", func() {
			seen := make(map[string]struct{})
			for i := 0; i < 50; i++ {
				pw, err := generateTempPassword(tempPasswordLength)
				So(err, ShouldBeNil)
				seen[pw] = struct{}{}
			}

			Convey("Then they are not all identical", func() {
				So(len(seen), ShouldBeGreaterThan, 1)
			})
		})
	})
}

func TestEmailRegex(t *testing.T) {
	Convey("Given the registration email pattern", t, func() {
		valid := []string{"alice@example.com", "a.b+c@sub.domain.org", "u_1@host-name.io"}
		invalid := []string{"", "alice", "alice@", "@example.com", "alice example@x.com"}

		for _, email := range valid {
			So(emailRegex.MatchString(email), ShouldBeTrue)
		}
		for _, email := range invalid {
			So(emailRegex.MatchString(email), ShouldBeFalse)
		}
	})
}
