package users

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/kkcos-go/apperror"
)

func TestUpdateUserProfileValidation(t *testing.T) {
	Convey("Given a profile update with a malformed email", t, func() {
		svc := NewUserService(nil)
		email := "not-an-email"

		_, err := svc.UpdateUserProfile(context.Background(), 1, &UpdateUserProfileRequest{Email: &email})

		Convey("Then it is rejected before reaching the database", func() {
			So(err, ShouldNotBeNil)
			var appErr *apperror.AppError
			So(errors.As(err, &appErr), ShouldBeTrue)
			So(appErr.Type, ShouldEqual, apperror.ValidationError)
			So(appErr.Message, ShouldEqual, "invalid email format")
		})

		Convey("Then the same addresses registration rejects are rejected here", func() {
			for _, bad := range []string{"missing-at.example.com", "user@", "@example.com", "user @example.com"} {
				addr := bad
				_, err := svc.UpdateUserProfile(context.Background(), 1, &UpdateUserProfileRequest{Email: &addr})
				So(err, ShouldNotBeNil)
			}
		})
	})
}
