package events

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseConsistency(t *testing.T) {
	Convey("Given the consistency enumeration", t, func() {
		Convey("Then the three known values parse", func() {
			for _, value := range []string{"Normal", "Jurásica", "Espurruteo"} {
				parsed, err := ParseConsistency(value)
				So(err, ShouldBeNil)
				So(string(parsed), ShouldEqual, value)
			}
		})

		Convey("Then anything else is rejected", func() {
			for _, value := range []string{"", "normal", "JURASICA", "Jurasica", "Explosiva"} {
				_, err := ParseConsistency(value)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestParseTimestamp(t *testing.T) {
	Convey("Given client-supplied timestamps", t, func() {
		Convey("When the value is RFC 3339 with an offset", func() {
			ts, err := ParseTimestamp("2024-05-04T09:30:00-05:00")
			So(err, ShouldBeNil)

			Convey("Then it is converted to UTC", func() {
				So(ts, ShouldResemble, time.Date(2024, 5, 4, 14, 30, 0, 0, time.UTC))
				So(ts.Location(), ShouldPointTo, time.UTC)
			})
		})

		Convey("When the value is naive", func() {
			ts, err := ParseTimestamp("2024-05-04T09:30:00")
			So(err, ShouldBeNil)

			Convey("Then it is treated as already being UTC", func() {
				So(ts, ShouldResemble, time.Date(2024, 5, 4, 9, 30, 0, 0, time.UTC))
			})
		})

		Convey("When the value is naive with fractional seconds", func() {
			ts, err := ParseTimestamp("2024-05-04T09:30:00.250000")
			So(err, ShouldBeNil)
			So(ts, ShouldResemble, time.Date(2024, 5, 4, 9, 30, 0, 250000000, time.UTC))
		})

		Convey("When the value uses a space separator", func() {
			ts, err := ParseTimestamp("2024-05-04 09:30:00")
			So(err, ShouldBeNil)
			So(ts, ShouldResemble, time.Date(2024, 5, 4, 9, 30, 0, 0, time.UTC))
		})

		Convey("When the value is a bare date", func() {
			ts, err := ParseTimestamp("2024-05-04")
			So(err, ShouldBeNil)
			So(ts, ShouldResemble, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC))
		})

		Convey("When the value is unparseable", func() {
			for _, raw := range []string{"", "yesterday", "04/05/2024", "2024-13-40T00:00:00"} {
				_, err := ParseTimestamp(raw)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
