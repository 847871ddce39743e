package events

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeAverages(t *testing.T) {
	now := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)

	Convey("Given grouped activity rows", t, func() {
		Convey("When a user's first event is today", func() {
			rows := []UserActivity{
				{Username: "alice", Total: 4, FirstEvent: time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)},
			}
			averages := computeAverages(rows, now)

			Convey("Then days is 1 and the average equals the total", func() {
				So(averages, ShouldHaveLength, 1)
				So(averages[0].Days, ShouldEqual, 1)
				So(averages[0].Average, ShouldEqual, 4.0)
				So(averages[0].Total, ShouldEqual, 4)
			})
		})

		Convey("When a user has been active across several days", func() {
			rows := []UserActivity{
				{Username: "bob", Total: 4, FirstEvent: time.Date(2024, 5, 8, 23, 59, 0, 0, time.UTC)},
			}
			averages := computeAverages(rows, now)

			Convey("Then days spans first date through today inclusive", func() {
				// May 8, 9, 10 -> 3 days.
				So(averages[0].Days, ShouldEqual, 3)
				So(averages[0].Average, ShouldEqual, 1.33)
			})
		})

		Convey("When the quotient needs rounding", func() {
			rows := []UserActivity{
				// 2/3 = 0.666... -> 0.67
				{Username: "carol", Total: 2, FirstEvent: now.AddDate(0, 0, -2)},
				// 1/6 = 0.1666... -> 0.17
				{Username: "dave", Total: 1, FirstEvent: now.AddDate(0, 0, -5)},
			}
			averages := computeAverages(rows, now)

			Convey("Then the averages are rounded to two decimals", func() {
				So(averages[0].Average, ShouldEqual, 0.67)
				So(averages[1].Average, ShouldEqual, 0.17)
			})
		})

		Convey("When a first event timestamp carries a non-UTC zone", func() {
			lima := time.FixedZone("America/Lima", -5*3600)
			rows := []UserActivity{
				// 22:00 on May 9 in Lima is 03:00 on May 10 UTC.
				{Username: "eve", Total: 2, FirstEvent: time.Date(2024, 5, 9, 22, 0, 0, 0, lima)},
			}
			averages := computeAverages(rows, now)

			Convey("Then the UTC calendar date decides the span", func() {
				So(averages[0].Days, ShouldEqual, 1)
				So(averages[0].Average, ShouldEqual, 2.0)
			})
		})

		Convey("When a first event lies in the future due to clock skew", func() {
			rows := []UserActivity{
				{Username: "frank", Total: 3, FirstEvent: now.AddDate(0, 0, 2)},
			}
			averages := computeAverages(rows, now)

			Convey("Then days is floored at 1", func() {
				So(averages[0].Days, ShouldEqual, 1)
				So(averages[0].Average, ShouldEqual, 3.0)
			})
		})

		Convey("When a row somehow reports zero events", func() {
			rows := []UserActivity{
				{Username: "ghost", Total: 0, FirstEvent: now},
				{Username: "alice", Total: 1, FirstEvent: now},
			}
			averages := computeAverages(rows, now)

			Convey("Then the zero-total user is omitted", func() {
				So(averages, ShouldHaveLength, 1)
				So(averages[0].Username, ShouldEqual, "alice")
			})
		})

		Convey("When there are no rows", func() {
			averages := computeAverages(nil, now)

			Convey("Then the result is empty, not nil", func() {
				So(averages, ShouldNotBeNil)
				So(averages, ShouldBeEmpty)
			})
		})
	})
}

func TestComputeAveragesIdempotent(t *testing.T) {
	Convey("Given a fixed activity snapshot", t, func() {
		now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
		rows := []UserActivity{
			{Username: "alice", Total: 4, FirstEvent: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
			{Username: "bob", Total: 2, FirstEvent: time.Date(2024, 5, 9, 9, 0, 0, 0, time.UTC)},
		}

		Convey("Then computing twice yields identical output", func() {
			So(computeAverages(rows, now), ShouldResemble, computeAverages(rows, now))
		})
	})
}

func TestDaysActive(t *testing.T) {
	Convey("Given the days-active calculation", t, func() {
		cases := []struct {
			name  string
			first time.Time
			now   time.Time
			want  int
		}{
			{
				name:  "same instant",
				first: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
				now:   time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
				want:  1,
			},
			{
				name:  "late first day to early next day",
				first: time.Date(2024, 5, 9, 23, 50, 0, 0, time.UTC),
				now:   time.Date(2024, 5, 10, 0, 10, 0, 0, time.UTC),
				want:  2,
			},
			{
				name:  "spanning a month boundary",
				first: time.Date(2024, 4, 29, 6, 0, 0, 0, time.UTC),
				now:   time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC),
				want:  4,
			},
			{
				name:  "first event after now",
				first: time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
				now:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
				want:  1,
			},
		}

		for _, tc := range cases {
			Convey("Then "+tc.name+" is handled", func() {
				So(daysActive(tc.first, tc.now), ShouldEqual, tc.want)
			})
		}
	})
}

func TestRound2(t *testing.T) {
	Convey("Given two-decimal rounding", t, func() {
		So(round2(0.666666), ShouldEqual, 0.67)
		So(round2(0.125), ShouldEqual, 0.13)
		So(round2(1.0), ShouldEqual, 1.0)
		So(round2(0), ShouldEqual, 0.0)
	})
}
