package filter_test

import (
	"testing"

	"github.com/okian/cinerank/internal/domain/filter"
	"github.com/okian/cinerank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestYears(t *testing.T) {
	Convey("Given movie tables spanning several years", t, func() {
		in := filter.Tables{
			Basics: []model.TitleBasics{
				{TConst: "tt1", StartYear: "1999"},
				{TConst: "tt2", StartYear: "2005"},
				{TConst: "tt3", StartYear: `\N`},
				{TConst: "tt4", StartYear: "2010"},
				{TConst: "tt5", StartYear: "abc"},
				{TConst: "tt6", StartYear: "2000.0"},
			},
			Akas: []model.TitleAka{
				{TitleID: "tt1", Title: "A"},
				{TitleID: "tt2", Title: "B"},
				{TitleID: "tt2", Title: "B2"},
				{TitleID: "tt3", Title: "C"},
			},
			Crew:    []model.Crew{{TConst: "tt1"}, {TConst: "tt2"}, {TConst: "tt4"}},
			Ratings: []model.Rating{{TConst: "tt2"}, {TConst: "tt4"}, {TConst: "tt6"}},
		}

		Convey("When filtering to the inclusive range 2000-2010", func() {
			out := filter.Years(in, 2000, 2010)

			Convey("Then only numeric years inside the range survive", func() {
				ids := []string{}
				for _, b := range out.Basics {
					ids = append(ids, b.TConst)
				}
				So(ids, ShouldResemble, []string{"tt2", "tt4", "tt6"})
			})

			Convey("And dependent tables keep only surviving identifiers", func() {
				So(len(out.Akas), ShouldEqual, 2)
				So(out.Akas[0].Title, ShouldEqual, "B")
				So(len(out.Crew), ShouldEqual, 2)
				So(len(out.Ratings), ShouldEqual, 3)
			})

			Convey("And the input is left untouched", func() {
				So(len(in.Basics), ShouldEqual, 6)
			})
		})

		Convey("When no year matches", func() {
			out := filter.Years(in, 1800, 1850)

			Convey("Then every table is empty", func() {
				So(out.Basics, ShouldBeEmpty)
				So(out.Akas, ShouldBeEmpty)
				So(out.Crew, ShouldBeEmpty)
				So(out.Ratings, ShouldBeEmpty)
			})
		})
	})
}

func TestParseYear(t *testing.T) {
	Convey("Given raw year values", t, func() {
		y, ok := filter.ParseYear(" 1987 ")
		So(ok, ShouldBeTrue)
		So(y, ShouldEqual, 1987)

		_, ok = filter.ParseYear(`\N`)
		So(ok, ShouldBeFalse)

		_, ok = filter.ParseYear("")
		So(ok, ShouldBeFalse)

		_, ok = filter.ParseYear("NaN")
		So(ok, ShouldBeFalse)
	})
}
