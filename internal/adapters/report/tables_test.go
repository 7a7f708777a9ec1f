package report_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/devops-chapter/skills-analysis/internal/adapters/report"
	"github.com/devops-chapter/skills-analysis/internal/domain/aggregate"
	"github.com/devops-chapter/skills-analysis/internal/domain/bio"
	"github.com/devops-chapter/skills-analysis/internal/domain/levels"
	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/internal/domain/model"
)

func testMapping() *mapping.Mapping {
	m, err := mapping.ParseJSON([]byte(`{"DevOps": {
  "Cloud": ["AWS", "Azure"],
  "Automation": ["Terraform"]
}}`), "DevOps")
	if err != nil {
		panic(err)
	}
	return m
}

var (
	aws       = mapping.Ref{Category: "Cloud", Subcategory: "AWS"}
	azure     = mapping.Ref{Category: "Cloud", Subcategory: "Azure"}
	terraform = mapping.Ref{Category: "Automation", Subcategory: "Terraform"}
)

func respondents() []model.Respondent {
	return []model.Respondent{
		{ID: "Ada", Classification: "Senior", Team: "DevOps", Claims: []model.Claim{
			{Ref: aws, Kind: model.ClaimCurrent, Level: levels.Expert},
			{Ref: aws, Kind: model.ClaimTeamNeed, Level: levels.Advanced},
			{Ref: azure, Kind: model.ClaimCurrent, Level: levels.NotApplicable},
			{Ref: aws, Kind: model.ClaimCurrent, Level: levels.NotApplicable, Selected: true},
			{Ref: mapping.Ref{Category: mapping.Uncategorized, Subcategory: "Rust"}, Kind: model.ClaimFutureLearn, Level: levels.NotApplicable, Selected: true},
			{Ref: terraform, Kind: model.ClaimFutureLearn, Level: levels.NotApplicable, Selected: true},
			{Ref: terraform, Kind: model.ClaimFutureUse, Level: levels.NotApplicable, Selected: true},
		}},
		{ID: "Grace", Classification: "Staff", Team: "DevOps", Claims: []model.Claim{
			{Ref: aws, Kind: model.ClaimTeamNeed, Level: levels.Expert},
			{Ref: azure, Kind: model.ClaimCurrent, Level: levels.Novice},
		}},
	}
}

func build(variant aggregate.Variant) *aggregate.Report {
	b := aggregate.NewBuilder(testMapping(), variant)
	for _, r := range respondents() {
		b.Add(r)
	}
	return b.Report()
}

func TestCurrentTable(t *testing.T) {
	Convey("Given a current skills report", t, func() {
		tbl := report.CurrentTable(build(aggregate.Current))

		Convey("Then entries are followed by their subtotal and a final total", func() {
			So(tbl.Header, ShouldResemble, []string{"Row Type", "Category", "SubCategory", "Respondents", "Avg Skill Level", "Avg Team Need"})
			So(tbl.Rows, ShouldResemble, [][]string{
				{"entry", "Cloud", "AWS", "1", "4.00", "3.50"},
				{"entry", "Cloud", "Azure", "1", "1.00", ""},
				{"subtotal", "Cloud", "", "2", "", ""},
				{"entry", "Automation", "Terraform", "0", "", ""},
				{"subtotal", "Automation", "", "0", "", ""},
				{"total", "", "", "2", "", ""},
			})
		})
	})
}

func TestFutureTable(t *testing.T) {
	Convey("Given a future skills report", t, func() {
		tbl := report.FutureTable(build(aggregate.Future))

		Convey("Then use and learn columns carry the breakdown", func() {
			So(tbl.Rows, ShouldResemble, [][]string{
				{"entry", "Cloud", "AWS", "0", "0", "0"},
				{"entry", "Cloud", "Azure", "0", "0", "0"},
				{"subtotal", "Cloud", "", "0", "0", "0"},
				{"entry", "Automation", "Terraform", "1", "1", "1"},
				{"subtotal", "Automation", "", "1", "1", "1"},
				{"entry", "Uncategorized", "Rust", "1", "0", "1"},
				{"subtotal", "Uncategorized", "", "1", "0", "1"},
				{"total", "", "", "2", "1", "2"},
			})
		})
	})
}

func TestBiosTable(t *testing.T) {
	Convey("Given generated bios", t, func() {
		tbl := report.BiosTable([]bio.Bio{{Name: "Ada", Text: "Hi"}, {Name: "Grace", Text: "Hello"}})

		Convey("Then one row per bio is produced", func() {
			So(tbl.Header, ShouldResemble, []string{"FullName", "Mad Libs"})
			So(tbl.Rows, ShouldResemble, [][]string{{"Ada", "Hi"}, {"Grace", "Hello"}})
		})
	})
}

func TestDetailTables(t *testing.T) {
	Convey("Given normalized respondents", t, func() {
		rs := respondents()

		Convey("When the current detail is built", func() {
			tbl := report.CurrentDetailTable(rs)

			Convey("Then level and need answers share a row per subcategory", func() {
				So(tbl.Rows, ShouldResemble, [][]string{
					{"Ada", "Senior", "DevOps", "Cloud", "AWS", "4", "Expert", "3", "Advanced"},
					{"Ada", "Senior", "DevOps", "Cloud", "Azure", "N/A", "N/A", "N/A", "N/A"},
					{"Grace", "Staff", "DevOps", "Cloud", "AWS", "N/A", "N/A", "4", "Expert"},
					{"Grace", "Staff", "DevOps", "Cloud", "Azure", "1", "Novice", "N/A", "N/A"},
				})
			})
		})

		Convey("When the future detail is built", func() {
			tbl := report.FutureDetailTable(rs)

			Convey("Then use selections come first with 1/0 flags", func() {
				So(tbl.Rows, ShouldResemble, [][]string{
					{"Ada", "Senior", "DevOps", "Automation", "Terraform", "1", "1"},
					{"Ada", "Senior", "DevOps", "Uncategorized", "Rust", "0", "1"},
				})
			})
		})
	})
}
