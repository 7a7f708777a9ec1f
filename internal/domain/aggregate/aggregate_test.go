package aggregate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/devops-chapter/skills-analysis/internal/domain/aggregate"
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

func uncategorized(s string) mapping.Ref {
	return mapping.Ref{Category: mapping.Uncategorized, Subcategory: s}
}

func level(ref mapping.Ref, kind model.ClaimKind, l levels.Level) model.Claim {
	return model.Claim{Ref: ref, Kind: kind, Level: l}
}

func selected(ref mapping.Ref, kind model.ClaimKind) model.Claim {
	return model.Claim{Ref: ref, Kind: kind, Level: levels.NotApplicable, Selected: true}
}

func respondents() []model.Respondent {
	return []model.Respondent{
		{ID: "ada", Claims: []model.Claim{
			level(aws, model.ClaimCurrent, levels.Expert),
			level(aws, model.ClaimTeamNeed, levels.Advanced),
			selected(aws, model.ClaimCurrent),
			selected(uncategorized("Kubernetes"), model.ClaimCurrent),
			selected(terraform, model.ClaimFutureLearn),
			selected(uncategorized("Rust"), model.ClaimFutureUse),
		}},
		{ID: "grace", Claims: []model.Claim{
			level(aws, model.ClaimCurrent, levels.None),
			level(azure, model.ClaimCurrent, levels.Intermediate),
			level(aws, model.ClaimTeamNeed, levels.Expert),
			selected(uncategorized("kubernetes"), model.ClaimCurrent),
			selected(terraform, model.ClaimFutureUse),
			selected(terraform, model.ClaimFutureLearn),
		}},
		{ID: "linus"},
	}
}

func build(variant aggregate.Variant, rs []model.Respondent) *aggregate.Report {
	b := aggregate.NewBuilder(testMapping(), variant)
	for _, r := range rs {
		b.Add(r)
	}
	return b.Report()
}

func TestCurrentReport(t *testing.T) {
	Convey("Given respondents with current skill claims", t, func() {
		report := build(aggregate.Current, respondents())

		Convey("Then every mapping pair is listed in order, followed by Uncategorized", func() {
			var got []string
			for _, e := range report.Entries {
				got = append(got, e.Category+"/"+e.Subcategory)
			}
			So(got, ShouldResemble, []string{"Cloud/AWS", "Cloud/Azure", "Automation/Terraform", "Uncategorized/Kubernetes"})
		})

		Convey("Then a respondent counts once per pair", func() {
			e, ok := report.Entry("Cloud", "AWS")
			So(ok, ShouldBeTrue)
			So(e.Count, ShouldEqual, 1)

			e, _ = report.Entry("Cloud", "Azure")
			So(e.Count, ShouldEqual, 1)

			e, _ = report.Entry("Automation", "Terraform")
			So(e.Count, ShouldEqual, 0)
		})

		Convey("Then averages cover rated answers only", func() {
			e, _ := report.Entry("Cloud", "AWS")
			avg, ok := e.AvgLevel()
			So(ok, ShouldBeTrue)
			So(avg, ShouldEqual, 2.0)
			need, ok := e.AvgNeed()
			So(ok, ShouldBeTrue)
			So(need, ShouldEqual, 3.5)

			e, _ = report.Entry("Automation", "Terraform")
			_, ok = e.AvgLevel()
			So(ok, ShouldBeFalse)
		})

		Convey("Then unmatched spellings share one Uncategorized entry", func() {
			e, ok := report.Entry(mapping.Uncategorized, "KUBERNETES")
			So(ok, ShouldBeTrue)
			So(e.Subcategory, ShouldEqual, "Kubernetes")
			So(e.Count, ShouldEqual, 2)
			So(e.Uncategorized(), ShouldBeTrue)
		})

		Convey("Then subtotals and totals add up", func() {
			cloud, _ := report.Subtotal("Cloud")
			So(cloud.Count, ShouldEqual, 2)
			auto, _ := report.Subtotal("Automation")
			So(auto.Count, ShouldEqual, 0)
			unc, _ := report.Subtotal(mapping.Uncategorized)
			So(unc.Count, ShouldEqual, 2)
			So(report.Selections, ShouldEqual, 4)
			So(report.Respondents, ShouldEqual, 3)
			So(report.Team, ShouldEqual, "DevOps")
		})
	})

	Convey("Given the single respondent example", t, func() {
		mp, err := mapping.ParseJSON([]byte(`{"DevOps": {"Cloud": ["AWS","Azure"]}}`), "DevOps")
		So(err, ShouldBeNil)
		b := aggregate.NewBuilder(mp, aggregate.Current)
		b.Add(model.Respondent{ID: "r1", Claims: []model.Claim{selected(aws, model.ClaimCurrent)}})
		report := b.Report()

		Convey("Then Cloud/AWS is 1 and Cloud/Azure is 0", func() {
			e, _ := report.Entry("Cloud", "AWS")
			So(e.Count, ShouldEqual, 1)
			e, ok := report.Entry("Cloud", "Azure")
			So(ok, ShouldBeTrue)
			So(e.Count, ShouldEqual, 0)
			So(report.Respondents, ShouldEqual, 1)
		})
	})
}

func TestFutureReport(t *testing.T) {
	Convey("Given respondents with future skill claims", t, func() {
		report := build(aggregate.Future, respondents())

		Convey("Then use and learn are broken down", func() {
			e, _ := report.Entry("Automation", "Terraform")
			So(e.Count, ShouldEqual, 2)
			So(e.Use, ShouldEqual, 1)
			So(e.Learn, ShouldEqual, 2)

			sub, _ := report.Subtotal("Automation")
			So(sub.Use, ShouldEqual, 1)
			So(sub.Learn, ShouldEqual, 2)
		})

		Convey("Then current answers are ignored", func() {
			e, _ := report.Entry("Cloud", "AWS")
			So(e.Count, ShouldEqual, 0)
			_, ok := report.Entry(mapping.Uncategorized, "Kubernetes")
			So(ok, ShouldBeFalse)
		})

		Convey("Then unmatched future answers are kept", func() {
			e, ok := report.Entry(mapping.Uncategorized, "Rust")
			So(ok, ShouldBeTrue)
			So(e.Use, ShouldEqual, 1)
		})
	})
}

func TestOrderIndependence(t *testing.T) {
	Convey("Given the same respondents in two orders", t, func() {
		rs := respondents()
		reversed := make([]model.Respondent, len(rs))
		for i, r := range rs {
			reversed[len(rs)-1-i] = r
		}

		Convey("Then both reports are identical", func() {
			for _, v := range []aggregate.Variant{aggregate.Current, aggregate.Future} {
				So(cmp.Diff(build(v, rs), build(v, reversed)), ShouldBeEmpty)
			}
		})
	})
}
