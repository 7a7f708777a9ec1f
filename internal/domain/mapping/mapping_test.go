package mapping_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
)

const sampleJSON = `{
  "Platform": {"Networking": ["DNS"]},
  "DevOps": {
    "Cloud": ["AWS (EC2, S3)", "Azure", "GCP"],
    "Automation": ["Terraform", "Ansible"]
  }
}`

func TestParseJSON(t *testing.T) {
	Convey("Given a mapping document with two teams", t, func() {
		Convey("When the DevOps team is requested", func() {
			m, err := mapping.ParseJSON([]byte(sampleJSON), "DevOps")

			Convey("Then only that team is loaded, in file order", func() {
				So(err, ShouldBeNil)
				So(m.Team(), ShouldEqual, "DevOps")
				want := []mapping.Category{
					{Name: "Cloud", Subcategories: []string{"AWS", "Azure", "GCP"}},
					{Name: "Automation", Subcategories: []string{"Terraform", "Ansible"}},
				}
				So(cmp.Diff(want, m.Categories()), ShouldBeEmpty)
				So(m.Len(), ShouldEqual, 5)
				So(m.Refs()[3], ShouldResemble, mapping.Ref{Category: "Automation", Subcategory: "Terraform"})
			})

			Convey("Then lookups ignore case and spacing", func() {
				ref, ok := m.Lookup("  aws ")
				So(ok, ShouldBeTrue)
				So(ref.String(), ShouldEqual, "Cloud/AWS")

				_, ok = m.Lookup("DNS")
				So(ok, ShouldBeFalse)

				cat, ok := m.Category("automation")
				So(ok, ShouldBeTrue)
				So(cat.Name, ShouldEqual, "Automation")

				So(m.Index(mapping.Ref{Category: "Cloud", Subcategory: "GCP"}), ShouldEqual, 2)
				So(m.Index(mapping.Ref{Category: "Automation", Subcategory: "GCP"}), ShouldEqual, -1)
			})
		})

		Convey("When an absent team is requested", func() {
			_, err := mapping.ParseJSON([]byte(sampleJSON), "Security")

			Convey("Then an unknown team error lists the available teams", func() {
				So(errors.Is(err, mapping.ErrUnknownTeam), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "DevOps, Platform")
			})
		})
	})
}

func TestParseJSONRejectsMalformed(t *testing.T) {
	Convey("Given malformed mapping documents", t, func() {
		cases := []struct{ name, doc string }{
			{"top level list", `["DevOps"]`},
			{"team is a list", `{"DevOps": ["AWS"]}`},
			{"team is empty", `{"DevOps": {}}`},
			{"category is a string", `{"DevOps": {"Cloud": "AWS"}}`},
			{"subcategory is a number", `{"DevOps": {"Cloud": ["AWS", 3]}}`},
			{"ambiguous subcategory", `{"DevOps": {"Cloud": ["AWS"], "Hosting": ["aws"]}}`},
			{"subcategory listed twice", `{"DevOps": {"Cloud": ["AWS", "AWS (EC2)"]}}`},
			{"duplicate category", `{"DevOps": {"Cloud": ["AWS"], "Cloud": ["GCP"]}}`},
			{"duplicate team", `{"DevOps": {"Cloud": ["AWS"]}, "DevOps": {"Cloud": ["GCP"]}}`},
			{"reserved category", `{"DevOps": {"uncategorized": ["Misc"]}}`},
			{"empty subcategory", `{"DevOps": {"Cloud": [" (none)"]}}`},
			{"truncated document", `{"DevOps": {"Cloud": ["AWS"`},
			{"trailing data after document", `{"DevOps": {"Cloud": ["AWS"]}} {}`},
		}

		for _, tc := range cases {
			Convey("When the document has a "+tc.name, func() {
				m, err := mapping.ParseJSON([]byte(tc.doc), "DevOps")

				Convey("Then it is rejected as an invalid mapping", func() {
					So(m, ShouldBeNil)
					So(errors.Is(err, mapping.ErrInvalidMapping), ShouldBeTrue)
					var mErr *mapping.Error
					So(errors.As(err, &mErr), ShouldBeTrue)
				})
			})
		}
	})
}

func TestParseYAML(t *testing.T) {
	Convey("Given a YAML mapping document", t, func() {
		doc := `
DevOps:
  Cloud:
    - AWS
    - Azure
  Automation: [Terraform]
`
		Convey("When it is parsed", func() {
			m, err := mapping.ParseYAML([]byte(doc), "DevOps")

			Convey("Then categories keep file order", func() {
				So(err, ShouldBeNil)
				So(m.Refs(), ShouldResemble, []mapping.Ref{
					{Category: "Cloud", Subcategory: "AWS"},
					{Category: "Cloud", Subcategory: "Azure"},
					{Category: "Automation", Subcategory: "Terraform"},
				})
			})
		})

		Convey("When a category repeats", func() {
			_, err := mapping.ParseYAML([]byte("DevOps:\n  Cloud: [AWS]\n  Cloud: [GCP]\n"), "DevOps")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, mapping.ErrInvalidMapping), ShouldBeTrue)
			})
		})

		Convey("When the team is missing", func() {
			_, err := mapping.ParseYAML([]byte(doc), "QA")

			Convey("Then an unknown team error is returned", func() {
				So(errors.Is(err, mapping.ErrUnknownTeam), ShouldBeTrue)
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given mapping files on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		jsonPath := filepath.Join(dir, "mapping.json")
		So(os.WriteFile(jsonPath, []byte(sampleJSON), 0o600), ShouldBeNil)

		Convey("When loading the JSON file", func() {
			m, err := mapping.Load(ctx, jsonPath, "DevOps")

			Convey("Then the mapping is returned", func() {
				So(err, ShouldBeNil)
				So(m.Len(), ShouldEqual, 5)
			})
		})

		Convey("When the team is unknown", func() {
			_, err := mapping.Load(ctx, jsonPath, "Nope")

			Convey("Then the error names the file", func() {
				var mErr *mapping.Error
				So(errors.As(err, &mErr), ShouldBeTrue)
				So(mErr.File, ShouldEqual, jsonPath)
				So(err.Error(), ShouldContainSubstring, "mapping.json")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := mapping.Load(ctx, filepath.Join(dir, "missing.json"), "DevOps")

			Convey("Then an invalid mapping error wraps the os error", func() {
				So(errors.Is(err, mapping.ErrInvalidMapping), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}

func TestCleanNameAndKey(t *testing.T) {
	Convey("Given raw subcategory text", t, func() {
		So(mapping.CleanName("Kubernetes (EKS, AKS) "), ShouldEqual, "Kubernetes")
		So(mapping.CleanName("  Go  "), ShouldEqual, "Go")
		So(mapping.Key("Infrastructure   As Code"), ShouldEqual, mapping.Key("infrastructure as code"))
		So(mapping.Key("STRASSE"), ShouldEqual, mapping.Key("strasse"))
	})
}
