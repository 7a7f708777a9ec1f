package report_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/devops-chapter/skills-analysis/internal/adapters/report"
)

func sampleTable() report.Table {
	return report.Table{
		Header: []string{"FullName", "Mad Libs"},
		Rows: [][]string{
			{"Ada", "Hi, my name is Ada"},
			{"Grace", `She said "hi", twice`},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := report.NewWriter("DevOps", report.WithDir(dir))

	path, err := w.Write(context.Background(), "mad_libs", sampleTable())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := filepath.Join(dir, "mad_libs_DevOps.csv"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "FullName,Mad Libs\nAda,\"Hi, my name is Ada\"\nGrace,\"She said \"\"hi\"\", twice\"\n"
	if string(data) != want {
		t.Errorf("csv =\n%s\nwant\n%s", data, want)
	}
}

func TestWriteVersionsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter("DevOps", report.WithDir(dir))
	ctx := context.Background()

	var got []string
	for i := 0; i < 3; i++ {
		path, err := w.Write(ctx, "current_skills", sampleTable())
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		got = append(got, filepath.Base(path))
	}

	want := []string{"current_skills_DevOps.csv", "current_skills_DevOps_1.csv", "current_skills_DevOps_2.csv"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWriteOverwrite(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter("DevOps", report.WithDir(dir), report.WithOverwrite(true))
	ctx := context.Background()

	first, err := w.Write(ctx, "future_skills", sampleTable())
	if err != nil {
		t.Fatal(err)
	}
	second, err := w.Write(ctx, "future_skills", report.Table{Header: []string{"only"}})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("overwrite wrote %q then %q", first, second)
	}
	data, _ := os.ReadFile(second)
	if string(data) != "only\n" {
		t.Errorf("file not replaced: %q", data)
	}
}

func TestWriteNoFreeName(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter("DevOps", report.WithDir(dir))

	touch := func(name string) {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	touch("mad_libs_DevOps.csv")
	for n := 1; n <= 99; n++ {
		touch("mad_libs_DevOps_" + strconv.Itoa(n) + ".csv")
	}

	_, err := w.Write(context.Background(), "mad_libs", sampleTable())
	if !errors.Is(err, report.ErrNoFreeName) {
		t.Fatalf("err = %v, want ErrNoFreeName", err)
	}
}

func TestWriteTXT(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter("Platform Eng/Ops", report.WithDir(dir), report.WithFormat(report.FormatTXT))

	path, err := w.Write(context.Background(), "mad_libs", sampleTable())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "mad_libs_Platform_Eng_Ops.txt" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}

	data, _ := os.ReadFile(path)
	text := string(data)
	for _, want := range []string{"FullName", "Mad Libs", "Grace", "+", "|"} {
		if !strings.Contains(text, want) {
			t.Errorf("txt output missing %q:\n%s", want, text)
		}
	}
	if !strings.HasSuffix(text, "\n") {
		t.Error("txt output does not end with a newline")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := report.Render(sampleTable(), "xlsx"); !errors.Is(err, report.ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestWriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	w := report.NewWriter("DevOps", report.WithDir(dir))
	if _, err := w.Write(ctx, "mad_libs", sampleTable()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cancelled write created %d files", len(entries))
	}
}
