package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"robora/internal/question"
)

func cyberAnswer(org, country string, citations []string) question.Answer {
	return question.Answer{
		Question: question.Question{
			Template: "Is the {organization} in {country} responsible for cybersecurity?",
			Bindings: map[string]string{"organization": org, "country": country},
			Schema:   "organization_cyber",
		},
		Payload: []byte(`{"organization":"` + org + `","country":"` + country +
			`","responsibility_level":"HIGH","explanation":"runs the national CERT","confidence":"HIGH"}`),
		Citations:   citations,
		RetrievedAt: time.Now().UTC(),
	}
}

func TestFlattenWithCitations(t *testing.T) {
	answers := []question.Answer{
		cyberAnswer("Ministry of Health", "ALBANIA", []string{"https://a.example", "https://b.example"}),
		cyberAnswer("Ministry of Justice", "FRANCE", nil),
	}

	table, err := Flatten(answers, []string{"organization", "country"}, true)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	wantHeader := []string{
		"organization", "country",
		"organization", "country", "responsibility_level", "explanation", "confidence",
		"citations",
	}
	if diff := cmp.Diff(wantHeader, table.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if got := table.Rows[0][len(table.Rows[0])-1]; got != "https://a.example; https://b.example" {
		t.Errorf("citations not joined: %q", got)
	}
	if got := table.Rows[1][len(table.Rows[1])-1]; got != "" {
		t.Errorf("empty citations should render empty, got %q", got)
	}
}

func TestFlattenWithoutCitations(t *testing.T) {
	answers := []question.Answer{
		cyberAnswer("Ministry of Health", "ALBANIA", []string{"https://a.example"}),
	}

	table, err := Flatten(answers, []string{"country"}, false)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	for _, col := range table.Header {
		if col == "citations" {
			t.Error("citations column must be dropped")
		}
	}
	if table.Rows[0][0] != "ALBANIA" {
		t.Errorf("binding column wrong: %q", table.Rows[0][0])
	}
}

func TestFlattenRejectsUndecodablePayload(t *testing.T) {
	bad := cyberAnswer("X", "Y", nil)
	bad.Payload = []byte(`{"nope":true}`)

	_, err := Flatten([]question.Answer{bad}, nil, false)
	if err == nil {
		t.Fatal("expected an error for a payload that fails its schema")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := &Table{
		Header: []string{"country", "organization_name"},
		Rows: [][]string{
			{"ALBANIA", "Ministry of Health"},
			{"FRANCE", "Ministère de la Santé"},
		},
	}
	if err := WriteCSV(path, table); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	want := append([][]string{table.Header}, table.Rows...)
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("stale,content\n1,2\n3,4\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	table := &Table{Header: []string{"a"}, Rows: [][]string{{"1"}}}
	if err := WriteCSV(path, table); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "a\n1\n" {
		t.Errorf("stale content survived: %q", data)
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	table := &Table{
		Header: []string{"organization", "responsibility_level"},
		Rows: [][]string{
			{"Ministry of Health", "HIGH"},
			{"Ministry of Justice", "NONE"},
		},
	}
	if err := WriteXLSX(path, table); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	want := append([][]string{table.Header}, table.Rows...)
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
