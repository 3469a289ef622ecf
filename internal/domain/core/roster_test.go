package core

import (
	"sync"
	"testing"
)

func sampleRoster() []Employee {
	return []Employee{
		{ID: "1", Name: "João Araújo", Company: CompanyCampluvas, Salary: 3000},
		{ID: "2", Name: "Ana Lima", Company: CompanyLocatex, Salary: 5000},
		{ID: "3", Name: "Joana Souza", Company: CompanyLocatex, Salary: 1500},
	}
}

func TestFilterRosterIgnoresCaseAndAccents(t *testing.T) {
	got := FilterRoster(sampleRoster(), "JOAO", CompanyNone)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected João, got %+v", got)
	}
	got = FilterRoster(sampleRoster(), "araujo", CompanyNone)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected accent-insensitive match, got %+v", got)
	}
}

func TestFilterRosterByCompany(t *testing.T) {
	got := FilterRoster(sampleRoster(), "jo", CompanyLocatex)
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("expected Joana only, got %+v", got)
	}
	if all := ByCompany(sampleRoster(), CompanyNone); len(all) != 3 {
		t.Fatalf("expected everyone, got %d", len(all))
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(sampleRoster(), 4)
	if summary.Headcount != 3 || summary.RecordCount != 4 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if summary.TotalSalaries != 9500 {
		t.Fatalf("expected 9500, got %v", summary.TotalSalaries)
	}
	if len(summary.TopSalaries) != 3 || summary.TopSalaries[0].Name != "Ana" {
		t.Fatalf("unexpected top salaries %+v", summary.TopSalaries)
	}
	if empty := Summarize(nil, 0); empty.AverageSalary != 0 {
		t.Fatalf("expected zero average, got %v", empty.AverageSalary)
	}
}

func TestCompanyParsing(t *testing.T) {
	for _, c := range Companies {
		parsed, err := ParseCompany(string(c))
		if err != nil || parsed != c {
			t.Fatalf("ParseCompany(%s) = %s, %v", c, parsed, err)
		}
	}
	if _, err := ParseCompany("ACME"); err == nil {
		t.Fatal("expected error for unknown company")
	}
	if CompanyNone.Label() != "Geral" {
		t.Fatalf("unexpected label %s", CompanyNone.Label())
	}
}

func TestFilterRosterConcurrentSearches(t *testing.T) {
	roster := sampleRoster()
	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := FilterRoster(roster, "ARAÚJO", CompanyNone); len(got) != 1 || got[0].ID != "1" {
					errs <- "unexpected match"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}
