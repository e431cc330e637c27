package patent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestView_AppliesSentinels(t *testing.T) {
	v := PatentRecord{}.View()

	assert.Equal(t, NoPatentNumber, v.PatentNumber)
	assert.Equal(t, NoApplicationNumber, v.ApplicationNumber)
	assert.Equal(t, NoTitle, v.Title)
	assert.Equal(t, Missing, v.FilingDate)
	assert.Equal(t, Missing, v.PTADays)
	assert.NotNil(t, v.Inventors)
	assert.NotNil(t, v.Assignees)
	assert.NotNil(t, v.Parents)
	assert.NotNil(t, v.Children)
}

func TestView_KeepsPresentValues(t *testing.T) {
	days := 120
	r := PatentRecord{
		PatentNumber:      "10123456",
		ApplicationNumber: "16123456",
		Title:             "Widget",
		FilingDate:        "2019-01-02",
		PTADays:           &days,
	}
	v := r.View()

	assert.Equal(t, "10123456", v.PatentNumber)
	assert.Equal(t, "16123456", v.ApplicationNumber)
	assert.Equal(t, "Widget", v.Title)
	assert.Equal(t, "2019-01-02", v.FilingDate)
	assert.Equal(t, "120", v.PTADays)

	// View must not mutate the record.
	assert.Empty(t, r.Status)
}

func TestBackFill(t *testing.T) {
	cases := []struct {
		name      string
		record    PatentRecord
		patent    string
		app       string
		owner     string
		wantPat   string
		wantApp   string
		assignees []string
	}{
		{
			name:      "fills absent fields",
			patent:    "9876543",
			app:       "14111222",
			owner:     "Acme Corp",
			wantPat:   "9876543",
			wantApp:   "14111222",
			assignees: []string{"Acme Corp"},
		},
		{
			name:      "never overwrites",
			record:    PatentRecord{PatentNumber: "10000000", ApplicationNumber: "15000000"},
			patent:    "9876543",
			app:       "14111222",
			wantPat:   "10000000",
			wantApp:   "15000000",
			assignees: []string{},
		},
		{
			name:      "owner already listed",
			record:    PatentRecord{Assignees: []Assignee{{Name: "Acme Corp", DocumentURL: "u"}}},
			owner:     "Acme Corp",
			assignees: []string{"Acme Corp"},
		},
		{
			name:      "owner appended after existing",
			record:    PatentRecord{Assignees: []Assignee{{Name: "Other"}}},
			owner:     "Acme Corp",
			assignees: []string{"Other", "Acme Corp"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.record
			r.BackFill(tc.patent, tc.app, tc.owner)

			assert.Equal(t, tc.wantPat, r.PatentNumber)
			assert.Equal(t, tc.wantApp, r.ApplicationNumber)
			names := []string{}
			for _, a := range r.Assignees {
				names = append(names, a.Name)
			}
			assert.Equal(t, tc.assignees, names)
		})
	}
}

func TestSummaryOf_JoinsAssignees(t *testing.T) {
	s := SummaryOf(PatentRecord{
		ApplicationNumber: "16123456",
		Assignees:         []Assignee{{Name: "A"}, {Name: ""}, {Name: "B"}},
	})
	assert.Equal(t, "A, B", s.Assignees)
	assert.Equal(t, "16123456", s.ApplicationNumber)
}

//Personal.AI order the ending
