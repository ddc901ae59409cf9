package twitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	records := []FollowerRecord{
		{ID: "1", Website: "http://a.com", Emails: []string{"contact@a.com"}},
		{ID: "2", Website: "http://b.com"},
		{ID: "3"},
		{ID: "4", Website: "http://d.com", Emails: []string{"info@d.com"}},
	}
	s := Summarize(records)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.WithWebsite)
	assert.Equal(t, 2, s.WithEmail)
	assert.InDelta(t, 66.67, s.SuccessRate, 0.01)
	assert.Equal(t, map[string]int{LabelHasWebsite: 3, LabelNoWebsite: 1}, s.WebsiteCounts())
	assert.Equal(t, map[string]int{LabelHasEmail: 2, LabelNoEmail: 2}, s.EmailCounts())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.SuccessRate)
}
