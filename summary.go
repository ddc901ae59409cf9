package twitter

// Category labels for the two summary charts.
const (
	LabelHasWebsite = "Has Website"
	LabelNoWebsite  = "No Website"
	LabelHasEmail   = "Has Email"
	LabelNoEmail    = "No Email"
)

// Summary holds the headline numbers of a run.
type Summary struct {
	Total       int     `json:"total"`
	WithWebsite int     `json:"with_website"`
	WithEmail   int     `json:"with_email"`
	SuccessRate float64 `json:"success_rate"` // percent of websites that yielded an email
}

// Summarize counts websites and emails over records.
func Summarize(records []FollowerRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.HasWebsite() {
			s.WithWebsite++
		}
		if r.HasEmail() {
			s.WithEmail++
		}
	}
	s.SuccessRate = float64(s.WithEmail) / float64(max(1, s.WithWebsite)) * 100
	return s
}

// WebsiteCounts is the "has website" vs "no website" bar data.
func (s Summary) WebsiteCounts() map[string]int {
	return map[string]int{
		LabelHasWebsite: s.WithWebsite,
		LabelNoWebsite:  s.Total - s.WithWebsite,
	}
}

// EmailCounts is the "has email" vs "no email" bar data.
func (s Summary) EmailCounts() map[string]int {
	return map[string]int{
		LabelHasEmail: s.WithEmail,
		LabelNoEmail:  s.Total - s.WithEmail,
	}
}
