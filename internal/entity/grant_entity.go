package entity

// Grant is one entry of the subsidy catalog.
type Grant struct {
	Id               uint
	Title            string
	Excerpt          string
	Permalink        string
	Organization     string
	Target           string // who the grant is for, free text
	EligibleExpenses string
	Amount           string // display form, e.g. "最大500万円"
	AmountNumeric    int64  // yen, for range filters
	Deadline         string
	Status           string
	Difficulty       string
	SuccessRate      int
	Categories       []string
	Prefectures      []string
}
