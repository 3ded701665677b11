package headhunter

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary struct {
		From     float64 `json:"from,omitempty"`
		To       float64 `json:"to,omitempty"`
		Currency string  `json:"currency,omitempty"`
		Gross    bool    `json:"gross,omitempty"`
	} `json:"salary,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Snipet       struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// Remote reports whether the vacancy is posted with the remote schedule.
func (va *Vacancy) Remote() bool {
	return va.Schedule.ID == ScheduleRemote
}

// Summary joins the requirement and responsibility snippets.
func (va *Vacancy) Summary() string {
	switch {
	case va.Snipet.Requirement == "":
		return va.Snipet.Responsibility
	case va.Snipet.Responsibility == "":
		return va.Snipet.Requirement
	default:
		return va.Snipet.Requirement + " " + va.Snipet.Responsibility
	}
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}
