package checkin

// CreateCheckinRequest is the body of POST /checkins. Range checks live here,
// at the boundary; the scoring engine itself clamps instead of rejecting.
type CreateCheckinRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`

	Mood                 *float64 `json:"mood,omitempty" validate:"omitempty,gte=0,lte=10"`
	Energy               *float64 `json:"energy,omitempty" validate:"omitempty,gte=0,lte=10"`
	Sleep                *float64 `json:"sleep,omitempty" validate:"omitempty,gte=0,lte=24"`
	Exercise             *float64 `json:"exercise,omitempty" validate:"omitempty,gte=0,lte=1440"`
	StressLevel          *float64 `json:"stressLevel,omitempty" validate:"omitempty,gte=0,lte=10"`
	Connection           *float64 `json:"connection,omitempty" validate:"omitempty,gte=0,lte=10"`
	Gratitude            *float64 `json:"gratitude,omitempty" validate:"omitempty,gte=0,lte=10"`
	ResilienceSelfReport *float64 `json:"resilienceSelfReport,omitempty" validate:"omitempty,gte=0,lte=10"`
	Purpose              *float64 `json:"purpose,omitempty" validate:"omitempty,gte=0,lte=10"`
	GoodDeeds            *float64 `json:"goodDeeds,omitempty" validate:"omitempty,gte=0,lte=10"`
	ScreenTimeHours      *float64 `json:"screenTimeHours,omitempty" validate:"omitempty,gte=0,lte=12"`
	Reflection           *float64 `json:"reflection,omitempty" validate:"omitempty,gte=0,lte=10"`
	Focus                *float64 `json:"focus,omitempty" validate:"omitempty,gte=0,lte=10"`

	MeditationDone     bool `json:"meditationDone"`
	HormonalShiftToday bool `json:"hormonalShiftToday"`
}

// ToRecord converts a validated request. The date must already be valid.
func (req *CreateCheckinRequest) ToRecord(userID string) (Record, error) {
	day, err := ParseDay(req.Date)
	if err != nil {
		return Record{}, err
	}
	return Record{
		UserID:               userID,
		Date:                 day,
		Mood:                 req.Mood,
		Energy:               req.Energy,
		Sleep:                req.Sleep,
		Exercise:             req.Exercise,
		StressLevel:          req.StressLevel,
		Connection:           req.Connection,
		Gratitude:            req.Gratitude,
		ResilienceSelfReport: req.ResilienceSelfReport,
		Purpose:              req.Purpose,
		GoodDeeds:            req.GoodDeeds,
		ScreenTimeHours:      req.ScreenTimeHours,
		Reflection:           req.Reflection,
		Focus:                req.Focus,
		MeditationDone:       req.MeditationDone,
		HormonalShiftToday:   req.HormonalShiftToday,
	}, nil
}
