package model

const (
	// DefaultLanguage is assigned when a signup leaves the language unset.
	DefaultLanguage = "Kannada"
	// DefaultFarmType is assigned when a signup leaves the farm type unset.
	DefaultFarmType = "Mixed Farming"
)

// SignupProfile is the profile part of a signup. Unset preference flags default to true.
type SignupProfile struct {
	Name          string
	Email         string
	Phone         string
	District      string
	FarmSize      string
	Experience    string
	Language      string
	FarmType      string
	MainCrops     []string
	Address       string
	Notifications *bool
	WeatherAlerts *bool
	MarketUpdates *bool
}

// NewUser builds the user record for a signup, filling documented defaults.
func (s SignupProfile) NewUser(id string) *User {
	u := &User{
		ID:            id,
		Name:          s.Name,
		Email:         s.Email,
		Phone:         s.Phone,
		District:      s.District,
		FarmSize:      s.FarmSize,
		Experience:    s.Experience,
		Language:      s.Language,
		FarmType:      s.FarmType,
		MainCrops:     []string{},
		Address:       s.Address,
		Notifications: flagOrTrue(s.Notifications),
		WeatherAlerts: flagOrTrue(s.WeatherAlerts),
		MarketUpdates: flagOrTrue(s.MarketUpdates),
	}
	if u.Language == "" {
		u.Language = DefaultLanguage
	}
	if u.FarmType == "" {
		u.FarmType = DefaultFarmType
	}
	if s.MainCrops != nil {
		u.MainCrops = append(u.MainCrops, s.MainCrops...)
	}
	return u
}

func flagOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
