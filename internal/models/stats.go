package models

// CalorieStat is a single dated calorie record. Time uses the backend's
// local datetime layout, "2006-01-02T15:04:05".
type CalorieStat struct {
	Time     string `json:"time"`
	Calories int    `json:"calories"`
}

type CalorieStats struct {
	Stats []CalorieStat `json:"stats"`
}

// MacroStat is a single dated macro record. The backend keys proteins,
// fats and carbs as B, Z and U.
type MacroStat struct {
	Time     string `json:"time"`
	Proteins int    `json:"B"`
	Fats     int    `json:"Z"`
	Carbs    int    `json:"U"`
}

type MacroStats struct {
	Stats []MacroStat `json:"stats"`
}

// UserProfile is the profile payload returned from the stats endpoint.
type UserProfile struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Age      int     `json:"age"`
	Height   float64 `json:"height"`
	Weight   float64 `json:"weight"`
	Sex      string  `json:"sex"`
	Goal     string  `json:"goal"`
}
